package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-travel-service/http/controller"
	middlewares "github.com/tnqbao/gau-travel-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}
	r.Use(middles.TracingMiddleware, middles.CORSMiddleware)

	apiRoutes := r.Group("/api/v1/travel")
	{
		authRoutes := apiRoutes.Group("/auth")
		{
			authRoutes.POST("/signup", ctrl.Signup)
			authRoutes.POST("/login", ctrl.Login)
		}

		publicArticles := apiRoutes.Group("/articles")
		{
			publicArticles.GET("", ctrl.ListArticles)
			publicArticles.GET("/:id", ctrl.GetArticle)
			publicArticles.GET("/:id/comments", ctrl.ListComments)
		}

		protected := apiRoutes.Group("")
		protected.Use(middles.AuthMiddleware)
		{
			userRoutes := protected.Group("/users/me")
			{
				userRoutes.GET("", ctrl.GetMe)
				userRoutes.PUT("", ctrl.UpdateMe)
				userRoutes.DELETE("", ctrl.DeleteMe)
				userRoutes.POST("/profile-image", ctrl.UploadProfileImage)
			}

			articleRoutes := protected.Group("/articles")
			{
				articleRoutes.POST("", ctrl.CreateArticle)
				articleRoutes.PUT("/:id", ctrl.UpdateArticle)
				articleRoutes.DELETE("/:id", ctrl.DeleteArticle)
				articleRoutes.POST("/:id/image", ctrl.UploadArticleImage)
				articleRoutes.POST("/:id/like", ctrl.ToggleLike)

				articleRoutes.POST("/:id/comments", ctrl.CreateComment)
				articleRoutes.PUT("/:id/comments/:comment_id", ctrl.UpdateComment)
				articleRoutes.DELETE("/:id/comments/:comment_id", ctrl.DeleteComment)
			}

			imageRoutes := protected.Group("/images")
			{
				imageRoutes.POST("", ctrl.UploadImage)
				imageRoutes.GET("", ctrl.ListImages)
				imageRoutes.GET("/url", ctrl.GetImageURL)
				imageRoutes.DELETE("", ctrl.DeleteImage)
			}

			interviewRoutes := protected.Group("/interviews")
			{
				interviewRoutes.POST("/transcribe", ctrl.TranscribeInterview)
				interviewRoutes.POST("/speak", ctrl.SpeakInterview)
			}
		}
	}
	return r
}
