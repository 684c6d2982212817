package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-travel-service/http/controller"
)

type Middlewares struct {
	CORSMiddleware    gin.HandlerFunc
	AuthMiddleware    gin.HandlerFunc
	TracingMiddleware gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	cors := CORSMiddleware(ctrl.Config.EnvConfig)
	auth := AuthMiddleware(ctrl.Infra.Sessions, ctrl.Config.EnvConfig)
	tracing := TracingMiddleware(ctrl.Config.EnvConfig.Grafana.ServiceName)

	return &Middlewares{
		CORSMiddleware:    cors,
		AuthMiddleware:    auth,
		TracingMiddleware: tracing,
	}, nil
}
