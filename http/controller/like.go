package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-travel-service/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func (ctrl *Controller) ToggleLike(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Like")
	if !ok {
		return
	}

	state, err := ctrl.Repository.LikeRepo.Toggle(ctx, c.Param("id"), userID)
	if err != nil {
		ctrl.respondError(c, "Like", err)
		return
	}

	ctrl.Infra.Metrics.LikeToggles.Add(ctx, 1, metric.WithAttributes(attribute.Bool("liked", state.Liked)))
	ctrl.Infra.Logger.DebugWithContextf(ctx, "[Like] User %s toggled article %s: liked=%t total=%d", userID, c.Param("id"), state.Liked, state.TotalLikes)
	utils.JSON200(c, state)
}
