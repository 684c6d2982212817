package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-travel-service/config"
	"github.com/tnqbao/gau-travel-service/infra"
	"github.com/tnqbao/gau-travel-service/repository"
	"github.com/tnqbao/gau-travel-service/utils"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository) *Controller {
	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
	}
}

// respondError maps a component error onto an HTTP status. Storage failures
// are logged in full and answered with a generic message.
func (ctrl *Controller) respondError(c *gin.Context, tag string, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, utils.ErrValidation):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[%s] Rejected request: %v", tag, err)
		utils.JSON400(c, err.Error())
	case errors.Is(err, utils.ErrNotFound):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[%s] %v", tag, err)
		utils.JSON404(c, "Resource not found")
	case errors.Is(err, utils.ErrConflict):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[%s] %v", tag, err)
		utils.JSON409(c, "Resource already exists")
	case errors.Is(err, utils.ErrForbidden):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[%s] %v", tag, err)
		utils.JSON403(c, "Forbidden")
	default:
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[%s] Request failed: %v", tag, err)
		utils.JSON500(c, "Internal server error")
	}
}

// currentUserID reads the user id injected by the auth middleware and answers
// 401 when it is missing.
func (ctrl *Controller) currentUserID(c *gin.Context, tag string) (string, bool) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(c.Request.Context(), err, "[%s] user_id not found in context", tag)
		utils.JSON401(c, "Unauthorized: user_id not found")
		return "", false
	}
	return userID, true
}
