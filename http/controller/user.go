package controller

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-travel-service/entity"
	"github.com/tnqbao/gau-travel-service/http/controller/dto"
	"github.com/tnqbao/gau-travel-service/utils"
)

// User ids become the first segment of every blob path, so they are limited
// to characters that cannot form a path separator.
var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

func (ctrl *Controller) Signup(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SignupRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[User] Invalid signup request: %v", err)
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}
	if !userIDPattern.MatchString(req.ID) {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[User] Rejected user id %q", req.ID)
		utils.JSON400(c, "user id may only contain letters, digits, '.', '_' and '-'")
		return
	}

	exists, err := ctrl.Repository.UserRepo.ExistsByID(ctx, req.ID)
	if err != nil {
		ctrl.respondError(c, "User", err)
		return
	}
	if exists {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[User] User id already exists: %s", req.ID)
		utils.JSON409(c, "user id already exists")
		return
	}

	exists, err = ctrl.Repository.UserRepo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		ctrl.respondError(c, "User", err)
		return
	}
	if exists {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[User] Email already exists for signup of %s", req.ID)
		utils.JSON409(c, "email already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[User] Failed to hash password: %v", err)
		utils.JSON500(c, "Failed to create user")
		return
	}

	user := &entity.User{
		ID:           req.ID,
		Name:         req.Name,
		PasswordHash: hash,
		Email:        req.Email,
		Country:      req.Country,
		Language:     req.Language,
	}
	if err := ctrl.Repository.UserRepo.Create(ctx, user); err != nil {
		ctrl.respondError(c, "User", err)
		return
	}

	if err := ctrl.Infra.Produce.EmailService.SendWelcome(ctx, user.Email, user.Name); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[User] Failed to queue welcome email for %s: %v", user.ID, err)
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[User] Created user %s", user.ID)
	utils.JSON201(c, gin.H{"user": user})
}

func (ctrl *Controller) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Auth] Invalid login request: %v", err)
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	user, err := ctrl.Repository.UserRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.JSON401(c, "Invalid credentials")
			return
		}
		ctrl.respondError(c, "Auth", err)
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Auth] Wrong password for %s", req.ID)
		utils.JSON401(c, "Invalid credentials")
		return
	}

	token, expiresAt, err := utils.GenerateToken(user.ID, ctrl.Config.EnvConfig)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Auth] Failed to sign token: %v", err)
		utils.JSON500(c, "Failed to issue token")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", token, int(time.Until(expiresAt).Seconds()), "/",
		ctrl.Config.EnvConfig.CORS.GlobalDomain, ctrl.Config.EnvConfig.Environment.Mode == "production", true)

	utils.JSON200(c, dto.LoginResponseDTO{
		AccessToken: token,
		ExpiresAt:   expiresAt.Unix(),
		User:        user,
	})
}

func (ctrl *Controller) GetMe(c *gin.Context) {
	userID, ok := ctrl.currentUserID(c, "User")
	if !ok {
		return
	}

	user, err := ctrl.Repository.UserRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		ctrl.respondError(c, "User", err)
		return
	}
	utils.JSON200(c, gin.H{"user": user})
}

func (ctrl *Controller) UpdateMe(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "User")
	if !ok {
		return
	}

	var req dto.UpdateUserRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[User] Invalid update request: %v", err)
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	user, err := ctrl.Repository.UserRepo.GetByID(ctx, userID)
	if err != nil {
		ctrl.respondError(c, "User", err)
		return
	}

	if req.Email != nil && *req.Email != user.Email {
		exists, err := ctrl.Repository.UserRepo.ExistsByEmail(ctx, *req.Email, userID)
		if err != nil {
			ctrl.respondError(c, "User", err)
			return
		}
		if exists {
			utils.JSON409(c, "email already exists")
			return
		}
	}

	req.ApplyTo(user)
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[User] Failed to hash password: %v", err)
			utils.JSON500(c, "Failed to update user")
			return
		}
		user.PasswordHash = hash
	}

	if err := ctrl.Repository.UserRepo.Update(ctx, user); err != nil {
		ctrl.respondError(c, "User", err)
		return
	}
	utils.JSON200(c, gin.H{"user": user})
}

// DeleteMe runs the account deletion cascade, then revokes outstanding tokens
// and queues cleanup of the user's blobs. Failures after the commit are
// logged and do not fail the request.
func (ctrl *Controller) DeleteMe(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "User")
	if !ok {
		return
	}

	user, err := ctrl.Repository.UserRepo.GetByID(ctx, userID)
	if err != nil {
		ctrl.respondError(c, "User", err)
		return
	}

	if err := ctrl.Repository.UserRepo.DeleteAccount(ctx, userID); err != nil {
		ctrl.respondError(c, "User", err)
		return
	}
	ctrl.Infra.Metrics.AccountDeletions.Add(ctx, 1)
	ctrl.Infra.Logger.InfoWithContextf(ctx, "[User] Deleted account %s", userID)

	ttl := time.Duration(ctrl.Config.EnvConfig.JWT.Expire) * time.Second
	if err := ctrl.Infra.Sessions.RevokeUser(ctx, userID, ttl); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[User] Failed to revoke sessions of %s: %v", userID, err)
	}
	if err := ctrl.Infra.Produce.BlobService.PublishDeleteUserBlobs(ctx, userID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[User] Failed to queue blob cleanup for %s: %v", userID, err)
	}
	if err := ctrl.Infra.Produce.EmailService.SendAccountDeleted(ctx, user.Email, user.Name); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[User] Failed to queue deletion email for %s: %v", userID, err)
	}

	c.SetCookie("access_token", "", -1, "/", ctrl.Config.EnvConfig.CORS.GlobalDomain, false, true)
	utils.JSON200(c, gin.H{"message": "Account deleted"})
}

func (ctrl *Controller) UploadProfileImage(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "User")
	if !ok {
		return
	}

	user, err := ctrl.Repository.UserRepo.GetByID(ctx, userID)
	if err != nil {
		ctrl.respondError(c, "User", err)
		return
	}

	stored, ok := ctrl.storeImage(c, userID, nil, utils.BlobCategoryProfileImage)
	if !ok {
		return
	}

	previous := user.ProfileImage
	user.ProfileImage = stored.Path
	if err := ctrl.Repository.UserRepo.Update(ctx, user); err != nil {
		ctrl.releaseBlob(c, userID, stored.Path)
		ctrl.respondError(c, "User", err)
		return
	}

	if previous != "" && previous != stored.Path {
		if err := ctrl.Infra.Produce.BlobService.PublishDeleteObject(ctx, userID, previous); err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[User] Failed to queue removal of old profile image %s: %v", previous, err)
		}
	}

	utils.JSON200(c, stored)
}
