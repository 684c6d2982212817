package controller

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-travel-service/entity"
	"github.com/tnqbao/gau-travel-service/http/controller/dto"
	"github.com/tnqbao/gau-travel-service/repository"
	"github.com/tnqbao/gau-travel-service/utils"
	"gorm.io/datatypes"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func (ctrl *Controller) CreateArticle(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Article")
	if !ok {
		return
	}

	var req dto.CreateArticleRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Article] Invalid create request: %v", err)
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	article := &entity.Article{
		ID:            uuid.New().String(),
		Title:         req.Title,
		AuthorID:      userID,
		ImageURL:      req.ImageURL,
		TravelCountry: req.TravelCountry,
		TravelCity:    req.TravelCity,
		ShareLink:     req.ShareLink,
		Price:         req.Price,
	}
	if err := ctrl.Repository.ArticleRepo.Create(ctx, article); err != nil {
		ctrl.respondError(c, "Article", err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Article] User %s created article %s", userID, article.ID)
	utils.JSON201(c, gin.H{"article": article})
}

func (ctrl *Controller) GetArticle(c *gin.Context) {
	article, err := ctrl.Repository.ArticleRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.respondError(c, "Article", err)
		return
	}
	utils.JSON200(c, gin.H{"article": article})
}

func (ctrl *Controller) ListArticles(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		utils.JSON400(c, "page must be a positive integer")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 {
		utils.JSON400(c, "limit must be a positive integer")
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	articles, total, err := ctrl.Repository.ArticleRepo.List(c.Request.Context(), repository.ArticleFilter{
		AuthorID: strings.TrimSpace(c.Query("author")),
		Offset:   (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		ctrl.respondError(c, "Article", err)
		return
	}

	utils.JSON200(c, dto.ListArticlesResponseDTO{
		Articles: articles,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

func (ctrl *Controller) UpdateArticle(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Article")
	if !ok {
		return
	}

	var req dto.UpdateArticleRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Article] Invalid update request: %v", err)
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	article, ok := ctrl.ownedArticle(c, userID)
	if !ok {
		return
	}

	req.ApplyTo(article)
	if err := ctrl.Repository.ArticleRepo.Update(ctx, article); err != nil {
		ctrl.respondError(c, "Article", err)
		return
	}
	utils.JSON200(c, gin.H{"article": article})
}

func (ctrl *Controller) DeleteArticle(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Article")
	if !ok {
		return
	}

	article, ok := ctrl.ownedArticle(c, userID)
	if !ok {
		return
	}

	if err := ctrl.Repository.ArticleRepo.Delete(ctx, article.ID); err != nil {
		ctrl.respondError(c, "Article", err)
		return
	}
	ctrl.releaseBlob(c, userID, article.ImageURL)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Article] User %s deleted article %s", userID, article.ID)
	utils.JSON200(c, gin.H{"message": "Article deleted"})
}

// UploadArticleImage stores a moderated cover image for an article and keeps
// the classifier scores on the article row.
func (ctrl *Controller) UploadArticleImage(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Article")
	if !ok {
		return
	}

	article, ok := ctrl.ownedArticle(c, userID)
	if !ok {
		return
	}

	stored, ok := ctrl.storeImage(c, userID, []string{"articles", article.ID}, utils.BlobCategoryImages)
	if !ok {
		return
	}

	scores, err := json.Marshal(stored.Scores)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Article] Failed to encode moderation scores: %v", err)
		utils.JSON500(c, "Failed to update article")
		return
	}

	previous := article.ImageURL
	article.ImageURL = stored.Path
	article.ModerationScores = datatypes.JSON(scores)
	if err := ctrl.Repository.ArticleRepo.Update(ctx, article); err != nil {
		ctrl.releaseBlob(c, userID, stored.Path)
		ctrl.respondError(c, "Article", err)
		return
	}
	if previous != stored.Path {
		ctrl.releaseBlob(c, userID, previous)
	}

	utils.JSON200(c, gin.H{"article": article, "image": stored})
}

// ownedArticle loads the :id article and answers 403 unless userID wrote it.
func (ctrl *Controller) ownedArticle(c *gin.Context, userID string) (*entity.Article, bool) {
	article, err := ctrl.Repository.ArticleRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.respondError(c, "Article", err)
		return nil, false
	}
	if article.AuthorID != userID {
		ctrl.Infra.Logger.WarningWithContextf(c.Request.Context(), "[Article] User %s attempted to modify article %s owned by %s", userID, article.ID, article.AuthorID)
		utils.JSON403(c, "Forbidden: you are not the author of this article")
		return nil, false
	}
	return article, true
}

// releaseBlob queues removal of a blob the user owns. External URLs and
// empty values are ignored.
func (ctrl *Controller) releaseBlob(c *gin.Context, userID, blobPath string) {
	prefix, err := utils.UserBlobPrefix(userID)
	if err != nil || !strings.HasPrefix(blobPath, prefix) {
		return
	}
	ctx := c.Request.Context()
	if err := ctrl.Infra.Produce.BlobService.PublishDeleteObject(ctx, userID, blobPath); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Blob] Failed to queue removal of %s: %v", blobPath, err)
	}
}
