package controller

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-travel-service/entity"
	"github.com/tnqbao/gau-travel-service/http/controller/dto"
	"github.com/tnqbao/gau-travel-service/utils"
)

func (ctrl *Controller) CreateComment(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Comment")
	if !ok {
		return
	}

	var req dto.CommentRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Comment] Invalid request: %v", err)
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	article, err := ctrl.Repository.ArticleRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		ctrl.respondError(c, "Comment", err)
		return
	}

	comment := &entity.Comment{
		ArticleID: article.ID,
		AuthorID:  userID,
		Content:   req.Content,
	}
	if err := ctrl.Repository.CommentRepo.Create(ctx, comment); err != nil {
		ctrl.respondError(c, "Comment", err)
		return
	}
	utils.JSON201(c, gin.H{"comment": comment})
}

func (ctrl *Controller) ListComments(c *gin.Context) {
	ctx := c.Request.Context()

	article, err := ctrl.Repository.ArticleRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		ctrl.respondError(c, "Comment", err)
		return
	}

	comments, err := ctrl.Repository.CommentRepo.ListByArticleID(ctx, article.ID)
	if err != nil {
		ctrl.respondError(c, "Comment", err)
		return
	}
	utils.JSON200(c, gin.H{"comments": comments, "count": len(comments)})
}

func (ctrl *Controller) UpdateComment(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Comment")
	if !ok {
		return
	}

	var req dto.CommentRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Comment] Invalid request: %v", err)
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	comment, ok := ctrl.ownedComment(c, userID)
	if !ok {
		return
	}

	comment.Content = req.Content
	if err := ctrl.Repository.CommentRepo.UpdateContent(ctx, comment); err != nil {
		ctrl.respondError(c, "Comment", err)
		return
	}
	utils.JSON200(c, gin.H{"comment": comment})
}

func (ctrl *Controller) DeleteComment(c *gin.Context) {
	userID, ok := ctrl.currentUserID(c, "Comment")
	if !ok {
		return
	}

	comment, ok := ctrl.ownedComment(c, userID)
	if !ok {
		return
	}

	if err := ctrl.Repository.CommentRepo.Delete(c.Request.Context(), comment.ID); err != nil {
		ctrl.respondError(c, "Comment", err)
		return
	}
	utils.JSON200(c, gin.H{"message": "Comment deleted"})
}

// ownedComment loads :comment_id under article :id and answers 403 unless
// userID wrote it.
func (ctrl *Controller) ownedComment(c *gin.Context, userID string) (*entity.Comment, bool) {
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil {
		utils.JSON400(c, "Invalid comment id")
		return nil, false
	}

	comment, err := ctrl.Repository.CommentRepo.GetByID(c.Request.Context(), uint(commentID))
	if err != nil {
		ctrl.respondError(c, "Comment", err)
		return nil, false
	}
	if comment.ArticleID != c.Param("id") {
		ctrl.respondError(c, "Comment", fmt.Errorf("%w: comment %d on article %s", utils.ErrNotFound, commentID, c.Param("id")))
		return nil, false
	}
	if comment.AuthorID != userID {
		ctrl.Infra.Logger.WarningWithContextf(c.Request.Context(), "[Comment] User %s attempted to modify comment %d owned by %s", userID, comment.ID, comment.AuthorID)
		utils.JSON403(c, "Forbidden: you are not the author of this comment")
		return nil, false
	}
	return comment, true
}
