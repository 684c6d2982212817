package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tnqbao/gau-travel-service/entity"
	"github.com/tnqbao/gau-travel-service/utils"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return storageError(err)
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id uint) (*entity.Comment, error) {
	var comment entity.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: comment %d", utils.ErrNotFound, id)
		}
		return nil, storageError(err)
	}
	return &comment, nil
}

func (r *CommentRepository) ListByArticleID(ctx context.Context, articleID string) ([]entity.Comment, error) {
	var comments []entity.Comment
	err := r.db.WithContext(ctx).Where("article_id = ?", articleID).Order("created_at ASC, id ASC").Find(&comments).Error
	if err != nil {
		return nil, storageError(err)
	}
	return comments, nil
}

func (r *CommentRepository) UpdateContent(ctx context.Context, comment *entity.Comment) error {
	err := r.db.WithContext(ctx).Model(comment).Select("content", "modified_at").Updates(comment).Error
	if err != nil {
		return storageError(err)
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&entity.Comment{}, "id = ?", id).Error; err != nil {
		return storageError(err)
	}
	return nil
}
