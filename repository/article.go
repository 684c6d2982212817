package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tnqbao/gau-travel-service/entity"
	"github.com/tnqbao/gau-travel-service/utils"
	"gorm.io/gorm"
)

type ArticleFilter struct {
	AuthorID string
	Offset   int
	Limit    int
}

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Create(ctx context.Context, article *entity.Article) error {
	if article == nil {
		return errors.New("article cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return storageError(err)
	}
	return nil
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	var article entity.Article
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: article %s", utils.ErrNotFound, id)
		}
		return nil, storageError(err)
	}
	return &article, nil
}

// List returns one page of articles, newest first, and the total count.
func (r *ArticleRepository) List(ctx context.Context, filter ArticleFilter) ([]entity.Article, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Article{})
	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError(err)
	}

	var articles []entity.Article
	err := query.Order("created_at DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&articles).Error
	if err != nil {
		return nil, 0, storageError(err)
	}
	return articles, total, nil
}

// Update saves the editable columns. The like counter is owned by
// LikeRepository.Toggle and is never written here.
func (r *ArticleRepository) Update(ctx context.Context, article *entity.Article) error {
	if article == nil {
		return errors.New("article cannot be nil")
	}
	result := r.db.WithContext(ctx).Model(article).
		Select("title", "image_url", "travel_country", "travel_city", "share_link", "price", "moderation_scores", "modified_at").
		Updates(article)
	if result.Error != nil {
		return storageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: article %s", utils.ErrNotFound, article.ID)
	}
	return nil
}

// Delete removes an article together with its comments and likes.
func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&entity.Comment{}).Error; err != nil {
			return storageError(err)
		}
		if err := tx.Where("article_id = ?", id).Delete(&entity.Like{}).Error; err != nil {
			return storageError(err)
		}
		result := tx.Where("id = ?", id).Delete(&entity.Article{})
		if result.Error != nil {
			return storageError(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: article %s", utils.ErrNotFound, id)
		}
		return nil
	})
}
