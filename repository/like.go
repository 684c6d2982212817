package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tnqbao/gau-travel-service/entity"
	"github.com/tnqbao/gau-travel-service/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle flips the (userID, articleID) like and adjusts the article's like
// counter in the same transaction. The article row is locked first, so toggles
// on one article serialize and the counter never goes below zero.
func (r *LikeRepository) Toggle(ctx context.Context, articleID, userID string) (*entity.LikeState, error) {
	state := &entity.LikeState{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article entity.Article
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "likes").
			Where("id = ?", articleID).
			First(&article).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: article %s", utils.ErrNotFound, articleID)
			}
			return storageError(err)
		}

		removed := tx.Where("user_id = ? AND article_id = ?", userID, articleID).Delete(&entity.Like{})
		if removed.Error != nil {
			return storageError(removed.Error)
		}

		if removed.RowsAffected > 0 {
			err = tx.Model(&entity.Article{}).
				Where("id = ? AND likes > 0", articleID).
				UpdateColumn("likes", gorm.Expr("likes - ?", 1)).Error
			if err != nil {
				return storageError(err)
			}
			state.Liked = false
		} else {
			if err := tx.Create(&entity.Like{UserID: userID, ArticleID: articleID}).Error; err != nil {
				return storageError(err)
			}
			err = tx.Model(&entity.Article{}).
				Where("id = ?", articleID).
				UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error
			if err != nil {
				return storageError(err)
			}
			state.Liked = true
		}

		var updated entity.Article
		if err := tx.Select("id", "likes").Where("id = ?", articleID).First(&updated).Error; err != nil {
			return storageError(err)
		}
		state.TotalLikes = updated.Likes
		return nil
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}

func (r *LikeRepository) IsLiked(ctx context.Context, articleID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Like{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error
	if err != nil {
		return false, storageError(err)
	}
	return count > 0, nil
}
