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

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: user id or email already exists", utils.ErrConflict)
		}
		return storageError(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", utils.ErrNotFound, id)
		}
		return nil, storageError(err)
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	result := r.db.WithContext(ctx).Model(user).
		Select("name", "email", "password_hash", "country", "language", "profile_image", "updated_at").
		Updates(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: email already exists", utils.ErrConflict)
		}
		return storageError(result.Error)
	}
	// zero rows: the account was deleted after it was loaded
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s", utils.ErrNotFound, user.ID)
	}
	return nil
}

func (r *UserRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, storageError(err)
	}
	return count > 0, nil
}

// ExistsByEmail reports whether another user than excludeID owns email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.User{}).Where("email = ?", email)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, storageError(err)
	}
	return count > 0, nil
}

// DeleteAccount removes a user and every row that references it, children
// before parents, in one transaction:
//
//  1. comments on the user's articles
//  2. likes on the user's articles
//  3. like counters of other articles the user liked
//  4. comments written by the user
//  5. likes given by the user
//  6. the user's articles
//  7. the user
//
// A user that does not exist is a no-op.
func (r *UserRepository) DeleteAccount(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var articleIDs []string
		// locked so a concurrent like toggle waits for the cascade instead of
		// inserting a like between steps 2 and 6
		if err := tx.Model(&entity.Article{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("author_id = ?", userID).
			Pluck("id", &articleIDs).Error; err != nil {
			return storageError(err)
		}

		if len(articleIDs) > 0 {
			if err := tx.Where("article_id IN ?", articleIDs).Delete(&entity.Comment{}).Error; err != nil {
				return storageError(err)
			}
			if err := tx.Where("article_id IN ?", articleIDs).Delete(&entity.Like{}).Error; err != nil {
				return storageError(err)
			}
		}

		var likedArticleIDs []string
		if err := tx.Model(&entity.Like{}).Where("user_id = ?", userID).Pluck("article_id", &likedArticleIDs).Error; err != nil {
			return storageError(err)
		}
		if len(likedArticleIDs) > 0 {
			if err := tx.Model(&entity.Article{}).
				Where("id IN ? AND likes > 0", likedArticleIDs).
				UpdateColumn("likes", gorm.Expr("likes - ?", 1)).Error; err != nil {
				return storageError(err)
			}
		}

		if err := tx.Where("author_id = ?", userID).Delete(&entity.Comment{}).Error; err != nil {
			return storageError(err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&entity.Like{}).Error; err != nil {
			return storageError(err)
		}
		if err := tx.Where("author_id = ?", userID).Delete(&entity.Article{}).Error; err != nil {
			return storageError(err)
		}
		if err := tx.Where("id = ?", userID).Delete(&entity.User{}).Error; err != nil {
			return storageError(err)
		}
		return nil
	})
}
