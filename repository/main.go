package repository

import (
	"fmt"

	"github.com/tnqbao/gau-travel-service/infra"
	"github.com/tnqbao/gau-travel-service/utils"
	"gorm.io/gorm"
)

type Repository struct {
	UserRepo    *UserRepository
	ArticleRepo *ArticleRepository
	CommentRepo *CommentRepository
	LikeRepo    *LikeRepository
}

func InitRepository(infra *infra.Infra) *Repository {
	if infra.Postgres == nil || infra.Postgres.DB == nil {
		panic("database connection is nil")
	}
	return NewRepository(infra.Postgres.DB)
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		UserRepo:    NewUserRepository(db),
		ArticleRepo: NewArticleRepository(db),
		CommentRepo: NewCommentRepository(db),
		LikeRepo:    NewLikeRepository(db),
	}
}

// storageError tags a database failure as ErrStorage while keeping the cause.
func storageError(err error) error {
	return fmt.Errorf("%w: %w", utils.ErrStorage, err)
}
