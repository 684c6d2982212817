package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-travel-service/entity"
	"github.com/tnqbao/gau-travel-service/infra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with foreign keys
// enforced and no ON DELETE CASCADE, so a wrong delete order fails loudly.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.MigrateSchema(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:           id,
		Name:         strings.ToUpper(id[:1]) + id[1:],
		PasswordHash: "hash",
		Email:        id + "@example.com",
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func seedArticle(t *testing.T, db *gorm.DB, id, authorID string) *entity.Article {
	t.Helper()
	article := &entity.Article{
		ID:            id,
		Title:         "Trip " + id,
		AuthorID:      authorID,
		TravelCountry: "Japan",
		TravelCity:    "Kyoto",
	}
	require.NoError(t, NewArticleRepository(db).Create(context.Background(), article))
	return article
}

func seedComment(t *testing.T, db *gorm.DB, articleID, authorID, content string) *entity.Comment {
	t.Helper()
	comment := &entity.Comment{ArticleID: articleID, AuthorID: authorID, Content: content}
	require.NoError(t, NewCommentRepository(db).Create(context.Background(), comment))
	return comment
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

func likesOf(t *testing.T, db *gorm.DB, articleID string) int64 {
	t.Helper()
	var article entity.Article
	require.NoError(t, db.Where("id = ?", articleID).First(&article).Error)
	return article.Likes
}
