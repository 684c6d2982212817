package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-travel-service/entity"
	"github.com/tnqbao/gau-travel-service/utils"
)

func TestArticleListFiltersAndPages(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	for _, id := range []string{"a1", "a2", "a3"} {
		seedArticle(t, db, id, "alice")
	}
	seedArticle(t, db, "b1", "bob")
	repo := NewArticleRepository(db)
	ctx := context.Background()

	page, total, err := repo.List(ctx, ArticleFilter{AuthorID: "alice", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	page, total, err = repo.List(ctx, ArticleFilter{AuthorID: "alice", Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)

	_, total, err = repo.List(ctx, ArticleFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestArticleUpdateKeepsLikeCounter(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedArticle(t, db, "a1", "alice")
	ctx := context.Background()
	_, err := NewLikeRepository(db).Toggle(ctx, "a1", "bob")
	require.NoError(t, err)

	repo := NewArticleRepository(db)
	stale, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	stale.Likes = 0
	stale.Title = "Autumn in Kyoto"
	require.NoError(t, repo.Update(ctx, stale))

	fresh, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Autumn in Kyoto", fresh.Title)
	assert.Equal(t, int64(1), fresh.Likes)
}

func TestArticleDeleteRemovesCommentsAndLikes(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedArticle(t, db, "a1", "alice")
	seedComment(t, db, "a1", "bob", "lovely")
	ctx := context.Background()
	_, err := NewLikeRepository(db).Toggle(ctx, "a1", "bob")
	require.NoError(t, err)

	repo := NewArticleRepository(db)
	require.NoError(t, repo.Delete(ctx, "a1"))

	assert.Zero(t, countRows(t, db, &entity.Comment{}, "article_id = ?", "a1"))
	assert.Zero(t, countRows(t, db, &entity.Like{}, "article_id = ?", "a1"))

	err = repo.Delete(ctx, "a1")
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestCommentLifecycle(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice")
	seedArticle(t, db, "a1", "alice")
	repo := NewCommentRepository(db)
	ctx := context.Background()

	first := seedComment(t, db, "a1", "alice", "first")
	seedComment(t, db, "a1", "alice", "second")

	first.Content = "edited"
	require.NoError(t, repo.UpdateContent(ctx, first))

	comments, err := repo.ListByArticleID(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "edited", comments[0].Content)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestArticleUpdateMissingArticle(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice")
	article := seedArticle(t, db, "a1", "alice")
	repo := NewArticleRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "a1"))

	article.ImageURL = "alice/articles/a1/images/cover.png"
	err := repo.Update(ctx, article)
	assert.True(t, errors.Is(err, utils.ErrNotFound))
	assert.Zero(t, countRows(t, db, &entity.Article{}, "id = ?", "a1"))
}
