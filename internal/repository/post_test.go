package repository

import (
	"context"
	"regexp"
	"testing"

	"inkwell/internal/access"
	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Title: "Test Post", Slug: "test-post", Content: "Content", Status: models.PostStatusDraft, UserID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetBySlug_Visibility(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Anonymous Sees Published", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "title", "slug", "status", "user_id", "comments_count", "likes_count", "liked", "saved"}).
			AddRow(1, "Hello", "hello", "published", 10, 2, 5, false, false)
		mock.ExpectQuery(regexp.QuoteMeta(`posts.status = $1`)).
			WithArgs(string(models.PostStatusPublished), "hello", 1).
			WillReturnRows(rows)

		// preloads fire after the main row lands, in name order
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "post_categories"`)).
			WillReturnRows(sqlmock.NewRows([]string{"post_id", "category_id"}))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "post_tags"`)).
			WillReturnRows(sqlmock.NewRows([]string{"post_id", "tag_id"}))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(10, "author"))

		post, err := repo.GetBySlug(ctx, "hello", access.Anonymous())
		assert.NoError(t, err)
		assert.Equal(t, "Hello", post.Title)
		assert.Equal(t, 5, post.LikesCount)
		assert.False(t, post.Liked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Hidden Draft Reads As Not Found", func(t *testing.T) {
		// The visibility WHERE clause filters the draft out, so the query
		// simply returns no row.
		mock.ExpectQuery(regexp.QuoteMeta(`posts.status = $1 OR posts.user_id = $2`)).
			WithArgs(string(models.PostStatusPublished), 7, "secret-draft", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		post, err := repo.GetBySlug(ctx, "secret-draft", access.Principal{ID: 7, Role: models.RoleReader})
		assert.Nil(t, post)
		var appErr *models.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_List_VisibilityClause(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Anonymous", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`posts.status = $1`)).
			WithArgs(string(models.PostStatusPublished), 20).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		posts, err := repo.List(ctx, PostQuery{Viewer: access.Anonymous()})
		assert.NoError(t, err)
		assert.Empty(t, posts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Admin Sees Everything", func(t *testing.T) {
		// No status predicate at all for admins.
		mock.ExpectQuery(regexp.QuoteMeta(`FROM "posts" WHERE "posts"."deleted_at" IS NULL`)).
			WithArgs(20).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		admin := access.Principal{ID: 1, Role: models.RoleAdmin}
		posts, err := repo.List(ctx, PostQuery{Viewer: admin})
		assert.NoError(t, err)
		assert.Empty(t, posts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_Popular_Ordering(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY likes_count DESC, posts.created_at DESC, posts.id DESC`)).
		WithArgs(string(models.PostStatusPublished), 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	posts, err := repo.Popular(ctx, access.Anonymous(), 0, 0)
	assert.NoError(t, err)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_SlugExists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Taken", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE slug = $1`)).
			WithArgs("hello-world").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.SlugExists(ctx, "hello-world")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Free", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE slug = $1`)).
			WithArgs("brand-new").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.SlugExists(ctx, "brand-new")
		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_Delete_Cascades(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{ID: 3, Slug: "doomed"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM likes WHERE post_id = $1 OR comment_id IN (SELECT id FROM comments WHERE post_id = $2)`)).
		WithArgs(3, 3).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM saved_posts WHERE post_id = $1`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comments" SET "deleted_at"`)).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "deleted_at"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(ctx, post)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
