package repositories

import (
	"context"
	"testing"
	"time"

	"blog/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerPostRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBadgerPostRepository(setupTestDB(t), time.UTC)
	day := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)

	first := mustInsertPost(t, repo, "first", models.StatusPublished, day)
	second := mustInsertPost(t, repo, "second", models.StatusPublished, day.Add(24*time.Hour))
	draft := mustInsertPost(t, repo, "draft", models.StatusDraft, day)
	future := mustInsertPost(t, repo, "future", models.StatusPublished, time.Now().Add(48*time.Hour))

	t.Run("insert assigns ids and timestamps", func(t *testing.T) {
		assert.Equal(t, 1, first.ID)
		assert.Equal(t, 4, future.ID)
		assert.False(t, first.CreatedAt.IsZero())
	})

	t.Run("find by id ignores visibility", func(t *testing.T) {
		got, err := repo.FindByID(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, "draft", got.Slug)
		assert.Equal(t, models.StatusDraft, got.Status)
	})

	t.Run("find by id missing", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("find published newest first", func(t *testing.T) {
		posts, err := repo.FindPublished(ctx, PostFilter{}, NewestFirst)
		require.NoError(t, err)
		assert.Equal(t, []int{second.ID, first.ID}, ids(posts))
	})

	t.Run("find published with limit", func(t *testing.T) {
		posts, err := repo.FindPublished(ctx, PostFilter{Limit: 1}, NewestFirst)
		require.NoError(t, err)
		assert.Equal(t, []int{second.ID}, ids(posts))
	})

	t.Run("find published by date and slug", func(t *testing.T) {
		filter := PostFilter{Slug: "first", Date: &Date{Year: 2024, Month: time.March, Day: 5}}
		posts, err := repo.FindPublished(ctx, filter, NewestFirst)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, first.ID, posts[0].ID)
	})

	t.Run("find published by id hides drafts", func(t *testing.T) {
		posts, err := repo.FindPublished(ctx, PostFilter{ID: draft.ID}, NewestFirst)
		require.NoError(t, err)
		assert.Empty(t, posts)

		posts, err = repo.FindPublished(ctx, PostFilter{ID: first.ID}, NewestFirst)
		require.NoError(t, err)
		assert.Len(t, posts, 1)
	})

	t.Run("duplicate slug on the same date", func(t *testing.T) {
		dup := &models.Post{Title: "Again", Slug: "first", Author: "admin", Publish: day.Add(time.Hour), Status: models.StatusDraft}
		assert.ErrorIs(t, repo.Insert(ctx, dup), ErrDuplicateSlug)
	})

	t.Run("same slug on another date", func(t *testing.T) {
		other := mustInsertPost(t, repo, "first", models.StatusPublished, day.Add(-24*time.Hour))
		assert.NotZero(t, other.ID)
	})
}

func TestBadgerPostRepositoryCancelledContext(t *testing.T) {
	repo := NewBadgerPostRepository(setupTestDB(t), time.UTC)
	mustInsertPost(t, repo, "a", models.StatusPublished, time.Now().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.FindPublished(ctx, PostFilter{}, NewestFirst)
	assert.ErrorIs(t, err, context.Canceled)
}
