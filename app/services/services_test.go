package services

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"blog/app/forms"
	"blog/app/mail"
	"blog/app/models"
	"blog/app/repositories"
	"blog/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)

type recordingMailer struct {
	mutex    sync.Mutex
	messages []mail.Message
	err      error
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func setupPostService(t *testing.T) (*PostService, *mock.PostRepository, *mock.CommentRepository) {
	posts := mock.NewPostRepository()
	comments := mock.NewCommentRepository()
	svc := NewPostService(posts, comments, 3, time.UTC).WithClock(func() time.Time { return testNow })
	return svc, posts, comments
}

func addPost(t *testing.T, repo *mock.PostRepository, slug string, status models.Status, publish time.Time) *models.Post {
	t.Helper()
	post := &models.Post{Title: "Title " + slug, Slug: slug, Author: "admin", Body: "body", Publish: publish, Status: status}
	require.NoError(t, repo.Insert(context.Background(), post))
	return post
}

func TestPostServiceListPage(t *testing.T) {
	svc, repo, _ := setupPostService(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		addPost(t, repo, "post-"+string(rune('a'+i)), models.StatusPublished, testNow.Add(-time.Duration(i+1)*time.Hour))
	}
	addPost(t, repo, "draft", models.StatusDraft, testNow.Add(-time.Hour))
	addPost(t, repo, "scheduled", models.StatusPublished, testNow.Add(time.Hour))

	tests := []struct {
		raw       string
		number    int
		items     int
		firstSlug string
	}{
		{"", 1, 3, "post-a"},
		{"1", 1, 3, "post-a"},
		{"2", 2, 3, "post-d"},
		{"3", 3, 1, "post-g"},
		{"abc", 1, 3, "post-a"},
		{"99", 3, 1, "post-g"},
		{"0", 3, 1, "post-g"},
		{"-4", 3, 1, "post-g"},
	}

	for _, tt := range tests {
		t.Run("page "+tt.raw, func(t *testing.T) {
			page, err := svc.ListPage(ctx, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.number, page.Number)
			assert.Equal(t, 3, page.TotalPages)
			assert.Equal(t, 7, page.Count)
			require.Len(t, page.Items, tt.items)
			assert.Equal(t, tt.firstSlug, page.Items[0].Slug)
		})
	}
}

func TestPostServiceListPageEmpty(t *testing.T) {
	svc, _, _ := setupPostService(t)
	page, err := svc.ListPage(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)
}

func TestPostServiceListPageStoreError(t *testing.T) {
	svc, repo, _ := setupPostService(t)
	repo.Err = errors.New("disk on fire")
	_, err := svc.ListPage(context.Background(), "1")
	assert.ErrorContains(t, err, "disk on fire")
}

func TestPostServiceGetByDate(t *testing.T) {
	svc, repo, comments := setupPostService(t)
	ctx := context.Background()
	publish := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	post := addPost(t, repo, "hello", models.StatusPublished, publish)
	addPost(t, repo, "hidden", models.StatusDraft, publish)

	require.NoError(t, comments.Insert(ctx, &models.Comment{PostID: post.ID, Name: "a", Email: "a@example.com", Body: "one", Active: true}))
	require.NoError(t, comments.Insert(ctx, &models.Comment{PostID: post.ID, Name: "b", Email: "b@example.com", Body: "two", Active: false}))

	t.Run("match", func(t *testing.T) {
		detail, err := svc.GetDetail(ctx, 2024, 3, 5, "hello")
		require.NoError(t, err)
		assert.Equal(t, post.ID, detail.Post.ID)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "one", detail.Comments[0].Body)
	})

	misses := []struct {
		name             string
		year, month, day int
		slug             string
	}{
		{"wrong slug", 2024, 3, 5, "nope"},
		{"wrong day", 2024, 3, 6, "hello"},
		{"draft", 2024, 3, 5, "hidden"},
		{"month out of range", 2024, 13, 5, "hello"},
		{"day zero", 2024, 3, 0, "hello"},
	}
	for _, tt := range misses {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetByDate(ctx, tt.year, tt.month, tt.day, tt.slug)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.True(t, IsNotFound(err))
		})
	}
}

func TestPostServiceGetByDateRejectsImpossibleDates(t *testing.T) {
	svc, repo, _ := setupPostService(t)
	// A failing store proves impossible dates never reach it.
	repo.Err = errors.New("store queried")

	tests := []struct {
		name             string
		year, month, day int
	}{
		{"feb 30", 2024, 2, 30},
		{"feb 29 non leap", 2023, 2, 29},
		{"april 31", 2024, 4, 31},
		{"year zero", 0, 3, 5},
		{"month out of range", 2024, 13, 5},
		{"day zero", 2024, 3, 0},
		{"day 32", 2024, 1, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetByDate(context.Background(), tt.year, tt.month, tt.day, "x")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NotContains(t, err.Error(), "store queried")
		})
	}

	t.Run("leap day reaches the store", func(t *testing.T) {
		_, err := svc.GetByDate(context.Background(), 2024, 2, 29, "x")
		assert.ErrorContains(t, err, "store queried")
	})
}

func TestPostServiceGetByDateUsesLocation(t *testing.T) {
	repo := mock.NewPostRepository()
	loc := time.FixedZone("UTC+10", 10*3600)
	svc := NewPostService(repo, mock.NewCommentRepository(), 3, loc).WithClock(func() time.Time { return testNow })
	// 20:00 UTC on March 5th is March 6th in UTC+10.
	addPost(t, repo, "late", models.StatusPublished, time.Date(2024, time.March, 5, 20, 0, 0, 0, time.UTC))

	_, err := svc.GetByDate(context.Background(), 2024, 3, 5, "late")
	assert.ErrorIs(t, err, ErrNotFound)

	post, err := svc.GetByDate(context.Background(), 2024, 3, 6, "late")
	require.NoError(t, err)
	assert.Equal(t, "late", post.Slug)
}

func TestPostServiceGetPublished(t *testing.T) {
	svc, repo, _ := setupPostService(t)
	ctx := context.Background()
	published := addPost(t, repo, "pub", models.StatusPublished, testNow.Add(-time.Minute))
	draft := addPost(t, repo, "draft", models.StatusDraft, testNow.Add(-time.Minute))
	future := addPost(t, repo, "future", models.StatusPublished, testNow.Add(time.Minute))

	got, err := svc.GetPublished(ctx, published.ID)
	require.NoError(t, err)
	assert.Equal(t, "pub", got.Slug)

	for _, id := range []int{draft.ID, future.ID, 0, 999} {
		_, err := svc.GetPublished(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, "id %d", id)
	}
}

func TestPostServiceLatest(t *testing.T) {
	svc, repo, _ := setupPostService(t)
	for i := 0; i < 8; i++ {
		addPost(t, repo, "p"+string(rune('a'+i)), models.StatusPublished, testNow.Add(-time.Duration(i+1)*time.Minute))
	}
	posts, err := svc.Latest(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	assert.Equal(t, "pa", posts[0].Slug)
	assert.Equal(t, "pe", posts[4].Slug)
}

func TestCommentServiceAddComment(t *testing.T) {
	posts, repo, comments := setupPostService(t)
	svc := NewCommentService(comments, posts)
	ctx := context.Background()
	post := addPost(t, repo, "hello", models.StatusPublished, testNow.Add(-time.Hour))
	draft := addPost(t, repo, "draft", models.StatusDraft, testNow.Add(-time.Hour))

	var created []*models.Comment
	svc.OnCreate(func(c *models.Comment) { created = append(created, c) })

	t.Run("valid comment is stored active", func(t *testing.T) {
		form := forms.NewCommentForm(url.Values{"name": {" Ann "}, "email": {"ann@example.com"}, "body": {"Nice post"}})
		result, err := svc.AddComment(ctx, post.ID, form)
		require.NoError(t, err)
		require.NotNil(t, result.Comment)
		assert.Equal(t, "Ann", result.Comment.Name)
		assert.True(t, result.Comment.Active)
		assert.Equal(t, post.ID, result.Comment.PostID)
		assert.Equal(t, 1, comments.Count())
		assert.Len(t, created, 1)

		active, err := posts.ActiveComments(ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})

	t.Run("invalid email persists nothing", func(t *testing.T) {
		form := forms.NewCommentForm(url.Values{"name": {"Ann"}, "email": {"not-an-email"}, "body": {"Nice"}})
		result, err := svc.AddComment(ctx, post.ID, form)
		require.NoError(t, err)
		assert.Nil(t, result.Comment)
		assert.Equal(t, "Enter a valid email address.", result.Form.Errors.Get("email"))
		assert.Equal(t, 1, comments.Count())
	})

	t.Run("unpublished post", func(t *testing.T) {
		form := forms.NewCommentForm(url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "body": {"Nice"}})
		_, err := svc.AddComment(ctx, draft.ID, form)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 1, comments.Count())
	})

	t.Run("published post lookup", func(t *testing.T) {
		found, err := svc.PublishedPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.ID, found.ID)

		_, err = svc.PublishedPost(ctx, draft.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		comments.Err = errors.New("write failed")
		defer func() { comments.Err = nil }()
		form := forms.NewCommentForm(url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "body": {"Nice"}})
		_, err := svc.AddComment(ctx, post.ID, form)
		assert.ErrorContains(t, err, "write failed")
	})
}

func TestShareService(t *testing.T) {
	post := &models.Post{ID: 4, Title: "Go Patterns", Slug: "go-patterns", Status: models.StatusPublished}
	postURL := "https://blog.example.com/2024/5/1/go-patterns/"
	valid := url.Values{
		"name":     {"Ann"},
		"email":    {"ann@example.com"},
		"to":       {"bob@example.com"},
		"comments": {"You will like this"},
	}

	t.Run("valid form sends one message", func(t *testing.T) {
		mailer := &recordingMailer{}
		svc := NewShareService(mailer, "noreply@example.com")
		var outcomes []bool
		svc.OnSend(func(sent bool) { outcomes = append(outcomes, sent) })

		sent, err := svc.Share(context.Background(), post, forms.NewEmailPostForm(valid), postURL)
		require.NoError(t, err)
		assert.True(t, sent)
		require.Len(t, mailer.messages, 1)

		msg := mailer.messages[0]
		assert.Equal(t, "noreply@example.com", msg.From)
		assert.Equal(t, []string{"bob@example.com"}, msg.To)
		assert.Equal(t, "Ann (ann@example.com) recommends you reading Go Patterns", msg.Subject)
		assert.Equal(t, "Read Go Patterns at "+postURL+"\n\nAnn's comments: You will like this", msg.Body)
		assert.Equal(t, []bool{true}, outcomes)
	})

	t.Run("invalid recipient sends nothing", func(t *testing.T) {
		mailer := &recordingMailer{}
		svc := NewShareService(mailer, "noreply@example.com")
		values := url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "to": {"bob"}}
		form := forms.NewEmailPostForm(values)

		sent, err := svc.Share(context.Background(), post, form, postURL)
		require.NoError(t, err)
		assert.False(t, sent)
		assert.Empty(t, mailer.messages)
		assert.True(t, form.Errors.Has("to"))
	})

	t.Run("dispatch failure propagates", func(t *testing.T) {
		mailer := &recordingMailer{err: mail.ErrDispatch}
		svc := NewShareService(mailer, "noreply@example.com")
		var outcomes []bool
		svc.OnSend(func(sent bool) { outcomes = append(outcomes, sent) })

		sent, err := svc.Share(context.Background(), post, forms.NewEmailPostForm(valid), postURL)
		assert.False(t, sent)
		assert.ErrorIs(t, err, mail.ErrDispatch)
		assert.Equal(t, []bool{false}, outcomes)
	})
}

func TestErrNotFoundMatchesRepository(t *testing.T) {
	assert.ErrorIs(t, ErrNotFound, repositories.ErrNotFound)
}
