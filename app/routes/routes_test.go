package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blog/app/controllers"
	"blog/app/mail"
	"blog/app/metrics"
	"blog/app/middleware"
	"blog/app/models"
	"blog/app/repositories"
	"blog/app/services"
	"blog/app/views"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nullMailer struct{ sent int }

func (m *nullMailer) Send(ctx context.Context, msg mail.Message) error {
	m.sent++
	return nil
}

type testApp struct {
	handler http.Handler
	store   *repositories.Store
	mailer  *nullMailer
	post    *models.Post
}

func setupTestApp(t *testing.T, limiter *middleware.RateLimiter) *testApp {
	store, err := repositories.OpenStore("", time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	post := &models.Post{
		Title:   "Test Post",
		Slug:    "test-post",
		Author:  "admin",
		Body:    "This is a test post",
		Publish: time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC),
		Status:  models.StatusPublished,
	}
	require.NoError(t, store.Posts().Insert(context.Background(), post))

	renderer, err := views.New(views.Site{Title: "Blog", Location: time.UTC})
	require.NoError(t, err)

	mailer := &nullMailer{}
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	postService := services.NewPostService(store.Posts(), store.Comments(), 3, time.UTC)
	shareService := services.NewShareService(mailer, "noreply@example.com")
	commentService := services.NewCommentService(store.Comments(), postService)

	handler := Handler(Dependencies{
		Posts:    controllers.NewPostController(postService, shareService, renderer, "", controllers.FeedOptions{Title: "Blog"}),
		Comments: controllers.NewCommentController(commentService, renderer),
		Metrics:  metrics.Handler(reg),
		Recorder: collector,
		Limiter:  limiter,
	})
	return &testApp{handler: handler, store: store, mailer: mailer, post: post}
}

func (a *testApp) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	app := setupTestApp(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"list", http.MethodGet, "/", http.StatusOK},
		{"list bad page", http.MethodGet, "/?page=x", http.StatusOK},
		{"detail", http.MethodGet, "/2024/2/1/test-post/", http.StatusOK},
		{"detail zero padded", http.MethodGet, "/2024/02/01/test-post/", http.StatusOK},
		{"detail missing", http.MethodGet, "/2024/2/2/test-post/", http.StatusNotFound},
		{"detail impossible date", http.MethodGet, "/2024/2/30/test-post/", http.StatusNotFound},
		{"detail year zero", http.MethodGet, "/0000/2/1/test-post/", http.StatusNotFound},
		{"detail missing slash", http.MethodGet, "/2024/2/1/test-post", http.StatusNotFound},
		{"share form", http.MethodGet, "/1/share/", http.StatusOK},
		{"share missing", http.MethodGet, "/42/share/", http.StatusNotFound},
		{"comment get", http.MethodGet, "/1/comment/", http.StatusMethodNotAllowed},
		{"share delete", http.MethodDelete, "/1/share/", http.StatusMethodNotAllowed},
		{"feed", http.MethodGet, "/feed/", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"unknown", http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(tt.method, tt.path, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestCommentRouteAllowsOnlyPost(t *testing.T) {
	app := setupTestApp(t, nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := app.do(method, "/1/comment/", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, http.MethodPost, w.Header().Get("Allow"), method)
	}
}

func TestCommentAndShareFlow(t *testing.T) {
	app := setupTestApp(t, nil)

	w := app.do(http.MethodPost, "/1/comment/", url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "body": {"First!"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Your comment has been added.")

	w = app.do(http.MethodGet, "/2024/2/1/test-post/", nil)
	assert.Contains(t, w.Body.String(), "First!")

	w = app.do(http.MethodPost, "/1/share/", url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "to": {"bob@example.com"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "successfully sent")
	assert.Equal(t, 1, app.mailer.sent)

	w = app.do(http.MethodGet, "/metrics", nil)
	assert.Contains(t, w.Body.String(), `blog_http_requests_total{method="POST",route="/{id:[0-9]+}/comment/",status="200"} 1`)
}

func TestRateLimitedSubmissions(t *testing.T) {
	app := setupTestApp(t, middleware.NewRateLimiter(1, 1))
	form := url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "body": {"hi"}}

	assert.Equal(t, http.StatusOK, app.do(http.MethodPost, "/1/comment/", form).Code)
	w := app.do(http.MethodPost, "/1/comment/", form)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/1/share/", nil).Code, "reads are not limited")
}
