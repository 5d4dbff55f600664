package routes

import (
	"net/http"

	"blog/app/controllers"
	"blog/app/metrics"
	"blog/app/middleware"

	"github.com/gorilla/mux"
)

// Dependencies are the handlers and cross-cutting pieces the router wires together.
type Dependencies struct {
	Posts    *controllers.PostController
	Comments *controllers.CommentController

	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Recorder receives request metrics. Defaults to metrics.Nop.
	Recorder metrics.Recorder
	// Limiter throttles share and comment submissions when set.
	Limiter *middleware.RateLimiter
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(d Dependencies) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RouteName)

	limit := func(h http.HandlerFunc) http.Handler {
		if d.Limiter == nil {
			return h
		}
		return d.Limiter.Limit(h)
	}

	router.HandleFunc("/", d.Posts.List).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/{year:[0-9]{4}}/{month:[0-9]{1,2}}/{day:[0-9]{1,2}}/{slug}/", d.Posts.Detail).
		Methods(http.MethodGet, http.MethodHead)
	router.Handle("/{id:[0-9]+}/share/", limit(d.Posts.Share)).Methods(http.MethodGet, http.MethodPost)
	// CommentController answers non-POST requests with 405 and an Allow header.
	router.Handle("/{id:[0-9]+}/comment/", limit(d.Comments.Comment))
	router.HandleFunc("/feed/", d.Posts.Feed).Methods(http.MethodGet, http.MethodHead)
	if d.Metrics != nil {
		router.Handle("/metrics", d.Metrics).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	return router
}

// Handler wraps the router with the global middleware chain.
func Handler(d Dependencies) http.Handler {
	rec := d.Recorder
	if rec == nil {
		rec = metrics.Nop{}
	}

	var h http.Handler = SetupRoutes(d)
	h = middleware.Recoverer(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.Metrics(rec)(h)
	h = middleware.Logger(h)
	return middleware.RequestID(h)
}
