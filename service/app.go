package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"blog/app/config"
	"blog/app/controllers"
	"blog/app/database"
	"blog/app/mail"
	"blog/app/metrics"
	"blog/app/middleware"
	"blog/app/models"
	"blog/app/repositories"
	"blog/app/repositories/postgres"
	"blog/app/routes"
	"blog/app/services"
	"blog/app/views"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

// Storage is an open post and comment store.
type Storage struct {
	Posts    repositories.PostRepository
	Comments repositories.CommentRepository

	badger *repositories.Store
	sqlDB  *sql.DB
}

// Close releases the underlying database.
func (s *Storage) Close() error {
	if s.badger != nil {
		return s.badger.Close()
	}
	if s.sqlDB != nil {
		return s.sqlDB.Close()
	}
	return nil
}

// OpenStorage opens the store selected by cfg.Storage.Driver.
func OpenStorage(ctx context.Context, cfg config.Config) (*Storage, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := database.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Posts:    postgres.NewPostRepository(db, loc),
			Comments: postgres.NewCommentRepository(db),
			sqlDB:    db,
		}, nil
	default:
		store, err := repositories.OpenStore(cfg.Storage.BadgerPath, loc)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Posts:    store.Posts(),
			Comments: store.Comments(),
			badger:   store,
		}, nil
	}
}

// NewMailer builds the mailer selected by cfg.Mail.Driver.
func NewMailer(cfg config.MailConfig) mail.Mailer {
	if cfg.Driver == config.MailDriverSMTP {
		return mail.NewSMTPMailer(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.From)
	}
	return mail.NewLogMailer(cfg.From)
}

// App is a fully wired blog.
type App struct {
	Handler http.Handler
	Storage *Storage
}

// NewApp wires storage, services, controllers and routes. reg receives the
// application metrics.
func NewApp(cfg config.Config, storage *Storage, mailer mail.Mailer, reg *prometheus.Registry) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	renderer, err := views.New(views.Site{Title: cfg.Blog.Title, Description: cfg.Blog.Description, Location: loc})
	if err != nil {
		return nil, err
	}
	collector := metrics.NewCollector(reg)

	postService := services.NewPostService(storage.Posts, storage.Comments, cfg.Blog.PostsPerPage, loc)
	commentService := services.NewCommentService(storage.Comments, postService)
	commentService.OnCreate(func(*models.Comment) { collector.CommentCreated() })
	shareService := services.NewShareService(mailer, cfg.Mail.From)
	shareService.OnSend(collector.ShareAttempted)

	deps := routes.Dependencies{
		Posts: controllers.NewPostController(postService, shareService, renderer, cfg.Server.BaseURL, controllers.FeedOptions{
			Title:       cfg.Blog.Title,
			Description: cfg.Blog.Description,
			Items:       cfg.Blog.FeedItems,
		}),
		Comments: controllers.NewCommentController(commentService, renderer),
		Metrics:  metrics.Handler(reg),
		Recorder: collector,
	}
	if cfg.RateLimitEnabled() {
		deps.Limiter = middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
		deps.Limiter.OnLimited = collector.RateLimited
	}

	return &App{Handler: routes.Handler(deps), Storage: storage}, nil
}

// RunAppServer serves the blog until ctx is cancelled, then shuts down
// gracefully within cfg.Server.ShutdownTimeout.
func RunAppServer(ctx context.Context, cfg config.Config) error {
	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := NewApp(cfg, storage, NewMailer(cfg.Mail), reg)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}
	return Serve(ctx, listener, app.Handler, cfg.Server.ShutdownTimeout)
}

// Serve runs handler on listener until ctx is done.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", listener.Addr().String()).Info("[server] listening")
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("[server] shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("[server] stopped")
	return nil
}
