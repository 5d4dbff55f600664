// Package config loads the blog configuration from an optional TOML file
// and BLOG_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Blog      BlogConfig      `toml:"blog"`
	Storage   StorageConfig   `toml:"storage"`
	Mail      MailConfig      `toml:"mail"`
	Log       LogConfig       `toml:"log"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
}

type ServerConfig struct {
	Addr            string        `toml:"addr"`
	BaseURL         string        `toml:"base_url"`
	Timezone        string        `toml:"timezone"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type BlogConfig struct {
	Title        string `toml:"title"`
	Description  string `toml:"description"`
	PostsPerPage int    `toml:"posts_per_page"`
	FeedItems    int    `toml:"feed_items"`
}

type StorageConfig struct {
	Driver      string `toml:"driver"`
	BadgerPath  string `toml:"badger_path"`
	DatabaseURL string `toml:"database_url"`
}

type MailConfig struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type RateLimitConfig struct {
	PerMinute int `toml:"per_minute"`
	Burst     int `toml:"burst"`
}

// Storage and mail drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
	MailDriverLog  = "log"
	MailDriverSMTP = "smtp"
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Timezone:        "UTC",
			ShutdownTimeout: 10 * time.Second,
		},
		Blog: BlogConfig{
			Title:        "My Blog",
			Description:  "This is my blog.",
			PostsPerPage: 3,
			FeedItems:    5,
		},
		Storage: StorageConfig{
			Driver:     DriverBadger,
			BadgerPath: "data/badger",
		},
		Mail: MailConfig{
			Driver: MailDriverLog,
			Port:   587,
			From:   "noreply@localhost",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		RateLimit: RateLimitConfig{
			PerMinute: 20,
			Burst:     5,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, v)
		}
		*dst = n
		return nil
	}

	str("BLOG_ADDR", &c.Server.Addr)
	str("BLOG_BASE_URL", &c.Server.BaseURL)
	str("BLOG_TIMEZONE", &c.Server.Timezone)
	str("BLOG_STORAGE_DRIVER", &c.Storage.Driver)
	str("BLOG_BADGER_PATH", &c.Storage.BadgerPath)
	str("BLOG_DATABASE_URL", &c.Storage.DatabaseURL)
	str("BLOG_MAIL_DRIVER", &c.Mail.Driver)
	str("BLOG_SMTP_HOST", &c.Mail.Host)
	str("BLOG_SMTP_USER", &c.Mail.Username)
	str("BLOG_SMTP_PASS", &c.Mail.Password)
	str("BLOG_MAIL_FROM", &c.Mail.From)
	str("BLOG_LOG_LEVEL", &c.Log.Level)
	str("BLOG_LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("BLOG_SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BLOG_SHUTDOWN_TIMEOUT: %w", err)
		}
		c.Server.ShutdownTimeout = d
	}

	return errors.Join(
		num("BLOG_SMTP_PORT", &c.Mail.Port),
		num("BLOG_POSTS_PER_PAGE", &c.Blog.PostsPerPage),
		num("BLOG_FEED_ITEMS", &c.Blog.FeedItems),
		num("BLOG_RATE_LIMIT_PER_MINUTE", &c.RateLimit.PerMinute),
		num("BLOG_RATE_LIMIT_BURST", &c.RateLimit.Burst),
	)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must be set"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("server.timezone: %w", err))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Blog.PostsPerPage < 1 {
		errs = append(errs, errors.New("blog.posts_per_page must be at least 1"))
	}
	if c.Blog.FeedItems < 1 {
		errs = append(errs, errors.New("blog.feed_items must be at least 1"))
	}

	switch c.Storage.Driver {
	case DriverBadger:
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("storage.database_url is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}

	switch c.Mail.Driver {
	case MailDriverLog:
	case MailDriverSMTP:
		if c.Mail.Host == "" {
			errs = append(errs, errors.New("mail.host is required for the smtp driver"))
		}
		if c.Mail.Port < 1 || c.Mail.Port > 65535 {
			errs = append(errs, fmt.Errorf("mail.port: %d out of range", c.Mail.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("mail.driver: unknown driver %q", c.Mail.Driver))
	}

	if c.RateLimit.PerMinute < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("ratelimit values cannot be negative"))
	}
	return errors.Join(errs...)
}

// Location resolves server.timezone. "Local" is rejected because it has no
// portable name.
func (c Config) Location() (*time.Location, error) {
	if c.Server.Timezone == "" || c.Server.Timezone == "Local" {
		return nil, fmt.Errorf("unsupported time zone %q", c.Server.Timezone)
	}
	return time.LoadLocation(c.Server.Timezone)
}

// RateLimitEnabled reports whether submissions are throttled.
func (c Config) RateLimitEnabled() bool {
	return c.RateLimit.PerMinute > 0
}
