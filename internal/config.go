package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Blog    BlogConfig        `yaml:"blog"`
	Content ContentConfig     `yaml:"content"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Session SessionConfig     `yaml:"session"`
	GitHub  GitHubConfig      `yaml:"github"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Blog.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Session.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// BlogConfig holds blog presentation settings.
type BlogConfig struct {
	Title        string   `yaml:"title"`
	Subtitle     string   `yaml:"subtitle"`
	PostsPerPage int      `yaml:"posts_per_page"`
	Themes       []string `yaml:"themes"`
	DefaultTheme string   `yaml:"default_theme"`
}

// Validate validates the blog configuration.
func (c *BlogConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.PostsPerPage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.Themes, validation.Required),
		validation.Field(&c.DefaultTheme, validation.Required),
	); err != nil {
		return err
	}
	for _, t := range c.Themes {
		if t == c.DefaultTheme {
			return nil
		}
	}
	return fmt.Errorf("blog: default_theme %q is not in themes", c.DefaultTheme)
}

// ContentConfig holds the Markdown posts folder settings.
type ContentConfig struct {
	Path string `yaml:"path"`
	// SyncInterval throttles the background reconcile pass triggered by
	// content reads. Explicit admin syncs ignore it.
	SyncInterval time.Duration `yaml:"sync_interval"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	); err != nil {
		return err
	}
	if c.SyncInterval < 0 {
		return fmt.Errorf("content: sync_interval must not be negative")
	}
	return nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SessionConfig holds session cookie settings.
type SessionConfig struct {
	Lifetime     time.Duration `yaml:"lifetime"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	if c.Lifetime <= 0 {
		return fmt.Errorf("session: lifetime must be positive")
	}
	return nil
}

// GitHubConfig holds the optional GitHub API token. An empty token keeps
// the proxy working against the unauthenticated rate limit.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Blog: BlogConfig{
			Title:        "My Blog",
			Subtitle:     "Thoughts, notes, and code",
			PostsPerPage: 10,
			Themes:       []string{"light", "dark", "ocean", "forest", "sunset"},
			DefaultTheme: "light",
		},
		Content: ContentConfig{
			Path:         "./posts",
			SyncInterval: 5 * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: "./inkwell.db",
		},
		Session: SessionConfig{
			Lifetime: 24 * time.Hour * 7,
		},
	}
}
