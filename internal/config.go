package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/wikishell/internal/engine"
	"github.com/starford/wikishell/internal/wikifolder"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Wiki      WikiConfig        `yaml:"wiki"`
	Auth      AuthConfig        `yaml:"auth"`
	Window    WindowConfig      `yaml:"window"`
	Lifecycle LifecycleConfig   `yaml:"lifecycle"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Wiki.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Window.Validate(); err != nil {
		return err
	}
	return c.Lifecycle.Validate()
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

// HTTPConfig holds the fixed port the wiki server listens on.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// WikiConfig selects the wiki folder opened at startup.
type WikiConfig struct {
	Path     string `yaml:"path"`
	Template string `yaml:"template"`
	// IndexDir is relative to the wiki folder.
	IndexDir string `yaml:"index_dir"`
}

// Validate validates the wiki configuration.
func (c *WikiConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Template, validation.Required, validation.By(knownTemplate)),
		validation.Field(&c.IndexDir, validation.Required),
	)
}

func knownTemplate(v any) error {
	name, _ := v.(string)
	if !wikifolder.HasTemplate(name) {
		return fmt.Errorf("unknown template %q", name)
	}
	return nil
}

// AuthConfig holds authentication configuration for the wiki API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// WindowConfig sizes the host window.
type WindowConfig struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	SidebarWidth int `yaml:"sidebar_width"`
}

// Validate validates the window configuration.
func (c *WindowConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(1)),
		validation.Field(&c.Height, validation.Required, validation.Min(1)),
		validation.Field(&c.SidebarWidth, validation.Min(0), validation.Max(c.Width)),
	)
}

// LifecycleConfig bounds server start and stop.
type LifecycleConfig struct {
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
	StopTimeout  time.Duration `yaml:"stop_timeout"`
}

// Validate validates the lifecycle configuration.
func (c *LifecycleConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ReadyTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.StopTimeout, validation.Required, validation.Min(100*time.Millisecond)),
	)
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
		Wiki: WikiConfig{
			Path:     "./wiki",
			Template: wikifolder.TemplateServer,
			IndexDir: engine.DefaultIndexDir,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Window: WindowConfig{
			Width:  1400,
			Height: 800,
		},
		Lifecycle: LifecycleConfig{
			ReadyTimeout: 30 * time.Second,
			StopTimeout:  5 * time.Second,
		},
	}
}
