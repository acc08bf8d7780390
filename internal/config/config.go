// Package config handles the configuration directory, session file path and
// service settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"taskdash/internal/pipeline"
	"taskdash/internal/session"
)

const (
	// AppName is the application directory name.
	AppName = "taskdash"

	// EnvPrefix prefixes every environment override (TASKDASH_API_BASE, ...).
	EnvPrefix = "TASKDASH"

	// SessionFile is the stored session token filename.
	SessionFile = "session.json"

	// DefaultAPIBase is used when no base URL is configured.
	DefaultAPIBase = "http://localhost:7071/api"

	// DefaultTimeout bounds each API call.
	DefaultTimeout = 10 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIBase is the task service base URL.
	APIBase string

	// HTTPLog enables request/response logging.
	HTTPLog bool

	// Timeout bounds each API call.
	Timeout time.Duration

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Entry is where an expired session sends the user. Set by the dispatcher.
	Entry *pipeline.EntryHook
}

// New creates a Config for the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdash or $HOME/.config/taskdash.
// Settings come from TASKDASH_* environment variables, then an optional
// config.yaml in the directory, then defaults.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("api_base", DefaultAPIBase)
	v.SetDefault("http_log", false)
	v.SetDefault("timeout", DefaultTimeout)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	base := strings.TrimSpace(v.GetString("api_base"))
	if base == "" {
		return nil, errors.New("api_base must not be empty")
	}

	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout: %s", v.GetString("timeout"))
	}

	return &Config{
		Dir:     dir,
		APIBase: base,
		HTTPLog: v.GetBool("http_log"),
		Timeout: timeout,
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path to the stored session token file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// Session returns the credential store backed by the session file.
func (c *Config) Session() *session.FileStore {
	return session.NewFileStore(c.SessionPath())
}

// HasSession checks if a session token is stored.
func (c *Config) HasSession() bool {
	_, ok := c.Session().Token()
	return ok
}
