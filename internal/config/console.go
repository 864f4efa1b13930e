package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Store drivers for the persisted session credential.
const (
	StoreBolt   = "bbolt"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Console is the runtime configuration of the console client.
type Console struct {
	APIBaseURL        string
	HTTPClientTimeout time.Duration

	WarningWindow   time.Duration
	ActivityQuiet   time.Duration
	DefaultTokenTTL time.Duration

	StoreDriver string
	StorePath   string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// consoleFile mirrors the TOML layout; durations are Go duration strings.
type consoleFile struct {
	API struct {
		BaseURL string `toml:"base_url"`
		Timeout string `toml:"timeout"`
	} `toml:"api"`
	Session struct {
		WarningWindow    string `toml:"warning_window"`
		ActivityDebounce string `toml:"activity_debounce"`
		DefaultTTL       string `toml:"default_ttl"`
	} `toml:"session"`
	Store struct {
		Driver string `toml:"driver"`
		Path   string `toml:"path"`
	} `toml:"store"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
		File   string `toml:"file"`
	} `toml:"log"`
}

// ConfigDir returns ~/.backoffice.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".backoffice"), nil
}

// DefaultConsole returns the built-in console defaults.
func DefaultConsole() Console {
	cfg := Console{
		APIBaseURL:        "http://localhost:8080",
		HTTPClientTimeout: 10 * time.Second,
		WarningWindow:     5 * time.Minute,
		ActivityQuiet:     time.Second,
		DefaultTokenTTL:   time.Hour,
		StoreDriver:       StoreBolt,
		LogLevel:          "info",
		LogFormat:         "text",
	}
	if dir, err := ConfigDir(); err == nil {
		cfg.StorePath = filepath.Join(dir, "session.db")
	}
	return cfg
}

// LoadConsole layers defaults, the TOML file named by CONSOLE_CONFIG (or
// ~/.backoffice/console.toml) and the environment, in that order.
func LoadConsole() (Console, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Console{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := DefaultConsole()

	path := os.Getenv("CONSOLE_CONFIG")
	explicit := path != ""
	if !explicit {
		if dir, err := ConfigDir(); err == nil {
			path = filepath.Join(dir, "console.toml")
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Console{}, err
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Console{}, fmt.Errorf("invalid console config: %w", err)
	}
	return cfg, nil
}

func (c *Console) loadFile(path string) error {
	var file consoleFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	setString(&c.APIBaseURL, file.API.BaseURL)
	setString(&c.StoreDriver, file.Store.Driver)
	setString(&c.StorePath, file.Store.Path)
	setString(&c.LogLevel, file.Log.Level)
	setString(&c.LogFormat, file.Log.Format)
	setString(&c.LogFile, file.Log.File)

	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"api.timeout", file.API.Timeout, &c.HTTPClientTimeout},
		{"session.warning_window", file.Session.WarningWindow, &c.WarningWindow},
		{"session.activity_debounce", file.Session.ActivityDebounce, &c.ActivityQuiet},
		{"session.default_ttl", file.Session.DefaultTTL, &c.DefaultTokenTTL},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", path, d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func (c *Console) applyEnv() {
	c.APIBaseURL = getEnv("API_BASE_URL", c.APIBaseURL)
	c.HTTPClientTimeout = getDurationEnv("HTTP_CLIENT_TIMEOUT", c.HTTPClientTimeout)
	c.WarningWindow = getDurationEnv("SESSION_WARNING_WINDOW", c.WarningWindow)
	c.ActivityQuiet = getDurationEnv("SESSION_ACTIVITY_DEBOUNCE", c.ActivityQuiet)
	c.DefaultTokenTTL = getDurationEnv("SESSION_DEFAULT_TTL", c.DefaultTokenTTL)
	c.StoreDriver = strings.ToLower(getEnv("SESSION_STORE_DRIVER", c.StoreDriver))
	c.StorePath = getEnv("SESSION_STORE_PATH", c.StorePath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
}

// Validate rejects settings the session subsystem cannot run with.
func (c Console) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if c.WarningWindow <= 0 {
		return errors.New("warning window must be positive")
	}
	if c.ActivityQuiet <= 0 {
		return errors.New("activity debounce must be positive")
	}
	if c.DefaultTokenTTL <= 0 {
		return errors.New("default token ttl must be positive")
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StoreBolt, StoreSQLite:
		if c.StorePath == "" {
			return fmt.Errorf("store driver %q needs SESSION_STORE_PATH", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
