package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	ioutils "github.com/handiism/vinyl-vault/internal/io"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "VINYLVAULT_"

	// ConfigPathEnvVar overrides the config file location.
	ConfigPathEnvVar = "VINYLVAULT_CONFIG"

	appDirName = "vinylvault"
)

// Settings holds all configuration options.
type Settings struct {
	// Remote API
	APIURL         string        `koanf:"api_url"`
	UserAgent      string        `koanf:"user_agent"`
	RequestTimeout time.Duration `koanf:"request_timeout"` // 0 means no timeout

	// Session storage
	StorePath string `koanf:"store_path"`

	// Artwork search
	ArtworkSearchURL       string `koanf:"artwork_search_url"`
	ArtworkLimit           int    `koanf:"artwork_limit"`
	ArtworkRatePerMinute   int    `koanf:"artwork_rate_per_minute"`
	ArtworkBreakerFailures int    `koanf:"artwork_breaker_failures"`

	// Logging
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"` // console, json
	LogFile   string `koanf:"log_file"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	dir := DefaultDir()
	return &Settings{
		APIURL:         "http://localhost:3000",
		UserAgent:      "vinylvault",
		RequestTimeout: 0,

		StorePath: filepath.Join(dir, "session.db"),

		ArtworkSearchURL:       "https://itunes.apple.com/search",
		ArtworkLimit:           10,
		ArtworkRatePerMinute:   20,
		ArtworkBreakerFailures: 5,

		LogLevel:  "info",
		LogFormat: "console",
		LogFile:   filepath.Join(dir, "vinylvault.log"),
	}
}

// DefaultDir returns the per-user directory holding the config file,
// the session store and the log file.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, appDirName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// ResolvePath picks the config file to load: the explicit path if given,
// else $VINYLVAULT_CONFIG, else the default path when it exists. An empty
// result means no file.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath()); err == nil {
		return DefaultPath()
	}
	return ""
}

// Load reads settings from defaults, the YAML file at path (if any) and the
// environment, then validates them.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	settings := &Settings{}
	if err := k.Unmarshal("", settings); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// Validate checks the settings for values the client cannot work with.
func (s *Settings) Validate() error {
	var errs []error

	if s.APIURL == "" {
		errs = append(errs, errors.New("api_url is required"))
	} else if u, err := url.Parse(s.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api_url %q is not an absolute URL", s.APIURL))
	}
	if s.ArtworkLimit <= 0 {
		errs = append(errs, errors.New("artwork_limit must be positive"))
	}
	if s.RequestTimeout < 0 {
		errs = append(errs, errors.New("request_timeout must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Save writes settings to a YAML file, creating parent directories.
func (s *Settings) Save(path string) error {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(s, "koanf"), nil); err != nil {
		return err
	}

	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return err
	}

	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	return ioutils.WriteFileAtomic(path, data, 0o600)
}

// BaseURL returns the API URL without a trailing slash.
func (s *Settings) BaseURL() string {
	return strings.TrimRight(s.APIURL, "/")
}
