// Package config loads CLI settings from defaults, an optional seht.yaml
// file and SEHT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chrisuehlinger/seht/seht"
)

const (
	// AppName names the config file and the config directory.
	AppName = "seht"
	// EnvPrefix prefixes environment overrides, e.g. SEHT_HTTP_TIMEOUT.
	EnvPrefix = "SEHT"
)

// Config is the resolved configuration.
type Config struct {
	ReadyPolicy string      `mapstructure:"ready_policy"`
	PageScripts bool        `mapstructure:"page_scripts"`
	HTTP        HTTPConfig  `mapstructure:"http"`
	Cache       CacheConfig `mapstructure:"cache"`
	Log         LogConfig   `mapstructure:"log"`
}

// HTTPConfig configures remote document loading.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	Size int `mapstructure:"size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ReadyPolicy: seht.ReadyRunIfLoaded.String(),
		PageScripts: false,
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "seht/1.0",
		},
		Cache: CacheConfig{Size: 100},
	}
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an explicit file to read. It must exist.
	ConfigFile string
	// SearchPaths are searched for seht.yaml when ConfigFile is empty. Nil
	// means the working directory and the user config directory.
	SearchPaths []string
}

// Load resolves the configuration. It returns the file that was read, or
// "" when only defaults and the environment applied.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("ready_policy", defaults.ReadyPolicy)
	v.SetDefault("page_scripts", defaults.PageScripts)
	v.SetDefault("http.timeout", defaults.HTTP.Timeout)
	v.SetDefault("http.user_agent", defaults.HTTP.UserAgent)
	v.SetDefault("cache.size", defaults.Cache.Size)
	v.SetDefault("log.verbose", defaults.Log.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, "", fmt.Errorf("config file not found: %w", err)
		}
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		paths := opts.SearchPaths
		if paths == nil {
			paths = defaultSearchPaths()
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

func defaultSearchPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, AppName))
	}
	return paths
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("ready_policy: %w", err)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative, got %v", c.HTTP.Timeout)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size)
	}
	return nil
}

// Policy returns the configured ready policy.
func (c *Config) Policy() (seht.ReadyPolicy, error) {
	return seht.ParseReadyPolicy(c.ReadyPolicy)
}
