package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tanq16/printgrab/internal/utils"
)

// Config holds the runtime settings for a run. Values resolve in order:
// built-in defaults, then the config file, then PRINTGRAB_* environment
// variables. Flags override all of these in cmd.
type Config struct {
	Output           string        `mapstructure:"output"`
	Extensions       []string      `mapstructure:"extensions"`
	UserAgent        string        `mapstructure:"user_agent"`
	Timeout          time.Duration `mapstructure:"timeout"`
	KeepAliveTimeout time.Duration `mapstructure:"keep_alive_timeout"`
	Proxy            string        `mapstructure:"proxy"`
	Retries          int           `mapstructure:"retries"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "printgrab", "config.yaml"), nil
}

// Load reads configuration from the given file, or from the default path when
// path is empty. A missing default file is fine; a missing explicit path is
// an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("output", ".")
	v.SetDefault("extensions", []string{})
	v.SetDefault("user_agent", utils.ToolUserAgent)
	v.SetDefault("timeout", 3*time.Minute)
	v.SetDefault("keep_alive_timeout", 90*time.Second)
	v.SetDefault("proxy", "")
	v.SetDefault("retries", utils.DefaultMaxAttempts)
	v.SetDefault("retry_delay", utils.DefaultRetryDelay)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if defaultPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(defaultPath); statErr == nil {
			v.SetConfigFile(defaultPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", defaultPath, err)
			}
		}
	}

	v.SetEnvPrefix("PRINTGRAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Output == "" {
		c.Output = "."
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if c.Timeout < 0 || c.KeepAliveTimeout < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("timeouts and delays cannot be negative")
	}
	return nil
}
