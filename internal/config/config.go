// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the project-local config file read from the working directory.
const FileName = "stepform.yml"

// EnvPrefix prefixes every environment override, e.g. STEPFORM_LISTEN_ADDR.
const EnvPrefix = "STEPFORM"

// Config holds all configuration values for stepform.
type Config struct {
	ListenAddr      string        `mapstructure:"listen_addr" yaml:"listen_addr"`
	APIBaseURL      string        `mapstructure:"api_base_url" yaml:"api_base_url"`
	LogoutURL       string        `mapstructure:"logout_url" yaml:"logout_url"`
	ActivityTimeout time.Duration `mapstructure:"activity_timeout" yaml:"activity_timeout"`
	Countdown       time.Duration `mapstructure:"countdown" yaml:"countdown"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat       string        `mapstructure:"log_format" yaml:"log_format"`
	FlowsDir        string        `mapstructure:"flows_dir" yaml:"flows_dir"`
	TemplatesDir    string        `mapstructure:"templates_dir" yaml:"templates_dir"`
	ReturnYear      string        `mapstructure:"return_year" yaml:"return_year"`
}

var keys = []string{
	"listen_addr", "api_base_url", "logout_url", "activity_timeout", "countdown",
	"log_level", "log_format", "flows_dir", "templates_dir", "return_year",
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		APIBaseURL:      "http://localhost:8000",
		LogoutURL:       "/account/logout",
		ActivityTimeout: 9 * time.Minute,
		Countdown:       60 * time.Second,
		LogLevel:        "info",
		LogFormat:       "console",
		ReturnYear:      fmt.Sprint(time.Now().Year() - 1),
	}
}

// Load loads configuration with precedence ENV vars > config file > defaults.
// path selects the config file; when empty ./stepform.yml is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults := Default()
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("api_base_url", defaults.APIBaseURL)
	v.SetDefault("logout_url", defaults.LogoutURL)
	v.SetDefault("activity_timeout", defaults.ActivityTimeout)
	v.SetDefault("countdown", defaults.Countdown)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("flows_dir", defaults.FlowsDir)
	v.SetDefault("templates_dir", defaults.TemplatesDir)
	v.SetDefault("return_year", defaults.ReturnYear)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	if path == "" && fileExists(FileName) {
		path = FileName
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("config: api_base_url is required")
	}
	if c.ActivityTimeout <= 0 {
		return fmt.Errorf("config: activity_timeout must be positive, got %s", c.ActivityTimeout)
	}
	if c.Countdown < time.Second {
		return fmt.Errorf("config: countdown must be at least 1s, got %s", c.Countdown)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("config: log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// Write stores cfg as YAML at path.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
