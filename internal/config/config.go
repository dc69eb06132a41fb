// Package config loads chemthink settings from defaults, an optional YAML
// file, a .env file and CHEMTHINK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/chemthink/chemthink/internal/problem"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CHEMTHINK"

// Config is the full application configuration.
type Config struct {
	// APIURL is the practice service base URL.
	APIURL string `mapstructure:"api_url"`

	// Offline skips the practice service and uses seed problems and local
	// grading only.
	Offline bool `mapstructure:"offline"`

	// RequestTimeout bounds each practice service request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	MasteryTarget int    `mapstructure:"mastery_target"`
	Primitive     string `mapstructure:"primitive"`
	Topic         string `mapstructure:"topic"`

	// DB overrides the SQLite database path.
	DB string `mapstructure:"db"`

	// StudentID overrides the per-device student identity.
	StudentID string `mapstructure:"student_id"`

	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// ServerConfig configures the practice service started by `chemthink serve`.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// RateLimit is the sustained requests per second allowed per client IP
	// on the LLM endpoints; RateBurst is the bucket size. Zero disables.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`

	// SimilarOnMiss attaches a similar problem to incorrect grade responses.
	SimilarOnMiss bool `mapstructure:"similar_on_miss"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8000")
	v.SetDefault("offline", false)
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("mastery_target", 3)
	v.SetDefault("primitive", string(problem.DefaultPrimitive))
	v.SetDefault("topic", problem.DefaultTopic)
	v.SetDefault("db", "")
	v.SetDefault("student_id", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.rate_limit", 2.0)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("server.similar_on_miss", true)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load reads configuration. When path is empty, chemthink.yaml is looked up
// in the XDG config directory and the working directory; a missing file is
// not an error. A .env file in the working directory is loaded first and
// never overrides variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("chemthink")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Primitive = strings.ToUpper(strings.TrimSpace(cfg.Primitive))
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.MasteryTarget < 1 {
		return fmt.Errorf("mastery_target must be at least 1, got %d", c.MasteryTarget)
	}
	if !c.Offline {
		if strings.TrimSpace(c.APIURL) == "" {
			return errors.New("api_url is required unless offline is set")
		}
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("api_url %q must be an absolute http(s) URL", c.APIURL)
		}
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	p, err := problem.ParsePrimitive(c.Primitive)
	if err != nil {
		return err
	}
	if err := problem.ValidateTopic(p, c.Topic); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return errors.New("server.rate_limit and server.rate_burst must not be negative")
	}
	return nil
}

// Dir returns the chemthink config directory: $XDG_CONFIG_HOME/chemthink or
// ~/.config/chemthink.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "chemthink"), nil
}
