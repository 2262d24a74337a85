package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "ECOVIEWER"

// Config is the whole application configuration.
type Config struct {
	Port       string           `mapstructure:"port"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	ThingSpeak ThingSpeakConfig `mapstructure:"thingspeak"`
	Poll       PollConfig       `mapstructure:"poll"`
	History    HistoryConfig    `mapstructure:"history"`
	Dashboards DashboardsConfig `mapstructure:"dashboards"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type ThingSpeakConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type HistoryConfig struct {
	// 0 keeps the whole history
	Limit int `mapstructure:"limit"`
}

type DashboardsConfig struct {
	MaxSessions int `mapstructure:"max_sessions"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// RedisConfig enables the latest-view cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "ecoviewer.db")
	v.SetDefault("thingspeak.base_url", "https://api.thingspeak.com")
	v.SetDefault("thingspeak.timeout", "10s")
	v.SetDefault("poll.interval", "1s")
	v.SetDefault("history.limit", 300)
	v.SetDefault("dashboards.max_sessions", 64)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "30s")
}

// Load reads config.yml from the given directories (default "configs"), then applies
// ECOVIEWER_* environment overrides, e.g. ECOVIEWER_AUTH_SIGNING_KEY. A missing file is
// not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		errs = append(errs, errors.New("auth.signing_key is required"))
	}
	if c.Poll.Interval <= 0 {
		errs = append(errs, fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval))
	}
	if c.ThingSpeak.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("thingspeak.timeout must be positive, got %s", c.ThingSpeak.Timeout))
	}
	if c.History.Limit < 0 {
		errs = append(errs, fmt.Errorf("history.limit must be >= 0, got %d", c.History.Limit))
	}
	if c.Dashboards.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("dashboards.max_sessions must be positive, got %d", c.Dashboards.MaxSessions))
	}
	return errors.Join(errs...)
}
