// Package config loads service settings from an optional YAML file, a .env
// file and APP_-prefixed environment variables (APP_DATABASE_URL and so on).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Env             string        `mapstructure:"env"`
	Port            string        `mapstructure:"port"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type DatabaseCfg struct {
	// Driver is "postgres" or "memory".
	Driver       string        `mapstructure:"driver"`
	URL          string        `mapstructure:"url"`
	MaxConns     int32         `mapstructure:"max_conns"`
	ConnectRetry time.Duration `mapstructure:"connect_retry"`
	Migrate      bool          `mapstructure:"migrate"`
}

type RedisCfg struct {
	URL        string        `mapstructure:"url"`
	SummaryTTL time.Duration `mapstructure:"summary_ttl"`
}

type KafkaCfg struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type QueueCfg struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency"`
}

type AuthCfg struct {
	Alg           string `mapstructure:"alg"`
	HSSecret      string `mapstructure:"hs_secret"`
	PublicKeyPath string `mapstructure:"public_key_path"`
}

type RateLimitCfg struct {
	SendPerMinute int `mapstructure:"send_per_minute"`
	Burst         int `mapstructure:"burst"`
}

type Config struct {
	App       AppCfg       `mapstructure:"app"`
	Database  DatabaseCfg  `mapstructure:"database"`
	Redis     RedisCfg     `mapstructure:"redis"`
	Kafka     KafkaCfg     `mapstructure:"kafka"`
	Queue     QueueCfg     `mapstructure:"queue"`
	Auth      AuthCfg      `mapstructure:"auth"`
	RateLimit RateLimitCfg `mapstructure:"ratelimit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.request_timeout", 3*time.Second)
	v.SetDefault("app.shutdown_timeout", 10*time.Second)
	v.SetDefault("app.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.connect_retry", 30*time.Second)
	v.SetDefault("database.migrate", true)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.summary_ttl", 5*time.Minute)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "messaging.events")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("auth.alg", "HS256")
	v.SetDefault("auth.hs_secret", "")
	v.SetDefault("auth.public_key_path", "")
	v.SetDefault("ratelimit.send_per_minute", 60)
	v.SetDefault("ratelimit.burst", 10)
}

// Load reads .env (when present), then path (when non-empty), then the
// environment. Later sources win.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.App.CORSOrigins = splitList(cfg.App.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres driver"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q must be postgres or memory", c.Database.Driver))
	}
	switch c.Auth.Alg {
	case "HS256":
		if c.Auth.HSSecret == "" {
			errs = append(errs, errors.New("auth.hs_secret is required for HS256"))
		}
	case "RS256":
		if c.Auth.PublicKeyPath == "" {
			errs = append(errs, errors.New("auth.public_key_path is required for RS256"))
		}
	default:
		errs = append(errs, fmt.Errorf("auth.alg %q must be HS256 or RS256", c.Auth.Alg))
	}
	if c.Queue.Enabled && c.Redis.URL == "" {
		errs = append(errs, errors.New("queue.enabled requires redis.url"))
	}
	if c.Queue.Concurrency <= 0 {
		errs = append(errs, errors.New("queue.concurrency must be positive"))
	}
	if c.RateLimit.SendPerMinute < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("ratelimit values must not be negative"))
	}
	if c.App.RequestTimeout <= 0 {
		errs = append(errs, errors.New("app.request_timeout must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "" || c.App.Env == "development"
}
