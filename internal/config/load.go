package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. RECITE_SERVER_PORT.
const EnvPrefix = "RECITE"

// keys without a default still need binding so environment variables are
// seen by Unmarshal.
var boundKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"schedule.intervals_days",
	"schedule.first_review_days",
	"notifier.aws_region",
	"notifier.from_email",
	"notifier.from_name",
	"notifier.app_base_url",
	"events.redis_addr",
	"events.redis_password",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("sweep.reminder_interval_minutes", 60)
	v.SetDefault("sweep.expiry_interval_minutes", 1440)
	v.SetDefault("sweep.reminder_lead_minutes", 60)
	v.SetDefault("sweep.reminder_grace_hours", 24)
	v.SetDefault("sweep.expiry_grace_hours", 48)
	v.SetDefault("sweep.batch_size", 500)
	v.SetDefault("sweep.notify_timeout_seconds", 10)

	v.SetDefault("notifier.kind", "log")

	v.SetDefault("events.worker_count", 2)
	v.SetDefault("events.queue_size", 256)
	v.SetDefault("events.redis_db", 0)
	v.SetDefault("events.redis_channel", "recitation-events")
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the file. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// into the process environment. Missing files are ignored and variables
// already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error loading %s: %w", path, err)
		}
	}
	return nil
}
