package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Sweep    SweepConfig    `mapstructure:"sweep" validate:"required"`
	Notifier NotifierConfig `mapstructure:"notifier" validate:"required"`
	Events   EventsConfig   `mapstructure:"events" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// ShutdownTimeout is the grace period for in-flight requests on shutdown.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// ScheduleConfig overrides the review scheduling parameters. Empty values
// keep the built-in interval table and multipliers.
type ScheduleConfig struct {
	IntervalsDays      []int           `mapstructure:"intervals_days" validate:"omitempty,dive,gt=0"`
	QualityMultipliers map[int]float64 `mapstructure:"quality_multipliers" validate:"omitempty,dive,keys,min=1,max=5,endkeys,gt=0"`
	FirstReviewDays    int             `mapstructure:"first_review_days" validate:"gte=0"`
}

// SweepConfig controls the reminder and expiry sweeps.
type SweepConfig struct {
	ReminderIntervalMinutes int `mapstructure:"reminder_interval_minutes" validate:"gt=0"`
	ExpiryIntervalMinutes   int `mapstructure:"expiry_interval_minutes" validate:"gt=0"`
	ReminderLeadMinutes     int `mapstructure:"reminder_lead_minutes" validate:"gte=0"`
	ReminderGraceHours      int `mapstructure:"reminder_grace_hours" validate:"gte=0"`
	ExpiryGraceHours        int `mapstructure:"expiry_grace_hours" validate:"gt=0"`
	BatchSize               int `mapstructure:"batch_size" validate:"gt=0"`
	NotifyTimeoutSeconds    int `mapstructure:"notify_timeout_seconds" validate:"gt=0"`
}

// ReminderInterval is how often the reminder sweep runs.
func (c SweepConfig) ReminderInterval() time.Duration {
	return time.Duration(c.ReminderIntervalMinutes) * time.Minute
}

// ExpiryInterval is how often the expiry sweep runs.
func (c SweepConfig) ExpiryInterval() time.Duration {
	return time.Duration(c.ExpiryIntervalMinutes) * time.Minute
}

// ReminderLead is how long before the scheduled time a reminder may go out.
func (c SweepConfig) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadMinutes) * time.Minute
}

// ReminderGrace is how long after the scheduled time a reminder may go out.
func (c SweepConfig) ReminderGrace() time.Duration {
	return time.Duration(c.ReminderGraceHours) * time.Hour
}

// ExpiryGrace is how long after the scheduled time a pending review expires.
func (c SweepConfig) ExpiryGrace() time.Duration {
	return time.Duration(c.ExpiryGraceHours) * time.Hour
}

// NotifyTimeout bounds a single notifier call.
func (c SweepConfig) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutSeconds) * time.Second
}

// NotifierConfig selects the reminder delivery channel.
type NotifierConfig struct {
	Kind       string `mapstructure:"kind" validate:"required,oneof=log ses"`
	AWSRegion  string `mapstructure:"aws_region" validate:"required_if=Kind ses"`
	FromEmail  string `mapstructure:"from_email" validate:"required_if=Kind ses,omitempty,email"`
	FromName   string `mapstructure:"from_name"`
	AppBaseURL string `mapstructure:"app_base_url" validate:"omitempty,url"`
}

// EventsConfig controls asynchronous event dispatch.
type EventsConfig struct {
	WorkerCount   int    `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize     int    `mapstructure:"queue_size" validate:"gt=0"`
	RedisAddr     string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`
	RedisChannel  string `mapstructure:"redis_channel" validate:"required"`
}
