package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string        `mapstructure:"PORT"`
	DatabaseURL string        `mapstructure:"DATABASE_URL"`
	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	JWTTTL      time.Duration `mapstructure:"JWT_TTL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	SMTPHost  string `mapstructure:"SMTP_HOST"`
	SMTPPort  int    `mapstructure:"SMTP_PORT"`
	EmailUser string `mapstructure:"EMAIL_USER"`
	EmailPass string `mapstructure:"EMAIL_PASS"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogFormat      string `mapstructure:"LOG_FORMAT"`
	ClinicTimezone string `mapstructure:"CLINIC_TIMEZONE"`

	ReconcileSchedule string `mapstructure:"RECONCILE_SCHEDULE"`
	ExpirySchedule    string `mapstructure:"EXPIRY_SCHEDULE"`
	ReminderSchedule  string `mapstructure:"REMINDER_SCHEDULE"`
}

var keys = []string{
	"PORT", "DATABASE_URL", "JWT_SECRET", "JWT_TTL",
	"REDIS_ADDR", "REDIS_PASSWORD",
	"SMTP_HOST", "SMTP_PORT", "EMAIL_USER", "EMAIL_PASS",
	"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET",
	"LOG_LEVEL", "LOG_FORMAT", "CLINIC_TIMEZONE",
	"RECONCILE_SCHEDULE", "EXPIRY_SCHEDULE", "REMINDER_SCHEDULE",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("JWT_SECRET", "solid_secret_key")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CLINIC_TIMEZONE", "Asia/Ho_Chi_Minh")
	v.SetDefault("RECONCILE_SCHEDULE", "*/15 * * * *")
	v.SetDefault("EXPIRY_SCHEDULE", "0 1 * * *")
	v.SetDefault("REMINDER_SCHEDULE", "*/5 * * * *")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive, got %s", cfg.JWTTTL)
	}
	return cfg, nil
}

// RequireDatabase fails when no DATABASE_URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	return nil
}

func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) UploadsEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
