/**
 * @description
 * This file handles configuration management for both binaries. It uses the
 * 'viper' library to load configuration from environment variables,
 * providing a centralized and consistent way to manage application settings.
 */
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	ServerURL  string `mapstructure:"SERVER_URL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTExpiry     time.Duration `mapstructure:"JWT_EXPIRES_IN"`
	ActivationTTL time.Duration `mapstructure:"ACTIVATION_EXPIRES_IN"`

	NotificationsExchange string `mapstructure:"NOTIFICATIONS_EXCHANGE"`

	// Cron schedules for the scheduler binary.
	WakeupPollSchedule   string `mapstructure:"WAKEUP_POLL_SCHEDULE"`
	RenewalSweepSchedule string `mapstructure:"RENEWAL_SWEEP_SCHEDULE"`
}

// LoadConfig reads configuration from environment variables and validates
// required values.
func LoadConfig() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_URL", "http://localhost:8080")
	viper.SetDefault("JWT_EXPIRES_IN", "24h")
	viper.SetDefault("ACTIVATION_EXPIRES_IN", "24h")
	viper.SetDefault("NOTIFICATIONS_EXCHANGE", "notifications")
	viper.SetDefault("WAKEUP_POLL_SCHEDULE", "* * * * *")
	viper.SetDefault("RENEWAL_SWEEP_SCHEDULE", "30 0 * * *")
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	for _, key := range []string{
		"SERVER_PORT", "SERVER_URL", "DATABASE_URL", "RABBITMQ_URL",
		"JWT_SECRET", "JWT_EXPIRES_IN", "ACTIVATION_EXPIRES_IN",
		"NOTIFICATIONS_EXCHANGE", "WAKEUP_POLL_SCHEDULE", "RENEWAL_SWEEP_SCHEDULE",
	} {
		_ = viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &cfg, nil
}
