package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Database paths
	SettingsDBPath string `mapstructure:"settings-db-path"`
	FSMDBPath      string `mapstructure:"fsm-db-path"`

	// Image source configuration
	S3Bucket string `mapstructure:"s3-bucket"`
	S3Region string `mapstructure:"s3-region"`

	// Download directory for fetched images
	DownloadDir string `mapstructure:"download-dir"`

	// Drive enumeration poll interval
	ScanInterval time.Duration `mapstructure:"scan-interval"`

	// Flash workflow configuration
	FlashMaxRetries int `mapstructure:"flash-max-retries"`
}

// Load reads configuration from environment, config file, and defaults
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("settings-db-path", ".driveburn/settings.db")
	viper.SetDefault("fsm-db-path", ".driveburn/fsm.db")
	viper.SetDefault("s3-bucket", "driveburn-images")
	viper.SetDefault("s3-region", "us-east-1")
	viper.SetDefault("download-dir", "/tmp/driveburn/downloads")
	viper.SetDefault("scan-interval", 2*time.Second)
	viper.SetDefault("flash-max-retries", 3)

	// Environment variables (will be DRIVEBURN_SETTINGS_DB_PATH, etc.)
	viper.SetEnvPrefix("DRIVEBURN")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Config file (optional)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.driveburn")

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()

	// Unmarshal into config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.SettingsDBPath == "" {
		return fmt.Errorf("settings-db-path cannot be empty")
	}
	if c.FSMDBPath == "" {
		return fmt.Errorf("fsm-db-path cannot be empty")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("s3-bucket cannot be empty")
	}
	if c.DownloadDir == "" {
		return fmt.Errorf("download-dir cannot be empty")
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("scan-interval must be positive")
	}
	if c.FlashMaxRetries < 0 {
		return fmt.Errorf("flash-max-retries must be non-negative")
	}
	return nil
}
