package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	JWT       JWTConfig       `yaml:"jwt"`
	Payment   PaymentConfig   `yaml:"payment"`
	Booking   BookingConfig   `yaml:"booking"`
	Policy    PolicyConfig    `yaml:"policy"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// EmailConfig contains SendGrid settings
type EmailConfig struct {
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// PaymentConfig contains Midtrans gateway settings
type PaymentConfig struct {
	ServerKey   string `yaml:"server_key"`
	Environment string `yaml:"environment"` // "sandbox" or "production"
}

// BookingConfig contains booking code generation settings
type BookingConfig struct {
	CodeSecret string `yaml:"code_secret"`
}

// PolicyConfig contains rental policy constants. Fee amounts are in paise.
type PolicyConfig struct {
	GSTPercent               int64 `yaml:"gst_percent"`
	LateFeePerHourPaise      int64 `yaml:"late_fee_per_hour_paise"`
	CancellationFlatFeePaise int64 `yaml:"cancellation_flat_fee_paise"`
	CancellationWindowHours  int64 `yaml:"cancellation_window_hours"`
	EditCutoffHours          int64 `yaml:"edit_cutoff_hours"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	OverdueReminders string `yaml:"overdue_reminders"`
	PickupReminders  string `yaml:"pickup_reminders"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.From = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Payment
	if val := os.Getenv("MIDTRANS_SERVER_KEY"); val != "" {
		c.Payment.ServerKey = val
	}
	if val := os.Getenv("MIDTRANS_ENVIRONMENT"); val != "" {
		c.Payment.Environment = val
	}

	// Booking
	if val := os.Getenv("BOOKING_CODE_SECRET"); val != "" {
		c.Booking.CodeSecret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	if c.Booking.CodeSecret == "" {
		return fmt.Errorf("booking code secret is required")
	}

	if c.Payment.Environment == "" {
		c.Payment.Environment = "sandbox"
	}

	// Policy defaults
	if c.Policy.GSTPercent == 0 {
		c.Policy.GSTPercent = 18
	}
	if c.Policy.LateFeePerHourPaise == 0 {
		c.Policy.LateFeePerHourPaise = 5000
	}
	if c.Policy.CancellationFlatFeePaise == 0 {
		c.Policy.CancellationFlatFeePaise = 10000
	}
	if c.Policy.CancellationWindowHours == 0 {
		c.Policy.CancellationWindowHours = 24
	}
	if c.Policy.EditCutoffHours == 0 {
		c.Policy.EditCutoffHours = 2
	}

	// Scheduler defaults
	if c.Scheduler.OverdueReminders == "" {
		c.Scheduler.OverdueReminders = "0 0 8 * * *"
	}
	if c.Scheduler.PickupReminders == "" {
		c.Scheduler.PickupReminders = "0 0 9 * * *"
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
