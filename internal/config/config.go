package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/graymont/rent-reminder/internal/schedule"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Database   DatabaseConfig    `yaml:"database"`
	Redis      RedisConfig       `yaml:"redis"`
	Twilio     TwilioConfig      `yaml:"twilio"`
	Schedule   schedule.Schedule `yaml:"schedule"`
	Worker     WorkerConfig      `yaml:"worker"`
	Recipients RecipientsConfig  `yaml:"recipients"`
	Message    MessageConfig     `yaml:"message"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GetHost returns the bind host, defaulting to all interfaces.
func (s ServerConfig) GetHost() string {
	if s.Host == "" {
		return "0.0.0.0"
	}
	return s.Host
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	URL                    string `yaml:"url"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ConnMaxLifetime returns the maximum lifetime of a pooled connection.
func (d DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetimeMinutes) * time.Minute
}

// RedisConfig holds Redis settings (run progress counters, scheduler lock).
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TwilioConfig holds SMS provider credentials and the sending number.
type TwilioConfig struct {
	AccountSID     string `yaml:"account_sid"`
	AuthToken      string `yaml:"auth_token"`
	FromNumber     string `yaml:"from_number"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the HTTP client timeout for Twilio API calls.
func (t TwilioConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// WorkerConfig holds send worker pool and scheduler settings.
type WorkerConfig struct {
	NumWorkers          int `yaml:"num_workers"`
	BatchSize           int `yaml:"batch_size"`
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	SendHour            int `yaml:"send_hour"` // hour of day the scheduler evaluates at
}

// PollInterval returns how often idle workers poll the queue.
func (w WorkerConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalSeconds) * time.Second
}

// RecipientsConfig holds recipient-list bootstrap settings.
type RecipientsConfig struct {
	// DefaultCSV is loaded into the store at server startup when the
	// recipients table is empty. Optional.
	DefaultCSV string `yaml:"default_csv"`
}

// MessageConfig holds the reminder message template (Liquid syntax).
type MessageConfig struct {
	Template string `yaml:"template"`
}

// DefaultTemplate is used when no template is configured.
const DefaultTemplate = `Hello {{ name | default: "Tenant" }}, this is your rent reminder. Rent is due on {{ due_date }}.`

// Load reads YAML config from path and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Schedule.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes == 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 5
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Twilio.BaseURL == "" {
		cfg.Twilio.BaseURL = "https://api.twilio.com"
	}
	if cfg.Twilio.TimeoutSeconds == 0 {
		cfg.Twilio.TimeoutSeconds = 30
	}
	if cfg.Schedule.Type == "" {
		cfg.Schedule.Type = schedule.TypeEndOfMonth
		cfg.Schedule.DaysBeforeEnd = 3
	}
	if cfg.Worker.NumWorkers == 0 {
		cfg.Worker.NumWorkers = 4
	}
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 25
	}
	if cfg.Worker.PollIntervalSeconds == 0 {
		cfg.Worker.PollIntervalSeconds = 5
	}
	if cfg.Worker.SendHour == 0 {
		cfg.Worker.SendHour = 9
	}
	if cfg.Message.Template == "" {
		cfg.Message.Template = DefaultTemplate
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on the host.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.Twilio.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.Twilio.AuthToken = v
	}
	if v := os.Getenv("TWILIO_PHONE_NUMBER"); v != "" {
		cfg.Twilio.FromNumber = v
	}
	if v := os.Getenv("TWILIO_BASE_URL"); v != "" {
		cfg.Twilio.BaseURL = v
	}

	return cfg, nil
}
