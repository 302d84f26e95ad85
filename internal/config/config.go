package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	AccessTTLMinutes int    `yaml:"access_ttl_minutes"`
	RefreshTTLDays   int    `yaml:"refresh_ttl_days"`

	// one-time login codes
	CodeLength          int `yaml:"code_length"`
	CodeTTLMinutes      int `yaml:"code_ttl_minutes"`
	CodeMaxAttempts     int `yaml:"code_max_attempts"`
	CodeLockMinutes     int `yaml:"code_lock_minutes"`
	CodeResendLimit     int `yaml:"code_resend_limit"`
	CodeResendWindowMin int `yaml:"code_resend_window_minutes"`
	CodeCleanupDays     int `yaml:"code_cleanup_days"`

	DefaultRole    string `yaml:"default_role"`
	GoogleClientID string `yaml:"google_client_id"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	AdminEmail   string `yaml:"admin_email"`
}

type OllamaConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
	Enabled  bool   `yaml:"enabled"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Shop struct {
		Name string `yaml:"name"`
	} `yaml:"shop"`
	Email    EmailConfig    `yaml:"email"`
	Auth     AuthConfig     `yaml:"auth"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	Telegram TelegramConfig `yaml:"telegram"`
}

func LoadConfig() *Config {
	path := os.Getenv("STOCKROOM_CONFIG")
	if path == "" {
		path = "config/config.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open " + path + ": " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse " + path + ": " + err.Error())
	}
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Shop.Name == "" {
		c.Shop.Name = "Stockroom"
	}
	if c.Auth.AccessTTLMinutes <= 0 {
		c.Auth.AccessTTLMinutes = 15
	}
	if c.Auth.RefreshTTLDays <= 0 {
		c.Auth.RefreshTTLDays = 30
	}
	if c.Auth.CodeLength <= 0 {
		c.Auth.CodeLength = 6
	}
	if c.Auth.CodeTTLMinutes <= 0 {
		c.Auth.CodeTTLMinutes = 15
	}
	if c.Auth.CodeMaxAttempts <= 0 {
		c.Auth.CodeMaxAttempts = 5
	}
	if c.Auth.CodeLockMinutes <= 0 {
		c.Auth.CodeLockMinutes = 15
	}
	if c.Auth.CodeResendLimit <= 0 {
		c.Auth.CodeResendLimit = 3
	}
	if c.Auth.CodeResendWindowMin <= 0 {
		c.Auth.CodeResendWindowMin = 10
	}
	if c.Auth.CodeCleanupDays <= 0 {
		c.Auth.CodeCleanupDays = 30
	}
	if c.Auth.DefaultRole == "" {
		c.Auth.DefaultRole = "staff"
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = "http://127.0.0.1:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "llama3"
	}
	if c.Ollama.TimeoutSeconds <= 0 {
		c.Ollama.TimeoutSeconds = 120
	}
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.Auth.AccessTTLMinutes) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTTLDays) * 24 * time.Hour
}

func (c *Config) CodeTTL() time.Duration {
	return time.Duration(c.Auth.CodeTTLMinutes) * time.Minute
}

func (c *Config) CodeLockDuration() time.Duration {
	return time.Duration(c.Auth.CodeLockMinutes) * time.Minute
}

func (c *Config) CodeResendWindow() time.Duration {
	return time.Duration(c.Auth.CodeResendWindowMin) * time.Minute
}
