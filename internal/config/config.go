package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddress = ":8080"
	DefaultOrigin        = "web-neolimp-contacto"
	defaultSendTimeout   = 30
)

func checkFilePermissions(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		return fmt.Errorf("config file %s has insecure permissions %04o; should be 0600", path, perm)
	}
	return nil
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Email   EmailConfig   `yaml:"email"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	ListenAddress string `yaml:"listen_address"`
	Origin        string `yaml:"origin"` // default origin tag for submissions
}

type EmailConfig struct {
	Provider       string         `yaml:"provider"` // "smtp", "resend" or "sendgrid"
	From           string         `yaml:"from"`
	To             []string       `yaml:"to"`
	Bcc            []string       `yaml:"bcc,omitempty"`
	SendTimeoutSec int            `yaml:"send_timeout_sec"`
	SMTP           SMTPConfig     `yaml:"smtp,omitempty"`
	Resend         ResendConfig   `yaml:"resend,omitempty"`
	SendGrid       SendGridConfig `yaml:"sendgrid,omitempty"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	UseTLS   bool   `yaml:"use_tls"`
}

type ResendConfig struct {
	APIKey string `yaml:"api_key"`
}

type SendGridConfig struct {
	APIKey string `yaml:"api_key"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".leadfilter", "config.yaml")
}

func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "leadfilter.db"
	}
	return filepath.Join(home, ".leadfilter", "leadfilter.db")
}

func Load(path string) (*Config, error) {
	if err := checkFilePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: %v\n", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.Origin == "" {
		cfg.Server.Origin = DefaultOrigin
	}
	if cfg.Email.SendTimeoutSec == 0 {
		cfg.Email.SendTimeoutSec = defaultSendTimeout
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) Validate() error {
	if c.Email.Provider == "" {
		return fmt.Errorf("email: provider is required")
	}
	if c.Email.From == "" {
		return fmt.Errorf("email: from address is required")
	}
	if len(c.Email.To) == 0 {
		return fmt.Errorf("email: at least one recipient is required")
	}

	switch c.Email.Provider {
	case "smtp":
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("email.smtp: host is required")
		}
		if c.Email.SMTP.Port == 0 {
			return fmt.Errorf("email.smtp: port is required")
		}
	case "resend":
		if c.Email.Resend.APIKey == "" {
			return fmt.Errorf("email.resend: api_key is required")
		}
	case "sendgrid":
		if c.Email.SendGrid.APIKey == "" {
			return fmt.Errorf("email.sendgrid: api_key is required")
		}
	default:
		return fmt.Errorf("email: unknown provider %q (smtp, resend or sendgrid)", c.Email.Provider)
	}

	return nil
}
