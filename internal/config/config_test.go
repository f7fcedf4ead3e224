package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `email:
  provider: resend
  from: no-reply@neolimp.com.ar
  to:
    - ventas@neolimp.com.ar
  resend:
    api_key: re_test
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want default %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if cfg.Server.Origin != DefaultOrigin {
		t.Errorf("Origin = %q, want default %q", cfg.Server.Origin, DefaultOrigin)
	}
	if cfg.Email.SendTimeoutSec != 30 {
		t.Errorf("SendTimeoutSec = %d, want 30", cfg.Email.SendTimeoutSec)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json defaults", cfg.Logging)
	}
	if cfg.Store.Path == "" {
		t.Error("Store.Path default not applied")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed on complete config: %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := &Config{
		Server: ServerConfig{ListenAddress: ":9090", Origin: "landing"},
		Email: EmailConfig{
			Provider: "smtp",
			From:     "no-reply@neolimp.com.ar",
			To:       []string{"ventas@neolimp.com.ar"},
			SMTP:     SMTPConfig{Host: "smtp.example.com", Port: 587, UseTLS: true},
		},
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %04o, want 0600", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.ListenAddress != ":9090" || loaded.Server.Origin != "landing" {
		t.Errorf("Server = %+v, want saved values", loaded.Server)
	}
	if loaded.Email.SMTP.Host != "smtp.example.com" {
		t.Errorf("SMTP.Host = %q, want smtp.example.com", loaded.Email.SMTP.Host)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Email: EmailConfig{
				Provider: "smtp",
				From:     "no-reply@neolimp.com.ar",
				To:       []string{"ventas@neolimp.com.ar"},
				SMTP:     SMTPConfig{Host: "smtp.example.com", Port: 587},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"complete smtp", func(c *Config) {}, false},
		{"missing provider", func(c *Config) { c.Email.Provider = "" }, true},
		{"missing from", func(c *Config) { c.Email.From = "" }, true},
		{"missing recipients", func(c *Config) { c.Email.To = nil }, true},
		{"smtp without host", func(c *Config) { c.Email.SMTP.Host = "" }, true},
		{"smtp without port", func(c *Config) { c.Email.SMTP.Port = 0 }, true},
		{"resend without key", func(c *Config) { c.Email.Provider = "resend" }, true},
		{"resend with key", func(c *Config) {
			c.Email.Provider = "resend"
			c.Email.Resend.APIKey = "re_test"
		}, false},
		{"sendgrid without key", func(c *Config) { c.Email.Provider = "sendgrid" }, true},
		{"unknown provider", func(c *Config) { c.Email.Provider = "pigeon" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
