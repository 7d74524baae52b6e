package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_SECRET": "0123456789abcdef",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("expected port 5000, got %q", cfg.Port)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("expected 24h session ttl, got %v", cfg.Session.TTL)
	}
	if cfg.Mail.Workers != 4 || cfg.Mail.SendTimeout != 15*time.Second {
		t.Errorf("unexpected mail defaults: %+v", cfg.Mail)
	}
	if cfg.HTTP.UploadDir != "uploads" {
		t.Errorf("expected upload dir uploads, got %q", cfg.HTTP.UploadDir)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("unexpected origins: %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.IsProduction() {
		t.Error("expected development environment by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_SECRET":       "0123456789abcdef",
		"ENV":                  "production",
		"SESSION_TTL":          "2h",
		"SMTP_HOST":            "smtp.example.org",
		"SMTP_PORT":            "465",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("expected 2h ttl, got %v", cfg.Session.TTL)
	}
	if cfg.Mail.Host != "smtp.example.org" || cfg.Mail.Port != 465 {
		t.Errorf("unexpected mail config: %+v", cfg.Mail)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.HTTP.AllowedOrigins)
	}
}

func TestLoad_SecretRequired(t *testing.T) {
	tests := map[string]map[string]string{
		"missing":   {},
		"too short": {"SESSION_SECRET": "short"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
