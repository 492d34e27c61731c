package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "negative start sku",
			mutate: func(cfg *Config) {
				cfg.StartSKU = -5
			},
			wantErr: "start SKU",
		},
		{
			name: "max below start",
			mutate: func(cfg *Config) {
				cfg.StartSKU = 100
				cfg.MaxSKU = 50
			},
			wantErr: "max SKU",
		},
		{
			name: "zero failure threshold",
			mutate: func(cfg *Config) {
				cfg.MaxConsecutiveFailures = 0
			},
			wantErr: "consecutive failures",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative request delay",
			mutate: func(cfg *Config) {
				cfg.RequestDelay = -time.Millisecond
			},
			wantErr: "request delay",
		},
		{
			name: "zero batch size",
			mutate: func(cfg *Config) {
				cfg.BatchSize = 0
			},
			wantErr: "batch size",
		},
		{
			name: "unsupported output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
		{
			name: "empty file prefix",
			mutate: func(cfg *Config) {
				cfg.FilePrefix = ""
			},
			wantErr: "file prefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SCRAPER_TEST_INT", "4200")
	value, ok, err := EnvInt("SCRAPER_TEST_INT")
	if err != nil {
		t.Fatalf("env int: %v", err)
	}
	if !ok || value != 4200 {
		t.Fatalf("value=%d ok=%v, want 4200 true", value, ok)
	}

	t.Setenv("SCRAPER_TEST_INT", "not-a-number")
	if _, _, err := EnvInt("SCRAPER_TEST_INT"); err == nil {
		t.Fatalf("expected parse error for non-numeric value")
	}

	if _, ok, err := EnvInt("SCRAPER_TEST_INT_UNSET"); ok || err != nil {
		t.Fatalf("unset variable should report ok=false, got ok=%v err=%v", ok, err)
	}
}

func TestEnvString(t *testing.T) {
	t.Setenv("SCRAPER_TEST_STR", "output/custom")
	value, ok := EnvString("SCRAPER_TEST_STR")
	if !ok || value != "output/custom" {
		t.Fatalf("value=%q ok=%v, want output/custom true", value, ok)
	}

	if _, ok := EnvString("SCRAPER_TEST_STR_UNSET"); ok {
		t.Fatalf("unset variable should report ok=false")
	}
}
