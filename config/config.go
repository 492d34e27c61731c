package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds crawler configuration.
type Config struct {
	BaseURL                string
	StartSKU               int
	MaxSKU                 int
	MaxConsecutiveFailures int
	Timeout                time.Duration
	RequestDelay           time.Duration
	BatchDelay             time.Duration
	BatchSize              int
	ProgressInterval       int
	OutputDir              string
	FilePrefix             string
	OutputFormat           string // csv or dual
	UserAgent              string
	Verbose                bool
	MetricsAddr            string
}

// DefaultConfig returns conservative defaults for the market analysis target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:                "https://store.nerokas.co.ke/SKU-",
		StartSKU:               0,
		MaxSKU:                 50000,
		MaxConsecutiveFailures: 100,
		Timeout:                10 * time.Second,
		RequestDelay:           500 * time.Millisecond,
		BatchDelay:             3 * time.Second,
		BatchSize:              100,
		ProgressInterval:       50,
		OutputDir:              "output",
		FilePrefix:             "ecommerce",
		OutputFormat:           "csv",
		UserAgent:              "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		Verbose:                false,
		MetricsAddr:            "",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.StartSKU < 0 {
		return fmt.Errorf("start SKU cannot be negative")
	}
	if c.MaxSKU < c.StartSKU {
		return fmt.Errorf("max SKU (%d) cannot be below start SKU (%d)", c.MaxSKU, c.StartSKU)
	}
	if c.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("max consecutive failures must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request delay cannot be negative")
	}
	if c.BatchDelay < 0 {
		return fmt.Errorf("batch delay cannot be negative")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.ProgressInterval <= 0 {
		return fmt.Errorf("progress interval must be positive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.FilePrefix == "" {
		return fmt.Errorf("file prefix cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv or dual")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}

// EnvInt reads an integer override from the environment. The second return
// reports whether the variable was set to a non-empty value.
func EnvInt(name string) (int, bool, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, true, nil
}

// EnvString reads a string override from the environment.
func EnvString(name string) (string, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}
