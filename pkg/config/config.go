// Package config holds process configuration for the Baitline gateway.
// Everything is environment-driven with sensible development defaults;
// production deployments must set the secrets flagged by Validate.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds global settings for the honeypot gateway.
type Config struct {
	// === Core Settings ===
	Port        string // HTTP listen port (default: 8080)
	MetricsAddr string // Prometheus listener address (default: :9091)
	APIKey      string // Shared secret for the x-api-key header (REQUIRED in production)

	// === Detection Tuning ===
	ActivationThreshold int    // Accumulated scam score that activates probing (default: 40)
	RulesPath           string // Optional YAML detection-rules override
	PhoneCountryCode    string // Country code assumed for bare national numbers (default: 91)

	// === Report Delivery ===
	CallbackURL     string        // Collector endpoint for final dossiers
	CallbackAPIKey  string        // Optional x-api-key for the collector
	CallbackTimeout time.Duration // Per-dispatch timeout (default: 5s)
	ArchiveDSN      string        // Optional Postgres DSN for the dossier archive
	LedgerAddr      string        // Optional Redis address for the cross-replica report ledger
}

// NewDefaultConfig creates a Config from the environment with development
// defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Port:        GetEnv("BAITLINE_PORT", "8080"),
		MetricsAddr: GetEnv("BAITLINE_METRICS_ADDR", ":9091"),
		APIKey:      os.Getenv("BAITLINE_API_KEY"),

		ActivationThreshold: GetEnvInt("BAITLINE_ACTIVATION_THRESHOLD", 40),
		RulesPath:           GetEnv("BAITLINE_RULES_PATH", ""),
		PhoneCountryCode:    GetEnv("BAITLINE_PHONE_CC", "91"),

		CallbackURL:     GetEnv("BAITLINE_CALLBACK_URL", ""),
		CallbackAPIKey:  GetEnv("BAITLINE_CALLBACK_API_KEY", ""),
		CallbackTimeout: time.Duration(GetEnvInt("BAITLINE_CALLBACK_TIMEOUT_MS", 5000)) * time.Millisecond,
		ArchiveDSN:      GetEnv("BAITLINE_ARCHIVE_DSN", ""),
		LedgerAddr:      GetEnv("BAITLINE_LEDGER_ADDR", ""),
	}
}

// IsProduction reports whether the process runs in production mode.
func IsProduction() bool {
	env := strings.ToLower(os.Getenv("BAITLINE_ENV"))
	return env == "production" || env == "prod"
}

// Validate checks that required configuration is present. In production
// the API key and a collector URL are mandatory; in development missing
// values are logged and tolerated so local runs stay frictionless.
func (c *Config) Validate() error {
	var missing []string

	if c.APIKey == "" {
		missing = append(missing, "BAITLINE_API_KEY (shared secret for inbound auth)")
	}
	if c.CallbackURL == "" {
		missing = append(missing, "BAITLINE_CALLBACK_URL (collector endpoint for dossiers)")
	}

	if len(missing) == 0 {
		return nil
	}
	if IsProduction() {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	for _, m := range missing {
		log.Printf("[STARTUP] Warning: missing setting: %s", m)
	}
	return nil
}

// MustValidate calls Validate and fatally exits on failure. Call at
// startup before serving.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] Configuration validated")
}

// Helper functions for environment variable parsing.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a
// default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a
// default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
