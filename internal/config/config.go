// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when one exists), loads them into structured Go types and validates
// them so the app fails fast on bad config.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Apply defaults for every optional value.
//   - Validate required values.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the PAYHOST_ prefix. The prefix is removed, the
	rest is lowercased and "__" marks a nesting level:

	  PAYHOST_SERVER__PORT          -> server.port
	  PAYHOST_RAZORPAY__KEY_SECRET  -> razorpay.key_secret

	The unprefixed names used by earlier deployments (PORT, RAZORPAY_KEY_ID,
	RAZORPAY_KEY_SECRET, HEROKU_API_KEY) are still recognized. When both
	forms are set the prefixed one wins.
*/

const envPrefix = "PAYHOST_"

// legacyEnv maps unprefixed variable names onto koanf keys.
var legacyEnv = map[string]string{
	"PORT":                "server.port",
	"RAZORPAY_KEY_ID":     "razorpay.key_id",
	"RAZORPAY_KEY_SECRET": "razorpay.key_secret",
	"HEROKU_API_KEY":      "heroku.api_key",
}

// Auth providers understood by AuthConfig.Provider.
const (
	AuthProviderClerk    = "clerk"
	AuthProviderFirebase = "firebase"
)

// Config is the root configuration object for the application.
//
// It is built once at startup and handed to every component; nothing reads
// the environment after LoadConfig returns.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Razorpay      RazorpayConfig       `koanf:"razorpay"`
	Heroku        HerokuConfig         `koanf:"heroku"`
	Outbound      OutboundConfig       `koanf:"outbound"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// AuthConfig selects and configures the identity-token verifier.
type AuthConfig struct {
	Provider string `koanf:"provider" validate:"required,oneof=clerk firebase"`

	// SecretKey is the Clerk secret key.
	SecretKey string `koanf:"secret_key" validate:"required_if=Provider clerk"`

	// ClerkAPIURL overrides the Clerk Backend API base URL.
	ClerkAPIURL string `koanf:"clerk_api_url" validate:"omitempty,url"`

	// FirebaseProjectID is the expected audience of Firebase ID tokens.
	FirebaseProjectID string `koanf:"firebase_project_id" validate:"required_if=Provider firebase"`

	// CertsURL is where Firebase signing certificates are published.
	CertsURL string `koanf:"certs_url" validate:"omitempty,url"`
}

// RazorpayConfig holds payment provider credentials.
//
// Both credentials are optional: when either is missing the payment
// endpoints answer 503 instead of the process refusing to start.
type RazorpayConfig struct {
	KeyID           string `koanf:"key_id"`
	KeySecret       string `koanf:"key_secret"`
	BaseURL         string `koanf:"base_url" validate:"required,url"`
	DefaultCurrency string `koanf:"default_currency" validate:"required,len=3"`
}

// HerokuConfig holds hosting provider credentials.
type HerokuConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url" validate:"required,url"`
}

// OutboundConfig bounds every call to an external provider.
type OutboundConfig struct {
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
}

// PaymentsEnabled reports whether the Razorpay integration is usable.
func (c *Config) PaymentsEnabled() bool {
	return c.Razorpay.KeyID != "" && c.Razorpay.KeySecret != ""
}

// HostingConfigured reports whether a Heroku API key was provided.
func (c *Config) HostingConfigured() bool {
	return c.Heroku.APIKey != ""
}

// Defaults returns a Config populated with every default value.
func Defaults() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "50000",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Auth: AuthConfig{
			Provider: AuthProviderClerk,
			CertsURL: "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com",
		},
		Razorpay: RazorpayConfig{
			BaseURL:         "https://api.razorpay.com",
			DefaultCurrency: "INR",
		},
		Heroku: HerokuConfig{
			BaseURL: "https://api.heroku.com",
		},
		Outbound: OutboundConfig{
			Timeout: 15 * time.Second,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it on
// top of the defaults, validates it and returns the resulting config.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	// Legacy names first so that prefixed variables override them.
	// Empty values are ignored so they never blank out a default.
	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return legacyEnv[key], value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load legacy env variables: %w", err)
	}

	err = k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.ReplaceAll(key, "__", "."), value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := Defaults()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}
	mainConfig.Observability.ServiceName = "payhost"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Validate runs the struct-tag rules and the observability rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Observability != nil {
		if err := c.Observability.Validate(); err != nil {
			return fmt.Errorf("invalid observability config: %w", err)
		}
	}

	return nil
}
