package sentiment

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvToken = "SENTIMENTINVESTOR_TOKEN"
	EnvKey   = "SENTIMENTINVESTOR_KEY"
)

// ClientConfig holds all configuration for the Sentiment Investor client.
// Token and Key are obtained from the developer dashboard at
// https://sentimentinvestor.com/developer/dashboard and are required.
type ClientConfig struct {
	// Token is the API token, sent as a query parameter on every request.
	Token string `yaml:"token"`

	// Key is the API key, sent alongside the token.
	Key string `yaml:"key"`

	// BaseURL overrides the REST API base URL.
	BaseURL string `yaml:"base_url" default:"https://api.sentimentinvestor.com/v4"`

	// Timeout bounds each HTTP request when no HTTPClient is supplied.
	Timeout time.Duration `yaml:"timeout" default:"15s"`

	// HTTPClient overrides the underlying HTTP client.
	HTTPClient *http.Client `yaml:"-"`

	// Logger receives client diagnostics. Defaults to a no-op logger.
	Logger *zerolog.Logger `yaml:"-"`
}

// defaults fills in zero-value config fields.
func (cfg *ClientConfig) defaults() error {
	if err := defaults.Set(cfg); err != nil {
		return fmt.Errorf("config defaults: %w", err)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	return nil
}

// ConfigFromEnv builds a ClientConfig from the SENTIMENTINVESTOR_TOKEN and
// SENTIMENTINVESTOR_KEY environment variables.
func ConfigFromEnv() ClientConfig {
	return ClientConfig{
		Token: os.Getenv(EnvToken),
		Key:   os.Getenv(EnvKey),
	}
}

// ConfigFromFile reads and parses a YAML configuration file.
func ConfigFromFile(path string) (ClientConfig, error) {
	var cfg ClientConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
