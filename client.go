package sentiment

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Client is the top-level Sentiment Investor REST client. It is safe for
// concurrent use; credentials are fixed at construction.
type Client struct {
	cfg  ClientConfig
	http *http.Client
	log  zerolog.Logger
}

// NewClient creates a fully-wired client. Both token and key are required.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, err
	}
	if cfg.Token == "" || cfg.Key == "" {
		return nil, fmt.Errorf("%w: token and key are required", ErrInvalidArgument)
	}

	return &Client{
		cfg:  cfg,
		http: cfg.HTTPClient,
		log:  *cfg.Logger,
	}, nil
}

// BaseURL returns the REST base URL the client targets.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}
