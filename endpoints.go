package sentiment

import (
	"fmt"
	"strings"
)

const (
	// DefaultBaseURL is the base URL of the Sentiment Investor v4 REST API.
	DefaultBaseURL = "https://api.sentimentinvestor.com/v4"

	// DefaultStreamURL is the base URL of the Sentiment Investor push feed.
	DefaultStreamURL = "ws://socket.sentimentinvestor.com"
)

// Endpoint describes one REST operation on the v4 API.
type Endpoint struct {
	// Path is the final URL fragment for the operation.
	Path string

	// PerSymbol indicates the operation addresses a single stock.
	PerSymbol bool
}

// Endpoints maps operation names to their REST endpoints.
var Endpoints = map[string]Endpoint{
	"parsed":     {Path: "parsed", PerSymbol: true},
	"raw":        {Path: "raw", PerSymbol: true},
	"quote":      {Path: "quote", PerSymbol: true},
	"sort":       {Path: "sort"},
	"historical": {Path: "historical", PerSymbol: true},
	"bulk":       {Path: "bulk"},
	"all":        {Path: "all"},
	"supported":  {Path: "supported", PerSymbol: true},
	"all-stocks": {Path: "all-stocks"},
}

// EndpointURL returns the full URL for a named operation, or an error if unknown.
func EndpointURL(base, operation string) (string, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return "", fmt.Errorf("unknown operation: %s", operation)
	}
	return joinURL(base, ep.Path), nil
}

// joinURL joins a base URL and an endpoint fragment with exactly one slash.
func joinURL(base, fragment string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(fragment, "/")
}
