// Package stream implements the Sentiment Investor WebSocket push feed: a
// single duplex connection per subscription, delivering live stock updates
// to a caller-registered handler in arrival order.
package stream

import "encoding/json"

// authRequest is the first frame the client sends after dialing. The feed
// expects credentials and the optional symbol filter as one JSON object.
type authRequest struct {
	Token   string   `json:"token"`
	Key     string   `json:"key"`
	Symbols []string `json:"symbols,omitempty"`
}

// authResponse is the server's handshake frame. AuthState is a pointer so a
// regular update frame (no authState field) is distinguishable.
type authResponse struct {
	AuthState    *bool    `json:"authState"`
	Timestamp    int64    `json:"timestamp"`
	SubscribedTo []string `json:"subscribedTo"`
}

// StockUpdate is one live sentiment push for a stock. It is handed to the
// handler synchronously and not retained afterwards.
type StockUpdate struct {
	Symbol    string  `json:"symbol"`
	Sentiment float64 `json:"sentiment"`
	AHI       float64 `json:"AHI"`
	RHI       float64 `json:"RHI"`
	SGP       float64 `json:"SGP"`
	Timestamp int64   `json:"timestamp"`

	// Raw is the frame as received, for fields not mapped above.
	Raw json.RawMessage `json:"-"`
}
