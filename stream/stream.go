package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/creasty/defaults"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	sentiment "github.com/sentimentinvestor/go-sentiment"
)

// ErrUnsubscribed is returned by Reconnect once the caller has unsubscribed.
var ErrUnsubscribed = errors.New("stream: subscription unsubscribed")

// Handler receives each inbound stock update, synchronously and in arrival
// order. It must not call Unsubscribe on its own subscription.
type Handler func(*StockUpdate)

// Config holds all configuration for a stream subscription.
type Config struct {
	// Token is the API token from the developer dashboard.
	Token string

	// Key is the API key paired with the token.
	Key string

	// BaseURL overrides the feed base URL.
	BaseURL string

	// PingInterval is how often a keepalive ping is sent.
	PingInterval time.Duration `default:"30s"`

	// PongTimeout bounds the wait for the server's pong.
	PongTimeout time.Duration `default:"10s"`

	// HandshakeTimeout bounds the dial-plus-auth exchange.
	HandshakeTimeout time.Duration `default:"15s"`

	// Strict makes an undecodable inbound frame fatal to the subscription.
	// Otherwise invalid frames are logged and skipped.
	Strict bool

	// Logger receives stream diagnostics. Defaults to a no-op logger.
	Logger *zerolog.Logger

	// Dialer overrides the WebSocket dialer.
	Dialer *websocket.Dialer
}

func (cfg *Config) defaults() error {
	if err := defaults.Set(cfg); err != nil {
		return fmt.Errorf("stream config defaults: %w", err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = sentiment.DefaultStreamURL
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	return nil
}

// Subscription is one live connection to the push feed. It owns its socket
// exclusively; lifecycle is open, then live, then closed. There is no
// automatic reconnect: connection loss moves the subscription to a terminal
// closed state, inspectable via Err.
type Subscription struct {
	cfg      Config
	fragment string
	symbols  []string
	handler  Handler
	log      zerolog.Logger

	mu         sync.Mutex
	conn       *websocket.Conn
	closed     bool
	userClosed bool
	redialing  bool
	err        error
	done       chan struct{}
}

// Subscribe opens a subscription for specific stocks. The handler is invoked
// for every update until Unsubscribe is called or the connection is lost.
func Subscribe(ctx context.Context, cfg Config, symbols []string, handler Handler) (*Subscription, error) {
	return open(ctx, cfg, "stocks", symbols, handler)
}

// SubscribeAll opens a subscription for every covered stock.
func SubscribeAll(ctx context.Context, cfg Config, handler Handler) (*Subscription, error) {
	return open(ctx, cfg, "all", nil, handler)
}

func open(ctx context.Context, cfg Config, fragment string, symbols []string, handler Handler) (*Subscription, error) {
	if err := cfg.defaults(); err != nil {
		return nil, err
	}
	if cfg.Token == "" || cfg.Key == "" {
		return nil, fmt.Errorf("%w: token and key are required", sentiment.ErrInvalidArgument)
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: handler is required", sentiment.ErrInvalidArgument)
	}
	for _, symbol := range symbols {
		if symbol == "" {
			return nil, fmt.Errorf("%w: empty symbol", sentiment.ErrInvalidArgument)
		}
	}

	s := &Subscription{
		cfg:      cfg,
		fragment: fragment,
		symbols:  symbols,
		handler:  handler,
		log:      *cfg.Logger,
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}

	s.conn = conn
	s.done = make(chan struct{})
	go s.readLoop(conn, s.done)
	go s.pingLoop(conn, s.done)
	return s, nil
}

// dial connects, sends the auth frame, and verifies the handshake response.
// The socket is closed on every error path.
func (s *Subscription) dial(ctx context.Context) (*websocket.Conn, error) {
	u := strings.TrimSuffix(s.cfg.BaseURL, "/") + "/" + s.fragment
	conn, _, err := s.cfg.Dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", sentiment.ErrTransport, u, err)
	}
	s.log.Info().Str("url", u).Msg("stream connected")

	auth := authRequest{Token: s.cfg.Token, Key: s.cfg.Key, Symbols: s.symbols}
	if err := conn.WriteJSON(auth); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: send auth frame: %v", sentiment.ErrTransport, err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.HandshakeTimeout))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: handshake read: %v", sentiment.ErrTransport, err)
	}

	var resp authResponse
	if err := json.Unmarshal(frame, &resp); err != nil || resp.AuthState == nil {
		conn.Close()
		return nil, fmt.Errorf("%w: unexpected handshake frame", sentiment.ErrResponseFormat)
	}
	if !*resp.AuthState {
		conn.Close()
		return nil, fmt.Errorf("%w: stream rejected credentials", sentiment.ErrAuthentication)
	}
	s.log.Info().Strs("subscribed_to", resp.SubscribedTo).Int64("ts", resp.Timestamp).
		Msg("stream authenticated")

	_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout()))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.readTimeout()))
	})
	return conn, nil
}

func (s *Subscription) readTimeout() time.Duration {
	return s.cfg.PingInterval + s.cfg.PongTimeout
}

// readLoop delivers frames to the handler until the socket fails or the
// subscription is closed. Dispatch happens under the subscription lock, so
// once Unsubscribe returns no further handler invocation can start.
func (s *Subscription) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			s.finish(fmt.Errorf("%w: stream read: %v", sentiment.ErrTransport, err))
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout()))

		update, err := decodeFrame(frame)
		if err != nil {
			if s.cfg.Strict {
				s.finish(err)
				return
			}
			s.log.Warn().Err(err).Str("frame", truncate(frame, 200)).Msg("skipping invalid frame")
			continue
		}
		if update == nil {
			// mid-stream control frame
			continue
		}
		if !s.dispatch(update) {
			return
		}
	}
}

// decodeFrame sorts inbound frames into updates, control frames (nil, nil),
// and errors.
func decodeFrame(frame []byte) (*StockUpdate, error) {
	var ctrl authResponse
	if err := json.Unmarshal(frame, &ctrl); err == nil && ctrl.AuthState != nil {
		if !*ctrl.AuthState {
			return nil, fmt.Errorf("%w: stream revoked credentials", sentiment.ErrAuthentication)
		}
		return nil, nil
	}

	var update StockUpdate
	if err := json.Unmarshal(frame, &update); err != nil {
		return nil, fmt.Errorf("%w: unmarshal update: %v", sentiment.ErrResponseFormat, err)
	}
	if update.Symbol == "" {
		return nil, fmt.Errorf("%w: update without symbol", sentiment.ErrResponseFormat)
	}
	update.Raw = append(json.RawMessage(nil), frame...)
	return &update, nil
}

func (s *Subscription) dispatch(update *StockUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.handler(update)
	return true
}

// pingLoop keeps the connection alive until the subscription ends.
func (s *Subscription) pingLoop(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.PongTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				return
			}
		}
	}
}

// finish moves the subscription to the closed state with the given cause.
// The first cause wins; a caller-initiated close records no error.
func (s *Subscription) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	s.conn.Close()
	s.log.Warn().Err(err).Msg("stream closed")
}

// Unsubscribe releases the underlying connection and waits for delivery to
// stop. It is idempotent. After it returns, the handler is never invoked
// again. It must not be called from within the handler.
func (s *Subscription) Unsubscribe() error {
	s.mu.Lock()
	s.userClosed = true
	if s.closed {
		done := s.done
		s.mu.Unlock()
		<-done
		return nil
	}
	s.closed = true
	conn := s.conn
	done := s.done
	s.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := conn.Close()
	<-done
	s.log.Info().Msg("stream unsubscribed")
	return err
}

// Close is an alias for Unsubscribe.
func (s *Subscription) Close() error {
	return s.Unsubscribe()
}

// Closed reports whether the subscription has reached its terminal state.
func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Err returns the cause of an abnormal close, nil while live or after a
// caller-initiated unsubscribe.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Symbols returns the symbol filter the subscription was opened with.
func (s *Subscription) Symbols() []string {
	return append([]string(nil), s.symbols...)
}

// Reconnect manually dials a fresh socket for a subscription that was closed
// by connection loss, with the same symbols and handler. It is a no-op on a
// live subscription and returns ErrUnsubscribed once the caller has
// unsubscribed: an unsubscribed subscription stays closed for good.
func (s *Subscription) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	if s.userClosed {
		s.mu.Unlock()
		return ErrUnsubscribed
	}
	if !s.closed || s.redialing {
		s.mu.Unlock()
		return nil
	}
	s.redialing = true
	done := s.done
	s.mu.Unlock()
	<-done

	conn, err := s.dial(ctx)

	s.mu.Lock()
	s.redialing = false
	// Unsubscribe may have raced the dial; never revive past it.
	if s.userClosed {
		s.mu.Unlock()
		if err == nil {
			conn.Close()
		}
		return ErrUnsubscribed
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.conn = conn
	s.closed = false
	s.err = nil
	s.done = make(chan struct{})
	fresh := s.done
	s.mu.Unlock()

	go s.readLoop(conn, fresh)
	go s.pingLoop(conn, fresh)
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
