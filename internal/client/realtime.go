package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const heartbeatInterval = 30 * time.Second

var ErrRealtimeClosed = errors.New("realtime connection closed")

// PostgresChanges selects the row changes a subscription receives.
type PostgresChanges struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

// Change is one row change pushed by the backend.
type Change struct {
	Type   string          `json:"type"`
	Schema string          `json:"schema"`
	Table  string          `json:"table"`
	Record json.RawMessage `json:"record"`
}

type ChangeHandler func(Change)

type realtimeMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
	JoinRef string          `json:"join_ref,omitempty"`
}

// RealtimeClient subscribes to backend row changes over a websocket.
type RealtimeClient struct {
	url    string
	logger *zap.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	ref      int
	handlers map[string]ChangeHandler
	done     chan struct{}
}

// NewRealtimeClient derives the websocket endpoint from the project URL.
func NewRealtimeClient(supabaseURL, apiKey string, logger *zap.Logger) *RealtimeClient {
	wsURL := strings.TrimSuffix(supabaseURL, "/")
	switch {
	case strings.HasPrefix(wsURL, "https"):
		wsURL = "wss" + wsURL[len("https"):]
	case strings.HasPrefix(wsURL, "http"):
		wsURL = "ws" + wsURL[len("http"):]
	}
	wsURL += "/realtime/v1/websocket?apikey=" + url.QueryEscape(apiKey) + "&vsn=1.0.0"

	return &RealtimeClient{
		url:      wsURL,
		logger:   logger.Named("realtime"),
		handlers: make(map[string]ChangeHandler),
	}
}

// Subscribe joins a channel for cfg and calls handler for each change until
// ctx ends or the connection drops.
func (r *RealtimeClient) Subscribe(ctx context.Context, cfg PostgresChanges, handler ChangeHandler) error {
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	if cfg.Event == "" {
		cfg.Event = "*"
	}
	topic := fmt.Sprintf("realtime:%s:%s", cfg.Schema, cfg.Table)

	if err := r.connect(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return ErrRealtimeClosed
	}
	r.handlers[topic] = handler

	ref := r.nextRef()
	join := realtimeMessage{
		Topic:   topic,
		Event:   "phx_join",
		Ref:     ref,
		JoinRef: ref,
	}
	join.Payload, _ = json.Marshal(map[string]any{
		"config": map[string]any{
			"postgres_changes": []PostgresChanges{cfg},
		},
	})
	if err := r.conn.WriteJSON(join); err != nil {
		return fmt.Errorf("send join: %w", err)
	}
	r.logger.Info("subscribed", zap.String("topic", topic), zap.String("event", cfg.Event))
	return nil
}

// Done is closed when the connection ends.
func (r *RealtimeClient) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return r.done
}

// Close ends the connection.
func (r *RealtimeClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	err := r.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	r.conn.Close()
	r.conn = nil
	if err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return nil
}

func (r *RealtimeClient) connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	r.conn = conn
	r.done = make(chan struct{})
	go r.readLoop(conn, r.done)
	go r.heartbeat(ctx, conn, r.done)
	go func(done chan struct{}) {
		select {
		case <-ctx.Done():
			_ = r.Close()
		case <-done:
		}
	}(r.done)
	return nil
}

func (r *RealtimeClient) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			r.logger.Debug("read loop stopped", zap.Error(err))
			r.mu.Lock()
			if r.conn == conn {
				r.conn = nil
			}
			r.mu.Unlock()
			return
		}

		var msg realtimeMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		r.dispatch(msg)
	}
}

func (r *RealtimeClient) dispatch(msg realtimeMessage) {
	var change Change
	switch msg.Event {
	case "postgres_changes":
		var payload struct {
			Data Change `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
		change = payload.Data
	case "INSERT", "UPDATE", "DELETE":
		if err := json.Unmarshal(msg.Payload, &change); err != nil {
			return
		}
		if change.Type == "" {
			change.Type = msg.Event
		}
	default:
		// phx_reply, presence and system messages
		return
	}

	r.mu.Lock()
	handler := r.handlers[msg.Topic]
	r.mu.Unlock()
	if handler != nil {
		handler(change)
	}
}

func (r *RealtimeClient) heartbeat(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.conn == conn {
				msg := realtimeMessage{Topic: "phoenix", Event: "heartbeat", Payload: json.RawMessage(`{}`), Ref: r.nextRef()}
				if err := conn.WriteJSON(msg); err != nil {
					r.logger.Warn("heartbeat failed", zap.Error(err))
				}
			}
			r.mu.Unlock()
		}
	}
}

func (r *RealtimeClient) nextRef() string {
	r.ref++
	return strconv.Itoa(r.ref)
}
