// Package stream broadcasts monitor events to WebSocket clients as JSON.
//
// A Hub is an http.Handler. Every connection that upgrades successfully
// receives the buffered history followed by each message published after
// it joined. Clients only need to read; anything they send is discarded.
package stream

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/gorilla/websocket"

	"github.com/vissense/vissense-go/pkg/monitor"
	"github.com/vissense/vissense-go/pkg/pubsub"
)

// ErrHubClosed is returned by Publish after Close.
var ErrHubClosed = errors.New("stream: hub closed")

// Message is the JSON document sent for every monitor event.
type Message struct {
	Timestamp     time.Time `json:"timestamp"`
	MonitorID     string    `json:"monitor"`
	ElementID     string    `json:"element,omitempty"`
	Topic         string    `json:"topic"`
	State         string    `json:"state,omitempty"`
	Percentage    float64   `json:"percentage"`
	Previous      string    `json:"previous,omitempty"`
	OldPercentage float64   `json:"old_percentage"`
}

// NewMessage converts a monitor event.
func NewMessage(ev monitor.Event, now time.Time) Message {
	msg := Message{
		Timestamp:     now,
		Topic:         ev.Topic.String(),
		Percentage:    ev.Percentage,
		OldPercentage: ev.OldPercentage,
	}
	if ev.Monitor != nil {
		msg.MonitorID = ev.Monitor.ID()
		if el, ok := ev.Monitor.VisObj().Element().(interface{ ID() string }); ok {
			msg.ElementID = el.ID()
		}
	}
	if ev.State != nil {
		msg.State = ev.State.Code.String()
	}
	if ev.Previous != nil {
		msg.Previous = ev.Previous.Code.String()
	}
	return msg
}

// Config configures a Hub.
type Config struct {
	// MaxClients limits concurrent connections. Further upgrades are
	// rejected with 503.
	MaxClients int

	// Buffer is the capacity of the publish channel. Messages published
	// while it is full are dropped.
	Buffer int

	// History is the number of recent messages replayed to new clients.
	// A negative value disables replay.
	History int

	// PingInterval is the keepalive period.
	PingInterval time.Duration

	// ReadTimeout closes connections that stop answering pings.
	ReadTimeout time.Duration

	// WriteTimeout bounds every write.
	WriteTimeout time.Duration

	// AllowedOrigins lists accepted Origin headers. Requests without an
	// Origin are always accepted. Empty allows any origin.
	AllowedOrigins []string

	// Logger for connection diagnostics. Nil disables it.
	Logger *slog.Logger

	// Clock stamps messages and drives keepalive. Nil selects the real clock.
	Clock clock.Clock
}

// DefaultConfig returns the default hub configuration.
func DefaultConfig() Config {
	return Config{
		MaxClients:   100,
		Buffer:       100,
		History:      50,
		PingInterval: 30 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// client serializes writes to one connection.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(messageType int, data []byte, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	return c.conn.WriteMessage(messageType, data)
}

// Hub fans out messages to connected WebSocket clients.
type Hub struct {
	config   Config
	clock    clock.Clock
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*client]struct{}

	historyMu sync.RWMutex
	history   []Message
	next      int
	count     int

	messages  chan Message
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a hub with the default configuration.
func NewHub() *Hub {
	return NewHubWithConfig(DefaultConfig())
}

// NewHubWithConfig creates a hub and starts its broadcast loop.
// Zero fields take their default values.
func NewHubWithConfig(config Config) *Hub {
	defaults := DefaultConfig()
	if config.MaxClients <= 0 {
		config.MaxClients = defaults.MaxClients
	}
	if config.Buffer <= 0 {
		config.Buffer = defaults.Buffer
	}
	switch {
	case config.History == 0:
		config.History = defaults.History
	case config.History < 0:
		config.History = 0
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.New()
	}

	h := &Hub{
		config:   config,
		clock:    clk,
		logger:   config.Logger,
		clients:  make(map[*client]struct{}),
		history:  make([]Message, config.History),
		messages: make(chan Message, config.Buffer),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin:     h.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	go h.broadcast()
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.config.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.config.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Publish queues msg for broadcast. It never blocks; it reports false when
// the message was dropped because the buffer is full.
func (h *Hub) Publish(msg Message) (bool, error) {
	select {
	case <-h.stop:
		return false, ErrHubClosed
	default:
	}

	select {
	case h.messages <- msg:
		return true, nil
	default:
		h.debugLog("stream buffer full, dropping message", "topic", msg.Topic)
		return false, nil
	}
}

// Attach forwards every event of mon to the hub.
func (h *Hub) Attach(mon *monitor.Monitor) pubsub.Unregister {
	return mon.On(monitor.TopicAny, func(ev monitor.Event) {
		_, _ = h.Publish(NewMessage(ev, h.clock.Now()))
	})
}

// History returns the buffered messages, oldest first.
func (h *Hub) History() []Message {
	h.historyMu.RLock()
	defer h.historyMu.RUnlock()

	out := make([]Message, 0, h.count)
	start := (h.next - h.count + len(h.history)) % max(len(h.history), 1)
	for i := 0; i < h.count; i++ {
		out = append(out, h.history[(start+i)%len(h.history)])
	}
	return out
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop and sends a close frame to every client.
// It is safe to call more than once.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		close(h.stop)
		<-h.done
	})
	return nil
}

// ServeHTTP upgrades the request and keeps the connection until the client
// goes away or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.stop:
		http.Error(w, "hub closed", http.StatusServiceUnavailable)
		return
	default:
	}

	if h.ClientCount() >= h.config.MaxClients {
		http.Error(w, "maximum clients reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.debugLog("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	for _, msg := range h.History() {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := c.write(websocket.TextMessage, data, h.config.WriteTimeout); err != nil {
			return
		}
	}

	h.clientsMu.Lock()
	h.clients[c] = struct{}{}
	h.clientsMu.Unlock()
	defer h.removeClient(c)

	_ = conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	})

	// Reading is required to process pongs and detect disconnects.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.debugLog("websocket read failed", "error", err)
				}
				return
			}
		}
	}()

	ticker := h.clock.Ticker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil, h.config.WriteTimeout); err != nil {
				return
			}
		case <-readDone:
			return
		case <-h.stop:
			_ = c.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), h.config.WriteTimeout)
			return
		}
	}
}

func (h *Hub) removeClient(c *client) {
	h.clientsMu.Lock()
	delete(h.clients, c)
	h.clientsMu.Unlock()
}

func (h *Hub) broadcast() {
	defer close(h.done)
	for {
		select {
		case msg := <-h.messages:
			h.remember(msg)
			h.send(msg)
		case <-h.stop:
			return
		}
	}
}

func (h *Hub) remember(msg Message) {
	if len(h.history) == 0 {
		return
	}
	h.historyMu.Lock()
	defer h.historyMu.Unlock()
	h.history[h.next] = msg
	h.next = (h.next + 1) % len(h.history)
	if h.count < len(h.history) {
		h.count++
	}
}

func (h *Hub) send(msg Message) {
	h.clientsMu.RLock()
	if len(h.clients) == 0 {
		h.clientsMu.RUnlock()
		return
	}
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	data, err := json.Marshal(msg)
	if err != nil {
		h.debugLog("marshal message failed", "error", err)
		return
	}

	var failed []*client
	for _, c := range clients {
		if err := c.write(websocket.TextMessage, data, h.config.WriteTimeout); err != nil {
			c.conn.Close()
			failed = append(failed, c)
		}
	}

	if len(failed) > 0 {
		h.clientsMu.Lock()
		for _, c := range failed {
			delete(h.clients, c)
		}
		h.clientsMu.Unlock()
	}
}

// debugLog logs at debug level if a logger is configured.
func (h *Hub) debugLog(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}

var _ http.Handler = (*Hub)(nil)
