package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/citizenconnect/complaint-portal/internal/api/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

// EventRegisterUser is sent by a client to bind its connection to a user id.
const EventRegisterUser = "registerUser"

// ErrHubClosed is returned by ServeWS once Close has been called.
var ErrHubClosed = errors.New("realtime hub closed")

// Envelope is the JSON frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub owns every open websocket connection. Broadcast and SendTo never block:
// each client has a buffered queue drained by its own writer goroutine, and
// frames for a client whose queue is full are dropped.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	closed   bool
	registry *Registry
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewHub creates a hub that records user bindings in registry. Browser
// origins must appear in allowedOrigins; "*" allows any origin and requests
// without an Origin header are always accepted.
func NewHub(registry *Registry, allowedOrigins []string, log zerolog.Logger) *Hub {
	h := &Hub{
		clients:  make(map[string]*client),
		registry: registry,
		log:      log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[strings.TrimRight(origin, "/")]
	}
}

// ServeWS upgrades the request and starts the connection's pumps. It returns
// once the connection is running.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return ErrHubClosed
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		return err
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(c) {
		_ = conn.Close()
		return ErrHubClosed
	}

	h.log.Debug().Str("conn_id", c.id).Str("remote", r.RemoteAddr).Msg("realtime client connected")
	go h.writePump(c)
	go h.readPump(c)
	return nil
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	metrics.RealtimeConnections.Inc()
	return true
}

// remove detaches the client and releases its binding. Only the caller that
// actually removes the client closes its send channel.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	if ok {
		delete(h.clients, c.id)
		close(c.send)
		metrics.RealtimeConnections.Dec()
	}
	h.mu.Unlock()

	if ok {
		h.registry.OnDisconnect(c.id)
		h.log.Debug().Str("conn_id", c.id).Msg("realtime client disconnected")
	}
}

// Broadcast queues event for every connected client.
func (h *Hub) Broadcast(event string, payload any) {
	frame, err := encode(event, payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("failed to encode realtime frame")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		h.enqueue(c, event, frame)
	}
	metrics.RealtimeFramesTotal.WithLabelValues(event, "all").Add(float64(len(h.clients)))
}

// SendTo queues event for a single connection and reports whether that
// connection is open.
func (h *Hub) SendTo(connID, event string, payload any) bool {
	frame, err := encode(event, payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("failed to encode realtime frame")
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[connID]
	if !ok {
		return false
	}
	h.enqueue(c, event, frame)
	metrics.RealtimeFramesTotal.WithLabelValues(event, "one").Inc()
	return true
}

// enqueue must be called with h.mu held.
func (h *Hub) enqueue(c *client, event string, frame []byte) {
	select {
	case c.send <- frame:
	default:
		metrics.RealtimeDroppedFramesTotal.Inc()
		h.log.Warn().Str("conn_id", c.id).Str("event", event).Msg("client send buffer full, frame dropped")
	}
}

// Len returns the number of open connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Str("conn_id", c.id).Msg("realtime read failed")
			}
			return
		}
		h.handleMessage(c, raw)
	}
}

func (h *Hub) handleMessage(c *client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.log.Debug().Str("conn_id", c.id).Msg("ignoring malformed realtime frame")
		return
	}

	switch env.Event {
	case EventRegisterUser:
		var userID string
		if err := json.Unmarshal(env.Data, &userID); err != nil || strings.TrimSpace(userID) == "" {
			h.log.Debug().Str("conn_id", c.id).Msg("registerUser without user id")
			return
		}
		h.registry.Register(userID, c.id)
		h.log.Info().Str("conn_id", c.id).Str("user_id", userID).Msg("realtime user registered")
	default:
		h.log.Debug().Str("conn_id", c.id).Str("event", env.Event).Msg("ignoring unknown realtime event")
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
