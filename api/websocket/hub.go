package websocket

import (
	"sync"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/config"
)

const defaultBroadcastBuffer = 256

type Settings struct {
	MaxConnections  int
	PingInterval    time.Duration
	PongTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	ClientBuffer    int
	AllowedOrigins  []string
}

func NewSettings(cfg *config.WebSocketConfig) Settings {
	s := Settings{
		MaxConnections:  1000,
		PingInterval:    54 * time.Second,
		PongTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		ClientBuffer:    256,
	}
	if cfg == nil {
		return s
	}
	if cfg.MaxConnections > 0 {
		s.MaxConnections = cfg.MaxConnections
	}
	if cfg.PingInterval > 0 {
		s.PingInterval = cfg.PingInterval
	}
	if cfg.PongTimeout > 0 {
		s.PongTimeout = cfg.PongTimeout
	}
	if s.PingInterval >= s.PongTimeout {
		s.PongTimeout = s.PingInterval * 10 / 9
	}
	if cfg.WriteTimeout > 0 {
		s.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.MaxMessageSize > 0 {
		s.MaxMessageSize = cfg.MaxMessageSize
	}
	if cfg.ReadBufferSize > 0 {
		s.ReadBufferSize = cfg.ReadBufferSize
	}
	if cfg.WriteBufferSize > 0 {
		s.WriteBufferSize = cfg.WriteBufferSize
	}
	if cfg.ClientBuffer > 0 {
		s.ClientBuffer = cfg.ClientBuffer
	}
	s.AllowedOrigins = cfg.AllowedOrigins
	return s
}

type broadcastMessage struct {
	topic   Topic
	payload []byte
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	settings   Settings
	onCount    func(int)
}

func NewHub(cfg *config.WebSocketConfig) *Hub {
	broadcastBuffer := defaultBroadcastBuffer
	if cfg != nil && cfg.BroadcastBuffer > 0 {
		broadcastBuffer = cfg.BroadcastBuffer
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastMessage, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		settings:   NewSettings(cfg),
		onCount:    func(int) {},
	}
}

// OnClientCount registers a callback fired whenever the client count
// changes. It must be set before Run.
func (h *Hub) OnClientCount(fn func(int)) {
	if fn != nil {
		h.onCount = fn
	}
}

func (h *Hub) Settings() Settings {
	return h.settings
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.onCount(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.onCount(count)
			logger.Infof("WebSocket client connected (total: %d)", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.onCount(count)
			logger.Infof("WebSocket client disconnected (total: %d)", count)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// deliver drops clients whose send buffer is full.
func (h *Hub) deliver(msg broadcastMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	dropped := 0
	for client := range h.clients {
		if !client.Subscribed(msg.topic) {
			continue
		}
		select {
		case client.send <- msg.payload:
		default:
			delete(h.clients, client)
			close(client.send)
			dropped++
		}
	}
	if dropped > 0 {
		logger.Warnf("Dropped %d slow WebSocket clients", dropped)
		h.onCount(len(h.clients))
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Broadcast(topic Topic, payload []byte) {
	select {
	case h.broadcast <- broadcastMessage{topic: topic, payload: payload}:
	default:
		logger.Warn("Broadcast channel full, dropping message")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Full reports whether the connection limit has been reached.
func (h *Hub) Full() bool {
	return h.ClientCount() >= h.settings.MaxConnections
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
