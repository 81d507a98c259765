package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
)

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	mu       sync.RWMutex
	topics   map[Topic]bool
	settings Settings
}

func NewClient(hub *Hub, conn *websocket.Conn, topics []Topic) *Client {
	c := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, hub.settings.ClientBuffer),
		topics:   make(map[Topic]bool),
		settings: hub.settings,
	}
	if len(topics) == 0 {
		topics = DefaultTopics
	}
	c.setTopics(topics, true)
	return c
}

func (c *Client) Subscribed(topic Topic) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topics[topic]
}

func (c *Client) Topics() []Topic {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Topic
	for _, t := range []Topic{TopicPrediction, TopicDelayAlert, TopicAnomaly, TopicEvaluationFailed} {
		if c.topics[t] {
			out = append(out, t)
		}
	}
	return out
}

func (c *Client) setTopics(topics []Topic, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		if t.Valid() {
			c.topics[t] = on
		}
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.settings.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.settings.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.settings.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.settings.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		c.setTopics(msg.Topics, true)
		c.sendConfirmation("subscribed")
	case "unsubscribe":
		c.setTopics(msg.Topics, false)
		c.sendConfirmation("unsubscribed")
	}
}

func (c *Client) sendConfirmation(action string) {
	data, err := json.Marshal(subscriptionUpdate{
		Type:      "subscription_update",
		Action:    action,
		Topics:    c.Topics(),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.Errorf("Failed to marshal confirmation: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Warn("Client send channel full, dropping confirmation")
	}
}

// ServeWebSocket upgrades the request. An optional comma-separated
// "topics" query parameter replaces the default subscription.
func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	settings := hub.Settings()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  settings.ReadBufferSize,
		WriteBufferSize: settings.WriteBufferSize,
		CheckOrigin:     originChecker(settings.AllowedOrigins),
	}

	return func(c *gin.Context) {
		if hub.Full() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many websocket connections"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(hub, conn, parseTopics(c.Query("topics")))
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}

func parseTopics(raw string) []Topic {
	if raw == "" {
		return nil
	}
	var topics []Topic
	for _, part := range strings.Split(raw, ",") {
		if t := Topic(strings.TrimSpace(part)); t.Valid() {
			topics = append(topics, t)
		}
	}
	return topics
}

// originChecker allows any origin when none are configured or "*" is
// listed.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
