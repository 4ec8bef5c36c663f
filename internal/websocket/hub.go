package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"troubleshoot-agent-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notification is an event pushed to connected browsers: a document
// finished ingesting, a session was escalated.
type Notification struct {
	Type      string                 `json:"type"`
	SessionId string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

type Hub struct {
	// Registered clients map: SessionID -> List of Clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	// instanceID filters out our own publishes on the cluster channel.
	instanceID string

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a notification to ALL connected clients, e.g. when a
// knowledge base document finishes ingesting.
func (h *Hub) Broadcast(notification Notification) {
	data, _ := json.Marshal(notification)

	h.deliverAll(data)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"origin":            h.instanceID,
			"target_session_id": "*",
			"message":           json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// Send pushes a notification to the clients watching one session.
func (h *Hub) Send(sessionID string, notification Notification) {
	data, _ := json.Marshal(notification)

	h.mu.RLock()
	clients, localFound := h.clients[sessionID]
	h.mu.RUnlock()

	if localFound {
		h.deliver(clients, data)
	}

	// Publish for other instances regardless, the session may be connected
	// elsewhere.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"origin":            h.instanceID,
			"target_session_id": sessionID,
			"message":           json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// deliver writes to each client, kicking any whose send buffer is full.
// Unregistration happens outside the lock to keep Run unblocked.
func (h *Hub) deliver(clients []*Client, data []byte) {
	var dead []*Client
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			dead = append(dead, client)
		}
	}
	for _, client := range dead {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"session_id": client.SessionID})
		h.unregister <- client
	}
}

func (h *Hub) deliverAll(data []byte) {
	h.mu.RLock()
	all := make([]*Client, 0)
	for _, clients := range h.clients {
		all = append(all, clients...)
	}
	h.mu.RUnlock()
	h.deliver(all, data)
}

func (h *Hub) subscribeToRedis() {
	// All instances subscribe to "cluster_events". When a message arrives,
	// deliver it to locally connected clients for the target session.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			Origin          string          `json:"origin"`
			TargetSessionID string          `json:"target_session_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		if payload.Origin == h.instanceID {
			continue
		}

		if payload.TargetSessionID == "*" {
			h.deliverAll(payload.Message)
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[payload.TargetSessionID]
		h.mu.RUnlock()

		if ok {
			h.deliver(clients, payload.Message)
		}
	}
}
