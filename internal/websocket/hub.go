package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries chat events between instances.
const ClusterChannel = "chat_feed_events"

type clusterEnvelope struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

// Hub fans chat events out to every connected websocket client. With Redis
// configured, events raised on one instance reach clients of all instances.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb        *redis.Client
	instanceID string

	ready     chan struct{}
	readyOnce sync.Once

	// done is closed when Run returns; pending register and unregister sends
	// give up on it.
	done chan struct{}

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		ready:      make(chan struct{}),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Ready is closed once the hub accepts clients and, with Redis, is subscribed
// to the cluster channel.
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

func (h *Hub) markReady() {
	h.readyOnce.Do(func() { close(h.ready) })
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
		if _, err := pubsub.Receive(ctx); err != nil {
			h.logger.Error("Hub", "Redis subscribe failed, serving local clients only", map[string]interface{}{"error": err})
			pubsub.Close()
		} else {
			defer pubsub.Close()
			go h.relayCluster(pubsub.Channel())
		}
	}
	h.markReady()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.ID, "clients": total})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"client_id": client.ID, "clients": total})
		}
	}
}

// registerClient reports false when the hub has already stopped.
func (h *Hub) registerClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastChatEvent sends the event to local clients and publishes it for
// the other instances.
func (h *Hub) BroadcastChatEvent(event dto.ChatEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal chat event", map[string]interface{}{"error": err})
		return
	}

	h.deliverLocal(data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterEnvelope{Origin: h.instanceID, Message: data})
		if err := h.rdb.Publish(context.Background(), ClusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish to cluster channel", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliverLocal(data []byte) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{"client_id": client.ID})
		go h.unregisterClient(client)
	}
}

func (h *Hub) relayCluster(ch <-chan *redis.Message) {
	for msg := range ch {
		var envelope clusterEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		// Already delivered locally by BroadcastChatEvent.
		if envelope.Origin == h.instanceID {
			continue
		}
		h.deliverLocal(envelope.Message)
	}
}
