package relay

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Publisher pushes a payload toward one account's connections. Delivery is
// fire-and-forget, at most once; the relay is never authoritative storage.
type Publisher interface {
	Publish(ctx context.Context, userID string, payload []byte) error
}

// Bridge fans payloads out across instances over redis pub/sub, one channel
// per account.
type Bridge struct {
	client *redis.Client
	prefix string
}

func NewBridge(client *redis.Client, prefix string) *Bridge {
	return &Bridge{client: client, prefix: prefix}
}

func (b *Bridge) channel(userID string) string {
	return fmt.Sprintf("%s:relay:%s", b.prefix, userID)
}

func (b *Bridge) Publish(ctx context.Context, userID string, payload []byte) error {
	return b.client.Publish(ctx, b.channel(userID), payload).Err()
}

// Run consumes every relay channel and fans payloads out to this
// instance's local connections. Blocks until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context, hub *Hub) {
	pattern := fmt.Sprintf("%s:relay:*", b.prefix)
	pubsub := b.client.PSubscribe(ctx, pattern)
	defer pubsub.Close()
	prefix := fmt.Sprintf("%s:relay:", b.prefix)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			userID := strings.TrimPrefix(msg.Channel, prefix)
			hub.Send(userID, []byte(msg.Payload))
		}
	}
}

// Hub tracks connections local to this instance.
type Hub struct {
	clients map[string]map[*Client]bool // userID -> connections
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]bool)}
}

func (h *Hub) Register(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*Client]bool)
	}
	h.clients[userID][c] = true
}

func (h *Hub) Unregister(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
	c.close()
}

// Send delivers payload to the user's local connections; payloads for users
// connected elsewhere travel over the bridge instead.
func (h *Hub) Send(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		c.Send(payload)
	}
}

// Client is one websocket connection's outbound queue.
type Client struct {
	UserID string
	send   chan []byte
	once   sync.Once
}

func NewClient(userID string) *Client {
	return &Client{UserID: userID, send: make(chan []byte, 256)}
}

// Send queues payload; drops when the connection cannot keep up.
func (c *Client) Send(payload []byte) {
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) Outbound() <-chan []byte {
	return c.send
}

func (c *Client) close() {
	c.once.Do(func() { close(c.send) })
}
