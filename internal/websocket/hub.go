package websocket

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repository"
	"github.com/learnhub/backend/internal/storage"
)

// Hub maintains the set of connected tabs and fans change notifications out
// to them. Notifications are advisory: receivers re-read what they need.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for every client
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	log *logger.Logger

	// Mutex for thread-safe operations
	mu sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With("service", "Hub"),
	}
}

// Run starts the hub and returns when ctx is done
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			return nil

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

			h.log.Debug("client registered", "username", client.username)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()

			h.log.Debug("client unregistered", "username", client.username)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					client.close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// SlotReader reads one slot back from the store.
type SlotReader interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Consume turns store changes into notifications until ctx is done or
// changes is closed. Changes that arrive without a value (the Postgres store
// sends keys only) are completed from slots; slots may be nil when every
// change carries its value.
func (h *Hub) Consume(ctx context.Context, changes <-chan storage.Change, slots SlotReader) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			c, known := h.resolve(ctx, slots, c)
			if !known {
				h.Announce(storageChanged(c))
				continue
			}
			for _, msg := range messagesFor(c) {
				h.Announce(msg)
			}
		}
	}
}

// resolve fills in the value of a key-only change. It reports false when
// the slot could not be read, in which case only the key is trustworthy.
func (h *Hub) resolve(ctx context.Context, slots SlotReader, c storage.Change) (storage.Change, bool) {
	if c.Removed || c.Value != "" || slots == nil {
		return c, true
	}

	value, ok, err := slots.Get(ctx, c.Key)
	if err != nil {
		h.log.Warn("failed to re-read changed slot", "key", c.Key, "error", err)
		return c, false
	}
	if !ok {
		c.Removed = true
		return c, true
	}
	c.Value = value
	return c, true
}

// messagesFor maps one slot change to the events clients listen for. Every
// change yields storage.changed; known slots add their own event first.
func messagesFor(c storage.Change) []models.WSMessage {
	var out []models.WSMessage

	switch c.Key {
	case repository.SlotProfileAvatar:
		avatar := c.Value
		if c.Removed || avatar == "" {
			avatar = models.AvatarPlaceholder
		}
		out = append(out, models.WSMessage{
			Event:   models.EventAvatarChanged,
			Payload: models.WSAvatarPayload{AvatarURL: avatar},
		})

	case repository.SlotCoursesUpdated:
		ms, err := strconv.ParseInt(c.Value, 10, 64)
		if err == nil {
			out = append(out, models.WSMessage{
				Event:   models.EventCoursesChanged,
				Payload: models.WSCoursesPayload{UpdatedAt: ms},
			})
		}

	case repository.SlotTheme:
		theme := c.Value
		if models.ValidateTheme(theme) != nil {
			theme = models.DefaultTheme
		}
		out = append(out, models.WSMessage{
			Event:   models.EventThemeChanged,
			Payload: models.WSThemePayload{Theme: theme},
		})
	}

	return append(out, storageChanged(c))
}

func storageChanged(c storage.Change) models.WSMessage {
	return models.WSMessage{
		Event:   models.EventStorageChanged,
		Payload: models.WSStoragePayload{Key: c.Key, Removed: c.Removed},
	}
}

// Announce queues msg for every connected client
func (h *Hub) Announce(msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to encode notification", "event", msg.Event, "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("broadcast queue full, dropping notification", "event", msg.Event)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
