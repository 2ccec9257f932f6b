// file: internal/realtime/events.go
// version: 2.0.0
// guid: 9e8d7f6a-5c4b-3a21-0f9e-8d7c6b5a4392

package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"
)

// EventType defines the type of real-time event
type EventType string

const (
	EventCatalogReloaded     EventType = "catalog.reloaded"
	EventCatalogImported     EventType = "catalog.imported"
	EventCatalogReloadFailed EventType = "catalog.reload_failed"
	EventConnected           EventType = "connection.established"
	EventHeartbeat           EventType = "heartbeat"
)

// DefaultHeartbeat is how often idle streams get a heartbeat event.
const DefaultHeartbeat = 15 * time.Second

const clientBuffer = 32

// Event represents a real-time event to send to clients
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Client represents a connected SSE client. A client with no filter receives
// every event type.
type Client struct {
	ID      string
	Channel chan *Event
	types   map[EventType]bool
	mu      sync.RWMutex
}

// NewClient creates a new SSE client
func NewClient(id string) *Client {
	return &Client{
		ID:      id,
		Channel: make(chan *Event, clientBuffer),
		types:   make(map[EventType]bool),
	}
}

// Subscribe limits the client to the given event type (cumulative).
func (c *Client) Subscribe(t EventType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[t] = true
}

// Unsubscribe removes an event type from the client's filter
func (c *Client) Unsubscribe(t EventType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.types, t)
}

// Wants reports whether the client should receive events of type t.
func (c *Client) Wants(t EventType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.types) == 0 || c.types[t]
}

// EventHub manages SSE connections and event distribution
type EventHub struct {
	mu        sync.RWMutex
	clients   map[string]*Client
	heartbeat time.Duration
}

// NewEventHub creates a new event hub. A heartbeat of zero uses DefaultHeartbeat.
func NewEventHub(heartbeat time.Duration) *EventHub {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &EventHub{
		clients:   make(map[string]*Client),
		heartbeat: heartbeat,
	}
}

// RegisterClient registers a new client
func (h *EventHub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[INFO] event client %s registered, total clients: %d", client.ID, len(h.clients))
}

// UnregisterClient removes a client and closes its channel
func (h *EventHub) UnregisterClient(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.clients[clientID]; exists {
		close(client.Channel)
		delete(h.clients, clientID)
		log.Printf("[INFO] event client %s unregistered, remaining clients: %d", clientID, len(h.clients))
	}
}

// Broadcast delivers event to every interested client. Slow clients with a
// full buffer miss the event rather than block the publisher.
func (h *EventHub) Broadcast(event *Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, client := range h.clients {
		if !client.Wants(event.Type) {
			continue
		}
		select {
		case client.Channel <- event:
			count++
		default:
			log.Printf("[WARN] event client %s channel full, dropping %s", client.ID, event.Type)
		}
	}
	return count
}

// Publish broadcasts an event of type t stamped with the current time.
func (h *EventHub) Publish(t EventType, data map[string]any) int {
	if h == nil {
		return 0
	}
	return h.Broadcast(&Event{Type: t, Timestamp: time.Now(), Data: data})
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ParseTypes splits a comma-separated filter such as
// "catalog.reloaded,catalog.imported".
func ParseTypes(raw string) []EventType {
	var out []EventType
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, EventType(part))
		}
	}
	return out
}

// HandleSSE streams events as Server-Sent Events until the client disconnects.
// The optional "types" query parameter filters event types.
func (h *EventHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	// Streams outlive the server's WriteTimeout; lift it where supported.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	client := NewClient(ulid.Make().String())
	for _, t := range ParseTypes(c.Query("types")) {
		client.Subscribe(t)
	}

	h.RegisterClient(client)
	defer h.UnregisterClient(client.ID)

	if err := writeEvent(c, &Event{
		Type:      EventConnected,
		Timestamp: time.Now(),
		Data:      map[string]any{"client_id": client.ID},
	}); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-client.Channel:
			if !ok {
				return
			}
			if err := writeEvent(c, event); err != nil {
				log.Printf("[ERROR] writing to event client %s: %v", client.ID, err)
				return
			}
		case <-ticker.C:
			if err := writeEvent(c, &Event{Type: EventHeartbeat, Timestamp: time.Now()}); err != nil {
				return
			}
		}
	}
}

// writeEvent writes one "event:/data:" frame and flushes it.
func writeEvent(c *gin.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
