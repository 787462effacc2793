package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"hwmonitor/internal/models"

	"github.com/gorilla/websocket"
)

// EventEmitter pushes named events to listeners
type EventEmitter interface {
	Emit(eventType string, payload interface{}) error
}

// ClientConnection represents a connected WebSocket listener
type ClientConnection struct {
	ID    string
	Conn  *websocket.Conn
	Send  chan models.Event
	Close chan bool
}

// EventHub fans push events out to every connected listener
type EventHub struct {
	clients    map[string]*ClientConnection
	broadcast  chan models.Event
	register   chan *ClientConnection
	unregister chan string
	mu         sync.RWMutex
	done       chan bool
	stopOnce   sync.Once
}

// NewEventHub creates and starts a hub
func NewEventHub() *EventHub {
	hub := &EventHub{
		clients:    make(map[string]*ClientConnection),
		broadcast:  make(chan models.Event, 256),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		done:       make(chan bool),
	}

	go hub.run()

	return hub
}

// run manages the hub's event loop
func (h *EventHub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if old, exists := h.clients[client.ID]; exists {
				close(old.Send)
			}
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Listener connected: %s (total: %d)", client.ID, total)

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Listener disconnected: %s (total: %d)", clientID, total)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// Client's send channel is full, skip this message
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Emit broadcasts an event. payload may be nil.
func (h *EventHub) Emit(eventType string, payload interface{}) error {
	msg := models.Event{Type: eventType, Timestamp: time.Now()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", eventType, err)
		}
		msg.Payload = data
	}

	select {
	case <-h.done:
		return fmt.Errorf("event hub stopped")
	default:
	}

	select {
	case h.broadcast <- msg:
		return nil
	default:
		return fmt.Errorf("event queue full, dropped %s", eventType)
	}
}

// Register adds a new client to the hub
func (h *EventHub) Register(client *ClientConnection) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client from the hub
func (h *EventHub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.done:
	}
}

// ClientCount returns the number of connected listeners
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop gracefully stops the hub and closes every listener channel
func (h *EventHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}
