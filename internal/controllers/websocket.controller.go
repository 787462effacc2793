package controllers

import (
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"hwmonitor/internal/middleware"
	"hwmonitor/internal/models"
	"hwmonitor/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// EventsController accepts push-event listeners and triggers backend events
type EventsController struct {
	hub      *services.EventHub
	logger   *middleware.SecurityLogger
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

// NewEventsController wires the event handlers. allowedOrigins follows the
// CORS rules; an empty list accepts any origin.
func NewEventsController(hub *services.EventHub, logger *middleware.SecurityLogger, allowedOrigins []string) *EventsController {
	return &EventsController{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || middleware.OriginAllowed(origin, allowedOrigins)
			},
		},
	}
}

// HandleWebSocket upgrades the connection and registers it with the hub
func (e *EventsController) HandleWebSocket(c *gin.Context) {
	name := "anonymous"
	if v, ok := c.Get(middleware.ClaimsKey); ok {
		if claims, ok := v.(*services.CustomClaims); ok && claims.ClientName != "" {
			name = claims.ClientName
		}
	}

	ws, err := e.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &services.ClientConnection{
		ID:    fmt.Sprintf("%s-%d", name, e.nextID.Add(1)),
		Conn:  ws,
		Send:  make(chan models.Event, 64),
		Close: make(chan bool),
	}
	e.logger.LogWebSocketConnected(c.ClientIP(), client.ID)

	e.hub.Register(client)

	go e.readPump(client, c.ClientIP())
	go writePump(client)
}

// readPump drains client frames until the connection closes. Listeners only
// receive; anything they send is ignored.
func (e *EventsController) readPump(client *services.ClientConnection, ip string) {
	defer func() {
		e.hub.Unregister(client.ID)
		close(client.Close)
		client.Conn.Close()
		e.logger.LogWebSocketDisconnected(ip, client.ID)
	}()

	client.Conn.SetReadLimit(4096)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			return
		}
	}
}

// writePump writes queued events and keeps the connection alive with pings
func writePump(client *services.ClientConnection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(msg); err != nil {
				log.Printf("[WS] Write error: %v", err)
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-client.Close:
			return
		}
	}
}

// OpenSettings pushes open_settings to every listener
func (e *EventsController) OpenSettings(c *gin.Context) {
	if err := e.hub.Emit(models.EventOpenSettings, nil); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusAccepted)
}

// EmitError pushes an error_event with a caller supplied title and message
func (e *EventsController) EmitError(c *gin.Context) {
	var payload models.ErrorPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if err := e.hub.Emit(models.EventError, payload); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusAccepted)
}
