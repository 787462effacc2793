package frontend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"hwmonitor/internal/models"

	"github.com/gorilla/websocket"
)

// UIState holds the visibility flags driven by backend events
type UIState struct {
	mu           sync.RWMutex
	showSettings bool
	errorModal   *models.ErrorPayload
}

func (u *UIState) ShowSettings() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.showSettings
}

func (u *UIState) SetShowSettings(v bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.showSettings = v
}

// Error returns the error modal currently shown, if any
func (u *UIState) Error() (models.ErrorPayload, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.errorModal == nil {
		return models.ErrorPayload{}, false
	}
	return *u.errorModal, true
}

func (u *UIState) ShowError(p models.ErrorPayload) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errorModal = &p
}

func (u *UIState) DismissError() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errorModal = nil
}

// EventHandler receives one pushed event
type EventHandler func(models.Event)

type subscription struct {
	eventType string
	handler   EventHandler
}

// EventListener receives backend push events over a websocket and fans them
// out to subscribers
type EventListener struct {
	url    string
	dialer *websocket.Dialer

	mu       sync.Mutex
	nextID   uint64
	handlers map[uint64]subscription
}

// NewEventListener creates a listener for the backend at baseURL
func NewEventListener(baseURL, token string) (*EventListener, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported backend scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	if token != "" {
		u.RawQuery = url.Values{"token": {token}}.Encode()
	}

	return &EventListener{
		url:      u.String(),
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		handlers: make(map[uint64]subscription),
	}, nil
}

// Subscribe registers handler for eventType. The returned func removes it;
// calling it more than once is safe.
func (l *EventListener) Subscribe(eventType string, handler EventHandler) (unsubscribe func()) {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.handlers[id] = subscription{eventType: eventType, handler: handler}
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.handlers, id)
			l.mu.Unlock()
		})
	}
}

// Subscribers counts handlers for eventType
func (l *EventListener) Subscribers(eventType string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, sub := range l.handlers {
		if sub.eventType == eventType {
			n++
		}
	}
	return n
}

// Dispatch delivers ev to every matching handler
func (l *EventListener) Dispatch(ev models.Event) {
	l.mu.Lock()
	var matched []EventHandler
	for _, sub := range l.handlers {
		if sub.eventType == ev.Type {
			matched = append(matched, sub.handler)
		}
	}
	l.mu.Unlock()

	for _, h := range matched {
		h(ev)
	}
}

// Run connects and dispatches events until ctx is done or the connection
// drops
func (l *EventListener) Run(ctx context.Context) error {
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return fmt.Errorf("connect event stream: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	log.Printf("[EVENTS] Connected to %s", redactToken(l.url))
	for {
		var ev models.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		l.Dispatch(ev)
	}
}

// RunWithRetry keeps Run going until ctx is done, waiting retry between
// attempts
func (l *EventListener) RunWithRetry(ctx context.Context, retry time.Duration) {
	for {
		if err := l.Run(ctx); err != nil {
			log.Printf("[EVENTS] %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

func redactToken(raw string) string {
	if i := strings.Index(raw, "?"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// ListenOpenSettings shows the settings panel on open_settings
func ListenOpenSettings(l *EventListener, ui *UIState) func() {
	return l.Subscribe(models.EventOpenSettings, func(models.Event) {
		ui.SetShowSettings(true)
	})
}

// ListenErrors shows the error modal on error_event
func ListenErrors(l *EventListener, ui *UIState) func() {
	return l.Subscribe(models.EventError, func(ev models.Event) {
		var payload models.ErrorPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			log.Printf("[EVENTS] Malformed %s payload: %v", ev.Type, err)
			return
		}
		ui.ShowError(payload)
	})
}
