package frontend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hwmonitor/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorEvent(t *testing.T, title, message string) models.Event {
	t.Helper()
	payload, err := json.Marshal(models.ErrorPayload{Title: title, Message: message})
	require.NoError(t, err)
	return models.Event{Type: models.EventError, Payload: payload}
}

func TestListenersFlipUIState(t *testing.T) {
	l, err := NewEventListener("http://localhost:8080", "")
	require.NoError(t, err)
	ui := &UIState{}

	offSettings := ListenOpenSettings(l, ui)
	offErrors := ListenErrors(l, ui)

	l.Dispatch(models.Event{Type: models.EventOpenSettings})
	assert.True(t, ui.ShowSettings())

	l.Dispatch(errorEvent(t, "Failed to update settings", "delete settings.json"))
	got, ok := ui.Error()
	require.True(t, ok)
	assert.Equal(t, "Failed to update settings", got.Title)

	ui.DismissError()
	ui.SetShowSettings(false)
	offSettings()
	offErrors()

	l.Dispatch(models.Event{Type: models.EventOpenSettings})
	l.Dispatch(errorEvent(t, "late", "late"))
	assert.False(t, ui.ShowSettings())
	_, ok = ui.Error()
	assert.False(t, ok)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	l, err := NewEventListener("http://localhost:8080", "")
	require.NoError(t, err)

	first := l.Subscribe(models.EventOpenSettings, func(models.Event) {})
	second := l.Subscribe(models.EventOpenSettings, func(models.Event) {})
	assert.Equal(t, 2, l.Subscribers(models.EventOpenSettings))

	first()
	first()
	first()
	assert.Equal(t, 1, l.Subscribers(models.EventOpenSettings))

	second()
	assert.Equal(t, 0, l.Subscribers(models.EventOpenSettings))
}

func TestMalformedErrorPayloadIsIgnored(t *testing.T) {
	l, err := NewEventListener("http://localhost:8080", "")
	require.NoError(t, err)
	ui := &UIState{}
	ListenErrors(l, ui)

	l.Dispatch(models.Event{Type: models.EventError, Payload: json.RawMessage(`"oops"`)})
	_, ok := ui.Error()
	assert.False(t, ok)
}

func TestNewEventListenerURL(t *testing.T) {
	l, err := NewEventListener("https://monitor.local:9000/", "abc")
	require.NoError(t, err)
	assert.Equal(t, "wss://monitor.local:9000/ws?token=abc", l.url)

	_, err = NewEventListener("ftp://monitor.local", "")
	assert.Error(t, err)
}

func TestRunDispatchesPushedEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteJSON(models.Event{Type: models.EventOpenSettings, Timestamp: time.Now()})
		// hold the connection until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	l, err := NewEventListener(srv.URL, "")
	require.NoError(t, err)
	ui := &UIState{}
	ListenOpenSettings(l, ui)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, ui.ShowSettings, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
