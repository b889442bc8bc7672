package brackets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func startHub(t *testing.T) (*Hub, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return hub, cancel, stopped
}

// viewerServer upgrades /?room=... and attaches the connection to hub like the HTTP handler does.
func viewerServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("room"))
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesOnlyItsRoom(t *testing.T) {
	hub, _, _ := startHub(t)
	srv := viewerServer(t, hub)

	first := dial(t, srv, "g1")
	other := dial(t, srv, "g2")
	require.Eventually(t, func() bool { return hub.RoomSize("g1") == 1 && hub.RoomSize("g2") == 1 }, waitFor, 10*time.Millisecond)

	hub.BroadcastToRoom("g1", Event{Type: EventTournamentStarted, Payload: map[string]int{"round": 1}})

	require.NoError(t, first.SetReadDeadline(time.Now().Add(waitFor)))
	_, raw, err := first.ReadMessage()
	require.NoError(t, err)
	var got Event
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, EventTournamentStarted, got.Type)
	assert.Equal(t, "g1", got.RoomID)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = other.ReadMessage()
	require.Error(t, err)
	var netErr interface{ Timeout() bool }
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestDisconnectEmptiesRoom(t *testing.T) {
	hub, _, _ := startHub(t)
	srv := viewerServer(t, hub)

	conn := dial(t, srv, "g1")
	require.Eventually(t, func() bool { return hub.RoomSize("g1") == 1 }, waitFor, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.RoomSize("g1") == 0 }, waitFor, 10*time.Millisecond)

	hub.mu.RLock()
	_, ok := hub.rooms["g1"]
	hub.mu.RUnlock()
	assert.False(t, ok)
}

func TestFullSendBufferDropsEvents(t *testing.T) {
	hub, _, _ := startHub(t)
	slow := NewClient(hub, nil, "g1")
	hub.Register(slow)
	require.Eventually(t, func() bool { return hub.RoomSize("g1") == 1 }, waitFor, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer+5; i++ {
			hub.BroadcastToRoom("g1", Event{Type: EventMatchResolved})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("broadcast blocked on a slow viewer")
	}
	assert.Len(t, slow.send, sendBuffer)
}

func TestLeaveClosesClient(t *testing.T) {
	hub, _, _ := startHub(t)
	c := NewClient(hub, nil, "g1")
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.RoomSize("g1") == 1 }, waitFor, 10*time.Millisecond)

	hub.leave(c)
	require.Eventually(t, func() bool { return hub.RoomSize("g1") == 0 }, waitFor, 10*time.Millisecond)
	_, open := <-c.send
	assert.False(t, open)

	// повторное закрытие не паникует
	assert.NotPanics(t, c.close)
}

func TestStoppedHubClosesClients(t *testing.T) {
	hub, cancel, stopped := startHub(t)
	watching := NewClient(hub, nil, "g1")
	hub.Register(watching)
	require.Eventually(t, func() bool { return hub.RoomSize("g1") == 1 }, waitFor, 10*time.Millisecond)

	cancel()
	<-stopped

	assert.Equal(t, 0, hub.RoomSize("g1"))
	_, open := <-watching.send
	assert.False(t, open)

	late := NewClient(hub, nil, "g1")
	returned := make(chan struct{})
	go func() {
		hub.Register(late)
		hub.leave(late)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(waitFor):
		t.Fatal("Register blocked after the hub stopped")
	}
	_, open = <-late.send
	assert.False(t, open)

	// BroadcastToRoom после остановки ничего не делает
	assert.NotPanics(t, func() { hub.BroadcastToRoom("g1", Event{Type: EventRoundAdvanced}) })
}
