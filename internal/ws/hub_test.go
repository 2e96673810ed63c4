package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialTestHub wires a real websocket connection through httptest so
// broadcasts exercise the same write path as production.
func dialTestHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		h.RegisterClient(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Clients() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("clients=%d, want %d", h.Clients(), want)
}

func TestBroadcastReachesClient(t *testing.T) {
	h := NewHub()
	h.Start()
	defer h.Stop()

	conn := dialTestHub(t, h)
	waitForClients(t, h, 1)

	h.Broadcast(map[string]string{"type": "snapshot"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var frame map[string]string
	if err := json.Unmarshal(payload, &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if frame["type"] != "snapshot" {
		t.Fatalf("frame=%v", frame)
	}
}

func TestUnregisterClient(t *testing.T) {
	h := NewHub()
	h.Start()
	defer h.Stop()

	conn := dialTestHub(t, h)
	waitForClients(t, h, 1)

	h.UnregisterClient(conn)
	waitForClients(t, h, 0)

	// Broadcasting to an empty hub must not block or panic.
	h.Broadcast(map[string]string{"type": "snapshot"})
}

func TestStopClosesClients(t *testing.T) {
	h := NewHub()
	h.Start()

	conn := dialTestHub(t, h)
	waitForClients(t, h, 1)

	h.Stop()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected read to fail after hub stop")
	}
}
