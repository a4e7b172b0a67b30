package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/alsafartravel/travel-services/models"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialTestClient connects a websocket client and registers its server-side
// connection with the hub.
func dialTestClient(t *testing.T) *websocket.Conn {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		RegisterClient(conn, "admin")
		connCh <- conn
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case conn := <-connCh:
		t.Cleanup(func() { UnregisterClient(conn) })
	case <-time.After(2 * time.Second):
		t.Fatalf("server never registered the client")
	}

	return client
}

func readMessage(t *testing.T, client *websocket.Conn) Message {
	t.Helper()
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read broadcast: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to unmarshal broadcast: %v", err)
	}
	return msg
}

func TestBroadcastStaffNotification(t *testing.T) {
	client := dialTestClient(t)

	BroadcastStaffNotification("Application app-1 moved to approved")

	msg := readMessage(t, client)
	if msg.Event != EventStaffNotif {
		t.Errorf("event = %s, want %s", msg.Event, EventStaffNotif)
	}
	if msg.Data != "Application app-1 moved to approved" {
		t.Errorf("data = %v", msg.Data)
	}
}

func TestBroadcastPaymentUpdate_EventPerStatus(t *testing.T) {
	client := dialTestClient(t)

	tests := []struct {
		status    string
		wantEvent string
	}{
		{"pending", EventPaymentPending},
		{"processing", EventPaymentProcessing},
		{"completed", EventPaymentCompleted},
		{"failed", EventPaymentFailed},
	}

	for _, tt := range tests {
		BroadcastPaymentUpdate(models.Payment{
			ID:     "pay-1",
			Amount: decimal.NewFromInt(100),
			Status: tt.status,
		})

		msg := readMessage(t, client)
		if msg.Event != tt.wantEvent {
			t.Errorf("status %s: event = %s, want %s", tt.status, msg.Event, tt.wantEvent)
		}
	}
}
