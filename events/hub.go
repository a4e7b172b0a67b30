package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/alsafartravel/travel-services/models"
)

// Event types
const (
	EventPaymentPending    = "payment_pending"
	EventPaymentProcessing = "payment_processing"
	EventPaymentCompleted  = "payment_completed"
	EventPaymentFailed     = "payment_failed"
	EventApplicationUpdate = "application_update"
	EventReceiptGenerated  = "receipt_generated"
	EventStaffNotif        = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected back-office client (admin, agent) keyed by role.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection to the set with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient removes a connection and closes it.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastPaymentUpdate publishes the payment under an event named after
// its current status.
func BroadcastPaymentUpdate(payment models.Payment) {
	event := EventPaymentPending
	switch payment.Status {
	case "processing":
		event = EventPaymentProcessing
	case "completed":
		event = EventPaymentCompleted
	case "failed":
		event = EventPaymentFailed
	}
	broadcast(Message{
		Event: event,
		Data:  payment,
	})
}

// BroadcastApplicationUpdate notifies clients that an application changed.
func BroadcastApplicationUpdate(application models.Application) {
	broadcast(Message{
		Event: EventApplicationUpdate,
		Data:  application,
	})
}

// BroadcastReceiptGenerated notifies clients that a receipt was issued.
func BroadcastReceiptGenerated(receipt models.Receipt) {
	broadcast(Message{
		Event: EventReceiptGenerated,
		Data:  receipt,
	})
}

// BroadcastStaffNotification sends a plain text notice to all clients.
func BroadcastStaffNotification(message string) {
	broadcast(Message{
		Event: EventStaffNotif,
		Data:  message,
	})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
