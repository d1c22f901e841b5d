package ws

import (
	"encoding/json"
	"sync"
	"time"

	"sgad-api/internal/logging"

	"github.com/gofiber/contrib/websocket"
)

// Event is the envelope pushed to connected clients.
type Event struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
	SentAt  time.Time   `json:"sent_at"`
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			logging.Debug("ws client connected", "clients", h.ClientCount())

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Publish queues an event for broadcast. It never blocks the caller; when
// the queue is full the event is dropped and logged.
func (h *Hub) Publish(eventType, message string, data interface{}) {
	msg, err := json.Marshal(Event{Type: eventType, Data: data, Message: message, SentAt: time.Now()})
	if err != nil {
		logging.Warn("ws event marshal failed", "type", eventType, "error", err)
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		logging.Warn("ws broadcast queue full, dropping event", "type", eventType)
	}
}
