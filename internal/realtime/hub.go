package realtime

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Hub broadcasts order events to every connected display (kitchen screens,
// front-of-house boards). Clients register over websocket; delivery is
// best-effort and slow clients are dropped rather than allowed to block the
// hub.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	log        logrus.FieldLogger
}

// envelope wraps every published payload with its event name.
type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		log:        log,
	}
}

// Run processes client registration and broadcast fan-out. It blocks; start
// it on its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.WithField("clients", len(h.clients)).Debug("display connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.WithField("clients", len(h.clients)).Debug("display disconnected")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Publish broadcasts a named event with a JSON-serializable payload to all
// connected displays. Fire-and-forget: marshaling errors are logged and the
// event dropped.
func (h *Hub) Publish(event string, payload interface{}) {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("failed to marshal event payload")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.WithField("event", event).Warn("broadcast buffer full, dropping event")
	}
}
