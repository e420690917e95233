package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event names pushed to connected hostel dashboards.
const (
	EventCleaningCreated    = "cleaning_request_created"
	EventCleaningUpdated    = "cleaning_request_updated"
	EventCleaningOverdue    = "cleaning_request_overdue"
	EventAnnouncementPosted = "announcement_posted"
	EventRoomUpdate         = "room_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	hostelID uint
	role     string
}

// Hub tracks websocket connections per hostel and fans events out to them.
type Hub struct {
	clients map[*websocket.Conn]client
	mu      sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]client),
}

// RegisterClient adds a connection scoped to one hostel.
func RegisterClient(conn *websocket.Conn, hostelID uint, role string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.clients[conn] = client{hostelID: hostelID, role: role}
}

// UnregisterClient drops a connection and closes it.
func UnregisterClient(conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// ClientCount returns the number of connections watching a hostel.
func ClientCount(hostelID uint) int {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	n := 0
	for _, cl := range hub.clients {
		if cl.hostelID == hostelID {
			n++
		}
	}
	return n
}

// BroadcastToHostel sends an event to every connection watching the hostel.
func BroadcastToHostel(hostelID uint, event string, data interface{}) {
	broadcast(func(cl client) bool { return cl.hostelID == hostelID }, Message{Event: event, Data: data})
}

// BroadcastAll sends an event to every connection.
func BroadcastAll(event string, data interface{}) {
	broadcast(func(client) bool { return true }, Message{Event: event, Data: data})
}

func broadcast(match func(client) bool, msg Message) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("realtime: marshal %s event: %v", msg.Event, err)
		return
	}

	var dead []*websocket.Conn
	for conn, cl := range hub.clients {
		if !match(cl) {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			dead = append(dead, conn)
		}
	}

	for _, conn := range dead {
		delete(hub.clients, conn)
		conn.Close()
	}
}
