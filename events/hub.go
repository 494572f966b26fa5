package events

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/commerce-admin/models"
)

// Event types pushed to connected dashboard clients
const (
	EventOrderUpdate   = "order_update"
	EventQueueUpdate   = "queue_update"
	EventTaskUpdate    = "task_update"
	EventReturnUpdate  = "return_update"
	EventShipment      = "shipment_created"
	EventNotification  = "notification_requested"
	EventBulkCompleted = "bulk_completed"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds all dashboard websocket clients and fans events out to them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades a dashboard client connection and registers it until
// it disconnects. Clients only listen; inbound frames are discarded.
func Handler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	role := c.DefaultQuery("role", "staff")
	RegisterClient(conn, role)

	go func() {
		defer UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// RegisterClient adds a connection to the set with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient releases a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastOrderUpdate pushes a changed order to all clients.
func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{Event: EventOrderUpdate, Data: order})
}

// BroadcastQueueUpdate pushes the new queue entry set.
func BroadcastQueueUpdate(entries []models.QueueEntry) {
	broadcast(Message{Event: EventQueueUpdate, Data: entries})
}

// BroadcastTaskUpdate pushes a fulfillment task change.
func BroadcastTaskUpdate(task models.FulfillmentTask) {
	broadcast(Message{Event: EventTaskUpdate, Data: task})
}

// BroadcastReturnUpdate pushes an RMA change.
func BroadcastReturnUpdate(rma models.ReturnRequest) {
	broadcast(Message{Event: EventReturnUpdate, Data: rma})
}

// BroadcastShipment pushes a completed shipment record.
func BroadcastShipment(shipment models.Shipment) {
	broadcast(Message{Event: EventShipment, Data: shipment})
}

// BroadcastNotification pushes a recorded dispatch request.
func BroadcastNotification(notif models.Notification) {
	broadcast(Message{Event: EventNotification, Data: notif})
}

// BroadcastMessage sends an arbitrary event.
func BroadcastMessage(msg Message) {
	broadcast(msg)
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
