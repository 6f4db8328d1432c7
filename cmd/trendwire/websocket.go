package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 10 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsMessage is the envelope for every pushed event
type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time string      `json:"time"`
}

type wsClient struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func (c *wsClient) write(payload []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub tracks websocket clients and pushes snapshots to them
type Hub struct {
	clients map[*wsClient]bool
	mutex   sync.RWMutex
	current func() interface{}
}

// NewHub creates a hub. current supplies the data sent on connect.
func NewHub(current func() interface{}) *Hub {
	return &Hub{
		clients: make(map[*wsClient]bool),
		current: current,
	}
}

// ServeHTTP upgrades the connection, sends the init event and waits for close
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		Logger().Warning("Error upgrading to websocket: %v", err)
		return
	}
	defer conn.Close()

	client := &wsClient{conn: conn}
	h.register(client)
	defer h.unregister(client)

	var data interface{}
	if h.current != nil {
		data = h.current()
	}
	initData, err := encodeMessage(EventInit, data)
	if err != nil {
		Logger().Error("Error marshaling init data: %v", err)
		return
	}
	if err := client.write(initData); err != nil {
		Logger().Debug("Error sending init data: %v", err)
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends an event to every client, dropping the ones that fail
func (h *Hub) Broadcast(eventType string, data interface{}) {
	payload, err := encodeMessage(eventType, data)
	if err != nil {
		Logger().Error("Error marshaling websocket message: %v", err)
		return
	}

	h.mutex.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mutex.RUnlock()

	for _, c := range clients {
		if err := c.write(payload); err != nil {
			Logger().Debug("Error sending to websocket client: %v", err)
			c.conn.Close()
			h.unregister(c)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *Hub) register(c *wsClient) {
	h.mutex.Lock()
	h.clients[c] = true
	h.mutex.Unlock()
}

func (h *Hub) unregister(c *wsClient) {
	h.mutex.Lock()
	delete(h.clients, c)
	h.mutex.Unlock()
}

func encodeMessage(eventType string, data interface{}) ([]byte, error) {
	return json.Marshal(wsMessage{
		Type: eventType,
		Data: data,
		Time: time.Now().Format(time.RFC3339),
	})
}
