package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

type MetricsClient struct {
	hub  *MetricsHub
	conn *websocket.Conn
	send chan []byte
}

type MetricsHub struct {
	mu        sync.Mutex
	clients   map[*MetricsClient]struct{}
	broadcast chan MetricsSnapshot
}

func NewMetricsHub() *MetricsHub {
	return &MetricsHub{
		clients:   make(map[*MetricsClient]struct{}),
		broadcast: make(chan MetricsSnapshot, 32),
	}
}

func (h *MetricsHub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcast:
			h.mu.Lock()
			if len(h.clients) == 0 {
				h.mu.Unlock()
				continue
			}
			for client := range h.clients {
				client.sendJSON(wsMessage{Type: "metrics", Payload: mustMarshal(payload)})
			}
			h.mu.Unlock()
		}
	}
}

func (h *MetricsHub) Publish(payload MetricsSnapshot) {
	select {
	case h.broadcast <- payload:
	default:
	}
}

func (h *MetricsHub) Register(c *MetricsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *MetricsHub) Unregister(c *MetricsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *MetricsHub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *MetricsClient) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func serveMetricsWS(hub *MetricsHub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &MetricsClient{hub: hub, conn: conn, send: make(chan []byte, 16)}
	hub.Register(client)

	client.sendJSON(wsMessage{Type: "metrics", Payload: mustMarshal(controller.Metrics())})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	readWSUntilClose(conn)
	hub.Unregister(client)
}
