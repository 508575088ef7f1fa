package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// suggestPayload streams the advised move to the board overlay. Active
// is false outside the player's turn so the overlay can clear itself.
type suggestPayload struct {
	Active     bool           `json:"active"`
	Suggestion *suggestionDTO `json:"suggestion,omitempty"`
}

type SuggestClient struct {
	hub  *SuggestHub
	conn *websocket.Conn
	send chan []byte
}

type SuggestHub struct {
	mu        sync.Mutex
	clients   map[*SuggestClient]struct{}
	broadcast chan suggestPayload
}

func NewSuggestHub() *SuggestHub {
	return &SuggestHub{
		clients:   make(map[*SuggestClient]struct{}),
		broadcast: make(chan suggestPayload, 32),
	}
}

func (h *SuggestHub) Run(done <-chan struct{}) {
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
				client.sendJSON(wsMessage{Type: "suggestion", Payload: mustMarshal(payload)})
			}
			h.mu.Unlock()
		}
	}
}

func (h *SuggestHub) Register(c *SuggestClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *SuggestHub) Unregister(c *SuggestClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *SuggestHub) Publish(payload suggestPayload) {
	select {
	case h.broadcast <- payload:
	default:
	}
}

func (h *SuggestHub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *SuggestClient) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func serveSuggestWS(hub *SuggestHub, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &SuggestClient{hub: hub, conn: conn, send: make(chan []byte, 16)}
	hub.Register(client)

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	readWSUntilClose(conn)
	hub.Unregister(client)
}
