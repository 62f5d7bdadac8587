// Package ws fans live comment events out to browser subscribers. Each
// article has its own subscriber set; the hub serializes membership changes
// and broadcasts on a single goroutine.
package ws

import "sync"

// Subscriber abstracts a streaming client connection.
type Subscriber interface {
	Send(payload []byte) error
	Close()
}

// Hub manages live-feed subscriptions keyed by article id.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
}

type message struct {
	articleID string
	payload   []byte
}

type subscription struct {
	articleID string
	client    Subscriber
}

// NewHub creates a running Hub.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[sub.articleID]; !ok {
				h.clients[sub.articleID] = make(map[Subscriber]struct{})
			}
			h.clients[sub.articleID][sub.client] = struct{}{}
			h.mu.Unlock()
		case sub := <-h.unreg:
			h.mu.Lock()
			if clients, ok := h.clients[sub.articleID]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.clients, sub.articleID)
				}
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.clients[msg.articleID]; ok {
				for c := range clients {
					if err := c.Send(msg.payload); err != nil {
						c.Close()
						delete(clients, c)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, msg.articleID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a client to an article's live feed.
func (h *Hub) Register(articleID string, client Subscriber) {
	h.register <- subscription{articleID: articleID, client: client}
}

// Unregister removes a client.
func (h *Hub) Unregister(articleID string, client Subscriber) {
	h.unreg <- subscription{articleID: articleID, client: client}
}

// Broadcast sends payload to every subscriber of the article.
func (h *Hub) Broadcast(articleID string, payload []byte) {
	h.broadcast <- message{articleID: articleID, payload: payload}
}

// Subscribers reports the current subscriber count for an article.
func (h *Hub) Subscribers(articleID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[articleID])
}
