package hub

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	name   string
	logger *slog.Logger

	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client

	// mu guards clients and retained for readers outside Run.
	mu       sync.RWMutex
	retained map[string]Message

	done chan struct{}
}

// New creates a Hub. A nil logger uses slog.Default.
func New(name string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		name:       name,
		logger:     logger.With("component", "hub."+name),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		retained:   make(map[string]Message),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns when ctx is done, closing every
// client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			replay := h.retainedLocked()
			h.mu.Unlock()
			for _, msg := range replay {
				select {
				case client.send <- msg:
				default:
				}
			}
			h.logger.Info("client connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			if message.retainKey != "" {
				h.retained[message.retainKey] = message
			}
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client: drop it rather than block everyone.
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("dropped slow client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Done is closed after Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Broadcast queues msg for all clients. It never blocks.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast channel full, dropping message")
	}
}

// Publish encodes payload as an event and broadcasts it.
func (h *Hub) Publish(eventType string, payload any) error {
	msg, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// BroadcastBinary broadcasts raw bytes, such as a preview frame.
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(NewBinaryMessage(data))
}

// Retained returns the latest message of each retained event type.
func (h *Hub) Retained() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.retainedLocked()
}

func (h *Hub) retainedLocked() []Message {
	keys := make([]string, 0, len(h.retained))
	for k := range h.retained {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Message, 0, len(keys))
	for _, k := range keys {
		out = append(out, h.retained[k])
	}
	return out
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
