package ws

import (
	"encoding/json"

	"github.com/dawudu11/burptracker/internal"
)

type message struct {
	groupID string
	payload []byte
}

// Hub owns the per-group subscriber sets. All membership changes and
// deliveries go through its single loop, so no locking is needed and a dead
// subscriber can be dropped without touching the others.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	groups     map[string]map[*Client]bool
	logger     internal.Logger
}

func NewHub(logger internal.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 16),
		groups:     make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			clients := h.groups[c.groupID]
			if clients == nil {
				clients = make(map[*Client]bool)
				h.groups[c.groupID] = clients
			}
			clients[c] = true
			h.logger.Infof("ws: user %s subscribed to group %s (%d subscribers)", c.userID, c.groupID, len(clients))
		case c := <-h.unregister:
			h.drop(c)
		case m := <-h.broadcast:
			for c := range h.groups[m.groupID] {
				select {
				case c.send <- m.payload:
				default:
					// Subscriber can't keep up; cut it loose rather
					// than stall the group.
					h.drop(c)
				}
			}
		}
	}
}

// drop removes the client from its group and signals its pumps to shut
// down. Only the hub loop calls it, so c.done is closed exactly once. The
// send channel is never closed; the client's readPump may still be pushing
// replies into it while the pumps wind down.
func (h *Hub) drop(c *Client) {
	clients, ok := h.groups[c.groupID]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.done)
	if len(clients) == 0 {
		delete(h.groups, c.groupID)
	}
}

// BroadcastGroup serializes payload and fans it out to every connection
// subscribed to the group. Delivery is best-effort.
func (h *Hub) BroadcastGroup(groupID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Errorf("ws: failed to marshal broadcast for group %s: %v", groupID, err)
		return
	}
	h.broadcast <- message{groupID: groupID, payload: data}
}
