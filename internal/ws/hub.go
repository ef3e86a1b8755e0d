package ws

import (
	"sync"
)

// Hub keeps the set of live connections per room code. Membership accounting
// lives in the registry; the hub only knows who to fan out to.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewHub() *Hub { return &Hub{rooms: make(map[string]*room)} }

// Broadcast delivers msg to every connection attached to the room.
// Satisfies chat.Fanout.
func (h *Hub) Broadcast(code string, msg []byte) {
	h.mu.RLock()
	r := h.rooms[code]
	h.mu.RUnlock()
	if r != nil {
		r.broadcast(msg)
	}
}

func (h *Hub) Join(code string, c *clientConn) {
	h.mu.Lock()
	r, ok := h.rooms[code]
	if !ok {
		r = newRoom()
		h.rooms[code] = r
	}
	h.mu.Unlock()
	r.add(c)
}

func (h *Hub) Leave(code string, c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[code]
	if !ok {
		return
	}
	r.remove(c)
	if r.len() == 0 {
		delete(h.rooms, code)
	}
}

// Conns reports how many connections are attached to a room.
func (h *Hub) Conns(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[code]; ok {
		return r.len()
	}
	return 0
}
