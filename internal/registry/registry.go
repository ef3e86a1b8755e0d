// Package registry is the in-memory directory of live rooms. It is the single
// owner of the room map, member counts and message history; everything else
// holds a handle and goes through its methods.
package registry

import (
	"crypto/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Message is one chat entry in a room's history.
type Message struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type room struct {
	members   int
	messages  []Message
	createdAt time.Time
	joined    bool // true once anybody has ever been a member
}

type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*room
	codeLen int
	now     func() time.Time // swappable in tests
}

func New(codeLen int) *Registry {
	return &Registry{
		rooms:   make(map[string]*room),
		codeLen: codeLen,
		now:     time.Now,
	}
}

// CreateRoom allocates a unique code and inserts an empty room under it.
// The check-then-insert runs under the registry lock so two concurrent
// creates can never claim the same code.
func (r *Registry) CreateRoom() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.generateUniqueCode()
	r.rooms[code] = &room{createdAt: r.now()}
	return code
}

// generateUniqueCode draws uniform uppercase letters and retries on
// collision. The unbounded loop is intentional: codes must look random, and
// at 26^4 the retry probability is negligible for realistic room counts.
// Caller must hold r.mu.
func (r *Registry) generateUniqueCode() string {
	buf := make([]byte, r.codeLen)
	for {
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand never fails on supported platforms
			panic(err)
		}
		code := make([]byte, r.codeLen)
		for i, b := range buf {
			code[i] = 'A' + b%26
		}
		if _, taken := r.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}

func (r *Registry) RoomExists(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[code]
	return ok
}

// IncrementMembers records a successful join. Unknown code is a no-op: a
// join can legitimately race the room's deletion.
func (r *Registry) IncrementMembers(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[code]
	if !ok {
		return
	}
	rm.members++
	rm.joined = true
}

// DecrementMembers records a disconnect and destroys the room the instant the
// count reaches zero, freeing the code for reuse. Unknown code is a no-op.
func (r *Registry) DecrementMembers(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[code]
	if !ok {
		return
	}
	rm.members--
	if rm.members <= 0 {
		delete(r.rooms, code)
		zap.L().Debug("room_destroyed", zap.String("code", code))
	}
}

// AppendMessage appends to the room's history. Appends for one room are
// serialized by the registry lock, so history order is well-defined. No-op
// if the room vanished.
func (r *Registry) AppendMessage(code string, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[code]
	if !ok {
		return
	}
	rm.messages = append(rm.messages, msg)
}

// History returns a copy of the room's message sequence, empty for unknown
// codes.
func (r *Registry) History(code string) []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[code]
	if !ok {
		return nil
	}
	out := make([]Message, len(rm.messages))
	copy(out, rm.messages)
	return out
}

// MemberCount reports the current member count, 0 for unknown codes.
func (r *Registry) MemberCount(code string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rm, ok := r.rooms[code]; ok {
		return rm.members
	}
	return 0
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// ReapIdle removes rooms that were created but never joined and have been
// sitting empty longer than maxAge. Rooms that ever had a member are
// destroyed by DecrementMembers instead. Returns the number reaped.
func (r *Registry) ReapIdle(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxAge)
	n := 0
	for code, rm := range r.rooms {
		if !rm.joined && rm.members == 0 && rm.createdAt.Before(cutoff) {
			delete(r.rooms, code)
			n++
		}
	}
	return n
}
