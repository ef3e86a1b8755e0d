package ws

import (
	"encoding/json"

	"github.com/Varunv003/chatroom-zkp-protocol/internal/proof"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/registry"
)

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "rooms/send"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// ──────────────────────────── Request / Response DTOs ─────────────────────────

// ProofRequest is the body for "rooms/proof": the ticket proof presented back
// to complete admission.
type ProofRequest struct {
	Proof proof.Proof `json:"proof"`
}

// ChatRequest is the body for "rooms/send".
type ChatRequest struct {
	Data string `json:"data"`
}

// SnapshotBody is the history snapshot pushed to a freshly admitted member.
type SnapshotBody struct {
	Room     string             `json:"room"`
	Messages []registry.Message `json:"messages"`
}

// Empty ACK body.
type AckBody struct{}

// ErrorBody is returned for failures.
type ErrorBody struct {
	Error string `json:"error"`
}
