package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Varunv003/chatroom-zkp-protocol/internal/archive"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/proof"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/registry"
)

// Form-level validation errors, surfaced to the user verbatim.
var (
	ErrNameRequired = errors.New("Please enter a name.")
	ErrCodeRequired = errors.New("Please enter a room code.")
	ErrRoomNotFound = errors.New("Room does not exist.")

	// ErrProofInvalid deliberately does not say which check failed.
	ErrProofInvalid = errors.New("identity proof rejected")
)

// JoinTicket binds a validated {room, name} pair to a freshly issued proof.
// The client presents the proof back over the socket to become a member.
type JoinTicket struct {
	Room  string      `json:"room"`
	Name  string      `json:"name"`
	Proof proof.Proof `json:"proof"`
}

// Fanout delivers a payload to every connection attached to a room.
// Implemented by ws.Hub.
type Fanout interface {
	Broadcast(room string, msg []byte)
}

type IChatService interface {
	CreateRoom(ctx context.Context, name string) (*JoinTicket, error)
	JoinRoom(ctx context.Context, name, code string) (*JoinTicket, error)
	Admit(ctx context.Context, code, name string, p proof.Proof) error
	VerifyEntry(code, name string, p proof.Proof) error
	Publish(ctx context.Context, code, name, body string)
	Leave(ctx context.Context, code, name string)
	History(code string) []registry.Message
	RoomExists(code string) bool
}

type chatService struct {
	reg      *registry.Registry
	proofSvc *proof.Service
	fanout   Fanout
	archiver *archive.Archiver // nil when archiving is disabled
}

func NewChatService(reg *registry.Registry, proofSvc *proof.Service, fanout Fanout, archiver *archive.Archiver) IChatService {
	return &chatService{
		reg:      reg,
		proofSvc: proofSvc,
		fanout:   fanout,
		archiver: archiver,
	}
}

// CreateRoom allocates a fresh room and issues a proof for name. Any code the
// caller supplied alongside the create intent is ignored.
func (svc *chatService) CreateRoom(ctx context.Context, name string) (*JoinTicket, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	code := svc.reg.CreateRoom()
	p, err := svc.proofSvc.GenerateProof(name)
	if err != nil {
		return nil, err
	}
	zap.L().Info("room_created", zap.String("code", code))
	return &JoinTicket{Room: code, Name: name, Proof: p}, nil
}

// JoinRoom validates the {name, code} pair against existing rooms and issues
// a proof. Mutates nothing.
func (svc *chatService) JoinRoom(ctx context.Context, name, code string) (*JoinTicket, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if code == "" {
		return nil, ErrCodeRequired
	}
	if !svc.reg.RoomExists(code) {
		return nil, ErrRoomNotFound
	}
	p, err := svc.proofSvc.GenerateProof(name)
	if err != nil {
		return nil, err
	}
	return &JoinTicket{Room: code, Name: name, Proof: p}, nil
}

// Admit verifies the proof against the claimed name and, on success, counts
// the connection into the room and announces it.
func (svc *chatService) Admit(ctx context.Context, code, name string, p proof.Proof) error {
	if !svc.reg.RoomExists(code) {
		return ErrRoomNotFound
	}
	if !svc.proofSvc.VerifyProof(p, name) {
		return ErrProofInvalid
	}
	svc.reg.IncrementMembers(code)
	svc.notice(code, name+" has entered the room")
	zap.L().Info("member_joined", zap.String("code", code), zap.String("name", name))
	return nil
}

// VerifyEntry gates the room view: same checks as Admit but without touching
// membership, for a participant (re)loading an already-joined room.
func (svc *chatService) VerifyEntry(code, name string, p proof.Proof) error {
	if !svc.reg.RoomExists(code) {
		return ErrRoomNotFound
	}
	if !svc.proofSvc.VerifyProof(p, name) {
		return ErrProofInvalid
	}
	return nil
}

// Publish fans a chat message out to the room and appends it to history.
// A vanished room is a benign race: the whole call becomes a no-op.
func (svc *chatService) Publish(ctx context.Context, code, name, body string) {
	if !svc.reg.RoomExists(code) {
		return
	}
	content := registry.Message{Name: name, Message: body}
	payload, err := json.Marshal(map[string]any{
		"event": "rooms/message",
		"body":  content,
	})
	if err != nil {
		zap.L().Warn("publish.marshal", zap.Error(err))
		return
	}
	svc.fanout.Broadcast(code, payload)
	svc.reg.AppendMessage(code, content)

	if svc.archiver != nil {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := svc.archiver.Append(actx, code, name, body); err != nil {
			zap.L().Warn("publish.archive", zap.Error(err))
		}
	}
	zap.L().Debug("message_published", zap.String("code", code), zap.String("name", name))
}

// Leave releases the member slot and announces the departure. If the room is
// already gone the decrement is a no-op and the notice goes to whatever
// connection state remains.
func (svc *chatService) Leave(ctx context.Context, code, name string) {
	svc.reg.DecrementMembers(code)
	svc.notice(code, name+" has left the room")
	zap.L().Info("member_left", zap.String("code", code), zap.String("name", name))
}

func (svc *chatService) History(code string) []registry.Message {
	return svc.reg.History(code)
}

func (svc *chatService) RoomExists(code string) bool {
	return svc.reg.RoomExists(code)
}

// notice broadcasts a system line. Notices are not part of room history.
func (svc *chatService) notice(code, text string) {
	payload, err := json.Marshal(map[string]any{
		"event": "rooms/notice",
		"body":  map[string]string{"message": text},
	})
	if err != nil {
		return
	}
	svc.fanout.Broadcast(code, payload)
}
