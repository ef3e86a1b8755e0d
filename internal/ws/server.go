package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Varunv003/chatroom-zkp-protocol/internal/services/chat"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 12 * time.Second
	pingPeriod      = 3 * time.Second // must be < pongWait
	maxMessageSize  = 4096
	dispatchTimeout = 1900 * time.Millisecond
)

// sessionState is the per-connection lifecycle. The transition table lives in
// registerHandlers/disconnect; handlers gate on the current state.
//
//	Anonymous → PendingProof → Member → Closed
type sessionState int

const (
	stateAnonymous sessionState = iota
	statePendingProof
	stateMember
	stateClosed
)

// ConnContext is the per-connection session: the claimed identity, the bound
// room and where the connection is in the admission flow. Only the reader
// goroutine mutates it.
type ConnContext struct {
	SessionID string
	Name      string
	Room      string
	state     sessionState
	conn      *clientConn
	Server    *WsServer
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // dev-only
}

type WsServer struct {
	hub     *Hub
	router  *Router
	chatSvc chat.IChatService
}

func NewWsServer(h *Hub, chatSvc chat.IChatService) *WsServer {
	srv := &WsServer{
		hub:     h,
		router:  NewRouter(),
		chatSvc: chatSvc,
	}
	srv.registerHandlers() // ← all WS endpoints configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	code := ginCtx.Query("code")
	name := ginCtx.Query("name")
	if code == "" || name == "" {
		ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "code and name are required"})
		return
	}

	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(maxMessageSize)

	wsConn := &clientConn{rawConn: rawConn}
	cc := &ConnContext{
		SessionID: uuid.NewString(),
		conn:      wsConn,
		Server:    s,
	}

	if s.chatSvc.RoomExists(code) {
		cc.Name = name
		cc.Room = code
		cc.state = statePendingProof
	} else {
		// The room vanished between the join ticket and the socket: park the
		// connection detached, it can never reach Member.
		cc.state = stateAnonymous
		_ = wsConn.writeJSON(map[string]any{
			"event": "rooms/vanished",
			"body":  ErrorBody{Error: chat.ErrRoomNotFound.Error()},
		})
	}

	zap.L().Debug("ws.connected",
		zap.String("session", cc.SessionID),
		zap.String("code", code),
		zap.String("name", name),
	)

	go s.reader(cc, wsConn)
	go s.pinger(wsConn)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 rooms/proof ----------------------------------------------------------
	Register(
		s.router,
		"rooms/proof",
		func(ctx context.Context, cc *ConnContext, req ProofRequest) (SnapshotBody, error) {
			if cc.state != statePendingProof {
				return SnapshotBody{}, errIgnored
			}
			if err := s.chatSvc.Admit(ctx, cc.Room, cc.Name, req.Proof); err != nil {
				// Rejection, not a hard failure: back to the entry point.
				cc.state = stateAnonymous
				return SnapshotBody{}, err
			}
			cc.state = stateMember
			s.hub.Join(cc.Room, cc.conn)
			return SnapshotBody{
				Room:     cc.Room,
				Messages: s.chatSvc.History(cc.Room),
			}, nil
		},
	)

	// 🔹 rooms/send -----------------------------------------------------------
	Register(
		s.router,
		"rooms/send",
		func(ctx context.Context, cc *ConnContext, req ChatRequest) (AckBody, error) {
			if cc.state != stateMember {
				return AckBody{}, errIgnored
			}
			s.chatSvc.Publish(ctx, cc.Room, cc.Name, req.Data)
			return AckBody{}, nil
		},
	)
}

func (s *WsServer) reader(cc *ConnContext, conn *clientConn) {
	defer s.disconnect(cc, conn)

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.rawConn.ReadMessage()
		if err != nil {
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			_ = conn.writeJSON(map[string]any{
				"event": "error",
				"body":  ErrorBody{Error: "bad_envelope"},
			})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		res, err := s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- protocol says drop silently ---------------------------
		if errors.Is(err, errIgnored) {
			continue
		}

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			_ = conn.writeJSON(map[string]any{
				"event": "error",
				"body":  ErrorBody{Error: err.Error()},
			})
			continue
		}

		// ---- success -> {"event":"<evt>-ack", "body":{...}} --------
		reply := map[string]any{"event": env.Event + "-ack"}
		if res != nil {
			reply["body"] = res
		}
		_ = conn.writeJSON(reply)
	}
}

// disconnect runs once, when the reader loop exits. Membership release is
// idempotent: the room may already be gone, the leave notice is best-effort.
func (s *WsServer) disconnect(cc *ConnContext, conn *clientConn) {
	wasMember := cc.state == stateMember
	cc.state = stateClosed

	if wasMember {
		s.hub.Leave(cc.Room, conn)
		s.chatSvc.Leave(context.Background(), cc.Room, cc.Name)
	}
	conn.close()

	zap.L().Debug("ws.disconnected",
		zap.String("session", cc.SessionID),
		zap.Bool("was_member", wasMember),
	)
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.write(websocket.PingMessage, nil); err != nil {
			conn.close()
			return
		}
	}
}
