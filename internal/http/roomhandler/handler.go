package roomhandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Varunv003/chatroom-zkp-protocol/internal/proof"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/services/chat"
)

type Handler struct {
	svc chat.IChatService
}

func New(svc chat.IChatService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/rooms", h.home)
	r.POST("/rooms/:code/enter", h.enter)
	r.GET("/rooms/:code", h.exists)
}

// home is the entry-point form submit: create a fresh room or validate a code
// against existing rooms, then hand back a join ticket {room, name, proof}.
// Validation failures mutate nothing.
func (h *Handler) home(ginCtx *gin.Context) {
	var body HomeBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	var (
		ticket *chat.JoinTicket
		err    error
	)
	if body.Create {
		ticket, err = h.svc.CreateRoom(ginCtx.Request.Context(), body.Name)
	} else {
		ticket, err = h.svc.JoinRoom(ginCtx.Request.Context(), body.Name, body.Code)
	}
	if err != nil {
		ginCtx.JSON(statusFor(err), &ErrorResponse{Error: err.Error()})
		return
	}

	if body.Create {
		ginCtx.JSON(http.StatusCreated, ticket)
		return
	}
	ginCtx.JSON(http.StatusOK, ticket)
}

// enter gates the room view: requires a bound {room, name} plus a proof that
// verifies against the name. On success the caller gets the room history; on
// failure it is sent back to the entry point.
func (h *Handler) enter(ginCtx *gin.Context) {
	var body EnterRoomBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}
	code := ginCtx.Param("code")

	p := proof.Proof{EncryptedIdentity: body.Proof.EncryptedIdentity}
	if err := h.svc.VerifyEntry(code, body.Name, p); err != nil {
		ginCtx.JSON(statusFor(err), &ErrorResponse{Error: err.Error()})
		return
	}

	ginCtx.JSON(http.StatusOK, gin.H{
		"code":     code,
		"messages": h.svc.History(code),
	})
}

func (h *Handler) exists(ginCtx *gin.Context) {
	code := ginCtx.Param("code")
	if !h.svc.RoomExists(code) {
		ginCtx.JSON(http.StatusNotFound, &ErrorResponse{Error: chat.ErrRoomNotFound.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, gin.H{"code": code})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chat.ErrNameRequired), errors.Is(err, chat.ErrCodeRequired):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrProofInvalid):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
