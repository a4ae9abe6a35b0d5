package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/streamnest/streamnest/internal/application"
	"github.com/streamnest/streamnest/internal/domain/entity"
	"github.com/streamnest/streamnest/pkg/response"
	"github.com/streamnest/streamnest/pkg/validation"
)

type ChatHandler struct {
	Svc    *application.ChatService
	Logger *logrus.Logger
}

func NewChatHandler(svc *application.ChatService, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{Svc: svc, Logger: logger}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required,uuid"`
	Body       string `json:"body" binding:"required,max=500"`
}

// Send POST /api/messages persists the message, then hands it to the chat
// queue for fan-out.
func (h *ChatHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	m, err := h.Svc.Send(c.Request.Context(), c.GetString("userID"), req.ReceiverID, req.Body)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": messageJSON(m)}, "message sent", nil)
}

// History GET /api/messages/:id?limit=n returns the conversation between the
// caller and user :id, newest first.
func (h *ChatHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	msgs, err := h.Svc.History(c.Request.Context(), c.GetString("userID"), c.Param("id"), limit)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to load messages", nil)
		return
	}
	out := make([]gin.H, 0, len(msgs))
	for i := range msgs {
		out = append(out, messageJSON(&msgs[i]))
	}
	response.Success(c, http.StatusOK, gin.H{"messages": out}, "messages", nil)
}

func messageJSON(m *entity.Message) gin.H {
	return gin.H{
		"id":          m.ID,
		"sender_id":   m.SenderID,
		"receiver_id": m.ReceiverID,
		"body":        m.Body,
		"created_at":  m.CreatedAt,
	}
}
