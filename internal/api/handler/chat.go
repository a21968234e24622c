package handler

import (
	"github.com/gin-gonic/gin"
)

type sendRequest struct {
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

type nextRequest struct {
	ChatID      string `json:"chat_id"`
	OtherUserID string `json:"other_user_id"`
}

// SendMessage appends a message to the caller's chat.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c)
		return
	}

	msg, err := h.Hub.Send(c.Request.Context(), req.ChatID, anonID(c), req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, "chat.sent", msg)
}

// NextChat ends the caller's chat and returns both members to the queue.
func (h *Handler) NextChat(c *gin.Context) {
	var req nextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c)
		return
	}

	result, err := h.Hub.SkipToNext(c.Request.Context(), req.ChatID, anonID(c), req.OtherUserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, "chat.skipped", result)
}
