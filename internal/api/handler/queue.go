package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JoinQueue puts the caller in the pool as Waiting.
func (h *Handler) JoinQueue(c *gin.Context) {
	if err := h.Hub.Join(c.Request.Context(), anonID(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, "queue.joined", nil)
}

// QueueStatus returns the caller's not_queued, waiting or matched view.
func (h *Handler) QueueStatus(c *gin.Context) {
	status, err := h.Hub.ResolveStatus(c.Request.Context(), anonID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: string(status.State), Data: status})
}

// LeaveQueue removes the caller entirely. A partner, if any, is requeued.
func (h *Handler) LeaveQueue(c *gin.Context) {
	result, err := h.Hub.FullLeave(c.Request.Context(), anonID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	key := "queue.left"
	if result.WasMatched {
		key = "queue.left_chat"
	}
	h.ok(c, key, result)
}
