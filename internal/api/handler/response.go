package handler

import (
	"anonpair/backend/internal/apperr"
	"anonpair/backend/internal/ratelimit"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    apperr.Code `json:"code,omitempty"`
	Data    any         `json:"data,omitempty"`
}

// errorKeys maps known failures to translation keys. Order matters only for
// wrapped errors, which match the first sentinel in their chain.
var errorKeys = []struct {
	err error
	key string
}{
	{apperr.ErrMissingField, "error.missing_field"},
	{apperr.ErrSelfReference, "error.self_reference"},
	{apperr.ErrNotMember, "error.not_member"},
	{apperr.ErrEmptyMessage, "error.empty_message"},
	{apperr.ErrMessageTooLong, "error.message_too_long"},
	{apperr.ErrNotQueued, "error.not_queued"},
	{apperr.ErrSessionNotFound, "error.session_not_found"},
	{apperr.ErrAlreadyQueued, "error.already_queued"},
	{apperr.ErrChatMismatch, "error.chat_mismatch"},
	{apperr.ErrPartnerMismatch, "error.partner_mismatch"},
	{apperr.ErrPartnerMissing, "error.partner_missing"},
	{apperr.ErrEntryMissing, "error.entry_missing"},
	{apperr.ErrBanned, "error.banned"},
}

func (h *Handler) lang(c *gin.Context) string {
	return h.Localizer.Negotiate(c.GetHeader("Accept-Language"))
}

func (h *Handler) ok(c *gin.Context, key string, data any) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: h.Localizer.GetString(h.lang(c), key),
		Data:    data,
	})
}

// fail writes err with the status of its code. Storage failures are logged
// and reported without detail.
func (h *Handler) fail(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(code), Response{
		Success: false,
		Message: h.Localizer.GetString(h.lang(c), messageKey(err, code)),
		Code:    code,
	})
	if code == apperr.CodeStorage {
		log.Printf("ERROR: %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
}

func (h *Handler) badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Success: false,
		Message: h.Localizer.GetString(h.lang(c), "error.invalid_request"),
		Code:    apperr.CodeValidation,
	})
}

func (h *Handler) rateLimited(c *gin.Context, _ *ratelimit.Result) {
	h.fail(c, apperr.New(apperr.CodeRateLimited, "rate limit exceeded"))
}

func messageKey(err error, code apperr.Code) string {
	for _, k := range errorKeys {
		if errors.Is(err, k.err) {
			return k.key
		}
	}
	switch code {
	case apperr.CodeUnauthenticated:
		return "error.unauthenticated"
	case apperr.CodeRateLimited:
		return "error.rate_limited"
	case apperr.CodeValidation:
		return "error.invalid_request"
	case apperr.CodeConflict:
		return "error.conflict"
	case apperr.CodeNotFound:
		return "error.not_found"
	case apperr.CodeForbidden:
		return "error.forbidden"
	}
	return "error.internal"
}
