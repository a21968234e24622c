package handler

import (
	"anonpair/backend/internal/chathub"
	"anonpair/backend/internal/config"
	"anonpair/backend/internal/localization"
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/ratelimit"
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// QueueService is the part of the queue engine the HTTP layer calls.
type QueueService interface {
	Join(ctx context.Context, userID string) error
	ResolveStatus(ctx context.Context, userID string) (*chathub.Status, error)
	Send(ctx context.Context, chatID, userID, content string) (*models.ChatMessage, error)
	SkipToNext(ctx context.Context, chatID, callerID, otherUserID string) (*chathub.LeaveResult, error)
	FullLeave(ctx context.Context, userID string) (*chathub.LeaveResult, error)
	Subscribe(ctx context.Context, userID string) (<-chan models.QueueEvent, error)
	RegisterUser(ctx context.Context, user *models.User) error
	Ping(ctx context.Context) error
}

// Handler містить посилання на ChatHub
type Handler struct {
	Hub       QueueService
	Tokens    *TokenManager
	Localizer *localization.Localizer

	// Limiter guards /queue/join. A nil Limiter disables the check.
	Limiter    *ratelimit.Limiter
	JoinLimit  int
	JoinWindow time.Duration
}

func NewHandler(hub QueueService, tokens *TokenManager, loc *localization.Localizer, limiter *ratelimit.Limiter, cfg *config.Config) *Handler {
	return &Handler{
		Hub:        hub,
		Tokens:     tokens,
		Localizer:  loc,
		Limiter:    limiter,
		JoinLimit:  cfg.JoinRateLimit,
		JoinWindow: cfg.JoinRateWindow,
	}
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/anonid", h.GetAnonID)

	authed := r.Group("/", h.RequireAnon())
	authed.POST("/queue/join", h.joinLimit(), h.JoinQueue)
	authed.GET("/queue/status", h.QueueStatus)
	authed.POST("/queue/leave", h.LeaveQueue)
	authed.POST("/chat/send", h.SendMessage)
	authed.POST("/chat/next", h.NextChat)
	authed.GET("/ws", h.ServeWebSocket)
}

func (h *Handler) joinLimit() gin.HandlerFunc {
	if h.Limiter == nil || h.JoinLimit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return ratelimit.Middleware(h.Limiter, "join", h.JoinLimit, h.JoinWindow, anonID, h.rateLimited)
}
