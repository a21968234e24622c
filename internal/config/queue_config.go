package config

import "time"

const (
	// Matching
	DefaultMatchInterval = 2 * time.Second
	DefaultHistoryLimit  = 100

	// Messages
	MaxMessageLength = 2000
	MessageTypeText  = "text"
	// MessageTypeAssistant is written by the external assistant integration.
	MessageTypeAssistant = "assistant"

	// Redis keys and channels
	UserEventChannelPrefix = "queue:user:"
	BanKeyPrefix           = "ban:"
	RateLimitKeyPrefix     = "ratelimit:"

	// Rate limiting
	DefaultJoinRateLimit  = 10
	DefaultJoinRateWindow = time.Minute

	// HTTP / auth
	DefaultHTTPAddr        = ":8080"
	DefaultTokenTTL        = 72 * time.Hour
	DefaultShutdownTimeout = 30 * time.Second
	TokenIssuer            = "anonpair-service"
)
