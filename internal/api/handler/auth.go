package handler

import (
	"anonpair/backend/internal/apperr"
	"anonpair/backend/internal/config"
	"anonpair/backend/internal/models"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

const anonIDKey = "anon_id"

var (
	ErrInvalidToken = apperr.Unauthenticated("invalid token")
	ErrExpiredToken = apperr.Unauthenticated("token has expired")
	ErrMissingToken = apperr.Unauthenticated("authorization token missing")
)

// AnonClaims carries the anonymous id a token was issued for.
type AnonClaims struct {
	AnonID string `json:"anon_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 tokens for anonymous users.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue генерує JWT з анонімним ID
func (m *TokenManager) Issue(anonID string) (string, error) {
	now := m.now()
	claims := AnonClaims{
		AnonID: anonID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.TokenIssuer,
			Subject:   anonID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate checks the signature, issuer and expiry and returns the anonymous id.
func (m *TokenManager) Validate(tokenString string) (string, error) {
	claims := &AnonClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.TokenIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !token.Valid || claims.AnonID == "" {
		return "", ErrInvalidToken
	}
	return claims.AnonID, nil
}

// RequireAnon resolves the caller from "Authorization: Bearer <token>" or,
// for WebSocket clients that cannot set headers, the token query parameter.
func (h *Handler) RequireAnon() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			h.fail(c, ErrMissingToken)
			return
		}

		id, err := h.Tokens.Validate(tokenString)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Set(anonIDKey, id)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// anonID returns the caller resolved by RequireAnon.
func anonID(c *gin.Context) string {
	return c.GetString(anonIDKey)
}

// GetAnonID створює AnonID, реєструє його в довіднику та повертає JWT
func (h *Handler) GetAnonID(c *gin.Context) {
	id := uuid.NewString()
	user := &models.User{
		ID:       id,
		Username: "anon-" + strings.ReplaceAll(id, "-", "")[:12],
	}
	if err := h.Hub.RegisterUser(c.Request.Context(), user); err != nil {
		h.fail(c, err)
		return
	}

	token, err := h.Tokens.Issue(id)
	if err != nil {
		h.fail(c, apperr.Storage("failed to create token", err))
		return
	}

	h.ok(c, "auth.issued", gin.H{"token": token, "anon_id": id, "username": user.Username})
}
