package main

import (
	"anonpair/backend/internal/api/handler"
	"anonpair/backend/internal/chathub"
	"anonpair/backend/internal/config"
	"anonpair/backend/internal/localization"
	"anonpair/backend/internal/ratelimit"
	"anonpair/backend/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting AnonPair Backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 1. Ініціалізація залежностей
	s, err := storage.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	loc, err := localization.Default()
	if err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}

	// 2. Черга та Matcher
	hub := chathub.NewManagerService(s, cfg.HistoryLimit)
	matcher := chathub.NewMatcherService(s, cfg.MatchInterval)
	if err := matcher.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start matcher: %v", err)
	}

	// 3. Налаштування Gin та роутингу
	r := gin.Default()
	tokens := handler.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	limiter := ratelimit.NewLimiter(s.Redis, config.RateLimitKeyPrefix)
	handler.NewHandler(hub, tokens, loc, limiter, cfg).Routes(r)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
		// No WriteTimeout: /ws connections are long-lived.
	}

	go func() {
		log.Printf("INFO: HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
			"matcher": func(ctx context.Context) error {
				return matcher.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	if err := s.Close(); err != nil {
		log.Printf("WARN: Failed to close storage: %v", err)
	}
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
