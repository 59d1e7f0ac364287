package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/boardbank/boardbank/internal/common/clock"
	"github.com/boardbank/boardbank/internal/common/roomcode"
	"github.com/boardbank/boardbank/internal/handlers/web"
	roomRepo "github.com/boardbank/boardbank/internal/repositories/room"
	bankService "github.com/boardbank/boardbank/internal/services/bank"
	"github.com/boardbank/boardbank/pkg/logging"
)

func main() {
	// Local development overrides; absence is fine everywhere else
	_ = godotenv.Load()

	logging.Setup()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	// Initialize the room repository
	repo, err := roomRepo.NewRedis(&roomRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		slog.Error("failed to create room repository", "error", err)
		os.Exit(1)
	}

	// Initialize the bank service
	bankSvc, err := bankService.New(&bankService.Config{
		RoomRepo:      repo,
		Clock:         clock.New(),
		CodeGenerator: roomcode.New(),
	})
	if err != nil {
		slog.Error("failed to create bank service", "error", err)
		os.Exit(1)
	}

	// Initialize the web handler
	handler, err := web.New(&web.Config{
		BankService: bankSvc,
	})
	if err != nil {
		slog.Error("failed to create web handler", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    getEnv("LISTEN_ADDR", ":8080"),
		Handler: handler.Routes(),
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}

	slog.Info("server has been shut down")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
