package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/common/logs/slog"
	"github.com/JulianoL13/app-node-engine/internal/node"
	nodehttp "github.com/JulianoL13/app-node-engine/internal/node/http"
	noderedis "github.com/JulianoL13/app-node-engine/internal/node/redis"
	"github.com/JulianoL13/app-node-engine/internal/subscription"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	APIPort       string
	RedisAddr     string
	RedisPass     string
	RedisDB       int
	NodeTTL       time.Duration
	MinNodeLength int
	LogLevel      string
}

func loadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		APIPort:       getEnv("API_PORT", "8080"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		NodeTTL:       time.Duration(getEnvInt("NODE_TTL_MINUTES", 30)) * time.Minute,
		MinNodeLength: getEnvInt("MIN_NODE_LENGTH", subscription.DefaultMinLength),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func main() {
	cfg := loadConfig()

	logger := slog.New(slog.ParseLevel(cfg.LogLevel))
	logger.Info("starting node-engine API", "port", cfg.APIPort)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis", "addr", cfg.RedisAddr)

	repo := noderedis.NewRepository(redisClient, "").WithTTL(cfg.NodeTTL)
	decoder := subscription.NewDecoder(
		subscription.NewConverter(),
		subscription.WithMinLength(cfg.MinNodeLength),
		subscription.WithLogger(logger),
	)

	handler := nodehttp.NewHandler(
		node.NewGetNodesUseCase(repo, logger),
		node.NewGetRandomNodeUseCase(repo, logger),
		node.NewExportNodesUseCase(repo, logger),
		repo,
		decoder,
		logger,
	)
	router := nodehttp.NewRouter(handler, logger)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	fmt.Println("server stopped")
}
