package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/common/events"
	"github.com/JulianoL13/app-node-engine/internal/common/logs/slog"
	"github.com/JulianoL13/app-node-engine/internal/common/queue"
	queueredis "github.com/JulianoL13/app-node-engine/internal/common/queue/redis"
	"github.com/JulianoL13/app-node-engine/internal/common/workerpool"
	"github.com/JulianoL13/app-node-engine/internal/node"
	noderedis "github.com/JulianoL13/app-node-engine/internal/node/redis"
	"github.com/JulianoL13/app-node-engine/internal/validator"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type eventDeserializer struct{}

func (d eventDeserializer) Deserialize(payload []byte) (validator.Candidate, error) {
	var event events.NodeDiscoveredEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return validator.Candidate{}, err
	}
	return validator.Candidate{
		URI:          event.URI,
		Source:       event.Source,
		DiscoveredAt: event.DiscoveredAt,
	}, nil
}

type writerAdapter struct {
	inner *noderedis.Repository
}

func (w *writerAdapter) Save(ctx context.Context, v validator.ValidNode) error {
	n := node.NewNode(v.URI, v.Protocol, v.Address, v.Name, v.Source)
	if !v.DiscoveredAt.IsZero() {
		n.Touch(v.DiscoveredAt)
	}
	return w.inner.Save(ctx, n)
}

func main() {
	_ = godotenv.Load()

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisPass := getEnv("REDIS_PASSWORD", "")
	redisDB := getEnvInt("REDIS_DB", 0)
	nodeTTL := time.Duration(getEnvInt("NODE_TTL_MINUTES", 30)) * time.Minute
	redisTopic := getEnv("REDIS_TOPIC_VALIDATE", queue.TopicValidate)
	consumerName := getEnv("CONSUMER_NAME", mustHostname())
	maxWorkers := getEnvInt("MAX_WORKERS", 10)

	logger := slog.NewJSON(slog.ParseLevel(getEnv("LOG_LEVEL", "info")))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPass,
		DB:       redisDB,
	})
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	pool, err := workerpool.New(maxWorkers)
	if err != nil {
		logger.Error("failed to create worker pool", "error", err)
		os.Exit(1)
	}
	defer pool.Stop()

	consumer := queueredis.NewStreamsClient(redisClient)
	writer := &writerAdapter{inner: noderedis.NewRepository(redisClient, "").WithTTL(nodeTTL)}

	uc := validator.NewValidateFromQueueUseCase(
		consumer,
		eventDeserializer{},
		writer,
		logger,
		pool,
		consumerName,
		redisTopic,
		queue.GroupValidators,
	)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down...")
		cancel()
	}()

	if err := uc.Execute(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("usecase error", "error", err)
		os.Exit(1)
	}
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

func mustHostname() string {
	h, _ := os.Hostname()
	return h
}
