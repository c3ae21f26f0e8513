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

	"github.com/JulianoL13/app-node-engine/internal/collector"
	"github.com/JulianoL13/app-node-engine/internal/collector/file"
	collectorredis "github.com/JulianoL13/app-node-engine/internal/collector/redis"
	"github.com/JulianoL13/app-node-engine/internal/common/events"
	"github.com/JulianoL13/app-node-engine/internal/common/logs/slog"
	"github.com/JulianoL13/app-node-engine/internal/common/queue"
	queueredis "github.com/JulianoL13/app-node-engine/internal/common/queue/redis"
	"github.com/JulianoL13/app-node-engine/internal/common/workerpool"
	"github.com/JulianoL13/app-node-engine/internal/subscription"
	httpclient "github.com/JulianoL13/app-node-engine/internal/subscription/http"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const streamMaxLen = 100_000

type eventSerializer struct{}

func (s eventSerializer) Serialize(n collector.CollectedNode, at time.Time) ([]byte, error) {
	event := events.NodeDiscoveredEvent{
		URI:          n.URI,
		Source:       n.Source,
		DiscoveredAt: at,
	}
	return json.Marshal(event)
}

func main() {
	_ = godotenv.Load()

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisPass := getEnv("REDIS_PASSWORD", "")
	redisDB := getEnvInt("REDIS_DB", 0)
	collectInterval := time.Duration(getEnvInt("COLLECT_INTERVAL_MINUTES", 30)) * time.Minute
	redisTopic := getEnv("REDIS_TOPIC_VALIDATE", queue.TopicValidate)
	sourcesFile := getEnv("SOURCES_FILE", "sources.yaml")
	resultDir := getEnv("RESULT_DIR", "result")
	minNodeLength := getEnvInt("MIN_NODE_LENGTH", subscription.DefaultMinLength)
	fetchTimeout := time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 60)) * time.Second
	fetchRate := getEnvInt("FETCH_RATE_PER_SECOND", 0)
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

	sources, err := collector.LoadSources(sourcesFile, logger)
	if err != nil {
		logger.Error("failed to load sources", "error", err)
		os.Exit(1)
	}

	pool, err := workerpool.New(maxWorkers)
	if err != nil {
		logger.Error("failed to create worker pool", "error", err)
		os.Exit(1)
	}
	defer pool.Stop()

	fetcher := httpclient.New(logger, httpclient.Options{
		Timeout:       fetchTimeout,
		RatePerSecond: float64(fetchRate),
	})
	decoder := subscription.NewDecoder(
		subscription.NewConverter(),
		subscription.WithMinLength(minNodeLength),
		subscription.WithLogger(logger),
	)
	parser := subscription.NewParser(fetcher, decoder, logger)

	collectUC := collector.NewCollectNodesUseCase(parser, pool, sources, minNodeLength, logger)
	publisher := queueredis.NewStreamsClient(redisClient).WithMaxLen(streamMaxLen)

	uc := collector.NewScheduleCollectionUseCase(
		collectUC,
		eventSerializer{},
		publisher,
		file.NewWriter(resultDir),
		collectorredis.NewCleaner(redisClient, ""),
		collectInterval,
		logger,
		redisTopic,
	)

	logger.Info("starting collector", "sources", len(sources), "workers", pool.Workers())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down...")
		cancel()
	}()

	if err := uc.Execute(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
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
