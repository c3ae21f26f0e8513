package collector

import (
	"context"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/common/queue"
	"github.com/samber/lo"
)

type SchedulerLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

type NodeCollector interface {
	Execute(ctx context.Context) ([]CollectedNode, []error)
}

type NodeSerializer interface {
	Serialize(n CollectedNode, at time.Time) ([]byte, error)
}

// ResultWriter persists the node list of a finished cycle.
type ResultWriter interface {
	Write(nodes []string, at time.Time) error
}

type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

type ScheduleCollectionUseCase struct {
	collector  NodeCollector
	serializer NodeSerializer
	publisher  Publisher
	writer     ResultWriter
	cleaner    Cleaner
	interval   time.Duration
	topic      string
	logger     SchedulerLogger
}

// NewScheduleCollectionUseCase wires a collection loop. writer and cleaner
// may be nil.
func NewScheduleCollectionUseCase(
	collector NodeCollector,
	serializer NodeSerializer,
	publisher Publisher,
	writer ResultWriter,
	cleaner Cleaner,
	interval time.Duration,
	logger SchedulerLogger,
	topic string,
) *ScheduleCollectionUseCase {
	if topic == "" {
		topic = queue.TopicValidate
	}
	return &ScheduleCollectionUseCase{
		collector:  collector,
		serializer: serializer,
		publisher:  publisher,
		writer:     writer,
		cleaner:    cleaner,
		interval:   interval,
		topic:      topic,
		logger:     logger,
	}
}

func (uc *ScheduleCollectionUseCase) Execute(ctx context.Context) error {
	uc.logger.Info("starting scheduler", "interval", uc.interval, "topic", uc.topic)

	uc.RunCycle(ctx)

	ticker := time.NewTicker(uc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			uc.RunCycle(ctx)
		}
	}
}

// CycleReport summarises one collection cycle.
type CycleReport struct {
	Collected int
	Published int
	Failed    int
}

func (uc *ScheduleCollectionUseCase) RunCycle(ctx context.Context) CycleReport {
	uc.logger.Info("starting collection cycle")
	at := time.Now()

	nodes, errs := uc.collector.Execute(ctx)
	if len(errs) > 0 {
		uc.logger.Warn("collection errors", "count", len(errs))
	}

	report := CycleReport{Collected: len(nodes), Failed: len(errs)}
	for _, n := range nodes {
		data, err := uc.serializer.Serialize(n, at)
		if err != nil {
			uc.logger.Warn("failed to serialize node", "error", err)
			continue
		}

		if err := uc.publisher.Publish(ctx, uc.topic, data); err != nil {
			uc.logger.Warn("failed to publish node", "error", err)
			continue
		}
		report.Published++
	}

	if uc.writer != nil && len(nodes) > 0 {
		uris := lo.Map(nodes, func(n CollectedNode, _ int) string { return n.URI })
		if err := uc.writer.Write(uris, at); err != nil {
			uc.logger.Warn("failed to write results", "error", err)
		}
	}

	if uc.cleaner != nil {
		removed, err := uc.cleaner.Cleanup(ctx)
		if err != nil {
			uc.logger.Warn("failed to prune index", "error", err)
		} else if removed > 0 {
			uc.logger.Info("pruned expired nodes", "removed", removed)
		}
	}

	uc.logger.Info("collection cycle complete",
		"collected", report.Collected,
		"published", report.Published,
		"failed_sources", report.Failed,
	)
	return report
}
