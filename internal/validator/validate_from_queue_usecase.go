package validator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/common/queue"
)

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

type Consumer interface {
	Subscribe(ctx context.Context, topic, group, consumer string) (<-chan queue.Message, error)
	Ack(ctx context.Context, topic, group, msgID string) error
}

type WorkerPool interface {
	Submit(ctx context.Context, job func(ctx context.Context)) error
	Wait()
}

// Candidate is a discovered node waiting for inspection.
type Candidate struct {
	URI          string
	Source       string
	DiscoveredAt time.Time
}

type ValidNode struct {
	Candidate
	Inspection
}

type NodeDeserializer interface {
	Deserialize(payload []byte) (Candidate, error)
}

type Writer interface {
	Save(ctx context.Context, n ValidNode) error
}

type ValidateFromQueueUseCase struct {
	consumer     Consumer
	deserializer NodeDeserializer
	writer       Writer
	logger       Logger
	pool         WorkerPool
	id           string
	topic        string
	group        string
}

func NewValidateFromQueueUseCase(
	consumer Consumer,
	deserializer NodeDeserializer,
	writer Writer,
	logger Logger,
	pool WorkerPool,
	consumerID string,
	topic string,
	group string,
) *ValidateFromQueueUseCase {
	if topic == "" {
		topic = queue.TopicValidate
	}
	if group == "" {
		group = queue.GroupValidators
	}
	return &ValidateFromQueueUseCase{
		consumer:     consumer,
		deserializer: deserializer,
		writer:       writer,
		logger:       logger,
		pool:         pool,
		id:           consumerID,
		topic:        topic,
		group:        group,
	}
}

// Execute consumes until the subscription channel closes, then waits for
// in-flight jobs. Every processed message is acked, valid or not.
func (uc *ValidateFromQueueUseCase) Execute(ctx context.Context) error {
	uc.logger.Info("starting validation", "consumer", uc.id, "topic", uc.topic, "group", uc.group)

	messages, err := uc.consumer.Subscribe(ctx, uc.topic, uc.group, uc.id)
	if err != nil {
		return err
	}

	var (
		processed atomic.Int64
		valid     atomic.Int64
	)

	for msg := range messages {
		err := uc.pool.Submit(ctx, func(ctx context.Context) {
			if uc.process(ctx, msg) {
				valid.Add(1)
			}
			if current := processed.Add(1); current%100 == 0 {
				uc.logger.Info("progress", "processed", current, "valid", valid.Load())
			}
		})
		if err != nil {
			uc.logger.Warn("failed to submit message", "msgID", msg.ID, "error", err)
		}
	}

	uc.pool.Wait()
	uc.logger.Info("validation stopped", "processed", processed.Load(), "valid", valid.Load())
	return nil
}

func (uc *ValidateFromQueueUseCase) process(ctx context.Context, msg queue.Message) bool {
	defer uc.ack(ctx, msg.ID)

	candidate, err := uc.deserializer.Deserialize(msg.Payload)
	if err != nil {
		uc.logger.Warn("failed to deserialize node", "error", err, "msgID", msg.ID)
		return false
	}

	inspection, err := Inspect(candidate.URI)
	if err != nil {
		uc.logger.Debug("rejected node", "source", candidate.Source, "error", err)
		return false
	}

	if err := uc.writer.Save(ctx, ValidNode{Candidate: candidate, Inspection: inspection}); err != nil {
		uc.logger.Warn("failed to save node", "address", inspection.Address, "error", err)
		return false
	}

	uc.logger.Debug("node accepted", "protocol", inspection.Protocol, "address", inspection.Address)
	return true
}

func (uc *ValidateFromQueueUseCase) ack(ctx context.Context, id string) {
	if err := uc.consumer.Ack(context.WithoutCancel(ctx), uc.topic, uc.group, id); err != nil {
		uc.logger.Warn("failed to ack message", "msgID", id, "error", err)
	}
}
