package queue

import "context"

// Stream names and consumer groups shared by the scheduler and the worker.
const (
	TopicValidate   = "nodes:validate"
	GroupValidators = "validators"
)

type Message struct {
	ID      string
	Payload []byte
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}

// Consumer delivers messages until ctx is done; the channel is closed then.
type Consumer interface {
	Subscribe(ctx context.Context, topic, group, consumer string) (<-chan Message, error)
	Ack(ctx context.Context, topic, group, msgID string) error
	Close() error
}
