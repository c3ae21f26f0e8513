package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/common/queue"
	"github.com/redis/go-redis/v9"
)

const readBlock = 2 * time.Second

type StreamsClient struct {
	client *redis.Client
	maxLen int64
}

func NewStreamsClient(client *redis.Client) *StreamsClient {
	return &StreamsClient{client: client}
}

// WithMaxLen caps each stream approximately at n entries on publish.
func (s *StreamsClient) WithMaxLen(n int64) *StreamsClient {
	s.maxLen = n
	return s
}

func (s *StreamsClient) Publish(ctx context.Context, topic string, payload []byte) error {
	args := &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			"payload": payload,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("xadd %s: %w", topic, err)
	}
	return nil
}

// Subscribe replays entries still pending for consumer before reading new
// ones, so a restarted consumer picks up what it never acked.
func (s *StreamsClient) Subscribe(ctx context.Context, topic, group, consumer string) (<-chan queue.Message, error) {
	err := s.client.XGroupCreateMkStream(ctx, topic, group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create group %s: %w", group, err)
	}

	messages := make(chan queue.Message)

	go func() {
		defer close(messages)

		pending := true
		lastID := "0"
		for {
			if ctx.Err() != nil {
				return
			}

			result, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumer,
				Streams:  []string{topic, lastID},
				Count:    10,
				Block:    readBlock,
			}).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !errors.Is(err, redis.Nil) {
					time.Sleep(100 * time.Millisecond)
				}
				continue
			}

			delivered := 0
			for _, stream := range result {
				for _, msg := range stream.Messages {
					delivered++
					if pending {
						lastID = msg.ID
					}
					payload, ok := msg.Values["payload"].(string)
					if !ok {
						continue
					}

					select {
					case <-ctx.Done():
						return
					case messages <- queue.Message{ID: msg.ID, Payload: []byte(payload)}:
					}
				}
			}

			// pending backlog drained, switch to new entries
			if pending && delivered == 0 {
				pending = false
				lastID = ">"
			}
		}
	}()

	return messages, nil
}

func (s *StreamsClient) Ack(ctx context.Context, topic, group, msgID string) error {
	if _, err := s.client.XAck(ctx, topic, group, msgID).Result(); err != nil {
		return fmt.Errorf("xack %s: %w", msgID, err)
	}
	return nil
}

func (s *StreamsClient) Close() error {
	return nil
}

var (
	_ queue.Publisher = (*StreamsClient)(nil)
	_ queue.Consumer  = (*StreamsClient)(nil)
)
