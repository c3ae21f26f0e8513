package collector_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/collector"
	"github.com/JulianoL13/app-node-engine/internal/common/queue"
	"github.com/stretchr/testify/assert"
)

type mockNodeCollector struct {
	nodes []collector.CollectedNode
	errs  []error
}

func (m *mockNodeCollector) Execute(ctx context.Context) ([]collector.CollectedNode, []error) {
	return m.nodes, m.errs
}

type mockPublisher struct {
	topics    []string
	published [][]byte
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	m.topics = append(m.topics, topic)
	m.published = append(m.published, payload)
	return nil
}

type mockSerializer struct {
	err error
}

func (m *mockSerializer) Serialize(n collector.CollectedNode, at time.Time) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte(n.URI), nil
}

type mockWriter struct {
	written [][]string
	err     error
}

func (m *mockWriter) Write(nodes []string, at time.Time) error {
	m.written = append(m.written, nodes)
	return m.err
}

type mockCleaner struct {
	calls int
	err   error
}

func (m *mockCleaner) Cleanup(ctx context.Context) (int64, error) {
	m.calls++
	return 3, m.err
}

type schedulerTestLogger struct{}

func (l schedulerTestLogger) Info(msg string, args ...any) {}
func (l schedulerTestLogger) Warn(msg string, args ...any) {}

func TestScheduleCollectionUseCase_RunCycle(t *testing.T) {
	ctx := context.Background()
	logger := schedulerTestLogger{}
	collected := []collector.CollectedNode{
		{URI: nodeA, Source: "one"},
		{URI: nodeB, Source: "two"},
	}

	t.Run("publishes writes and prunes", func(t *testing.T) {
		publisher := &mockPublisher{}
		writer := &mockWriter{}
		cleaner := &mockCleaner{}

		uc := collector.NewScheduleCollectionUseCase(
			&mockNodeCollector{nodes: collected, errs: []error{errors.New("boom")}},
			&mockSerializer{}, publisher, writer, cleaner, time.Hour, logger, "",
		)
		report := uc.RunCycle(ctx)

		assert.Equal(t, collector.CycleReport{Collected: 2, Published: 2, Failed: 1}, report)
		assert.Equal(t, []string{queue.TopicValidate, queue.TopicValidate}, publisher.topics)
		assert.Equal(t, [][]string{{nodeA, nodeB}}, writer.written)
		assert.Equal(t, 1, cleaner.calls)
	})

	t.Run("nil writer and cleaner are skipped", func(t *testing.T) {
		publisher := &mockPublisher{}

		uc := collector.NewScheduleCollectionUseCase(
			&mockNodeCollector{nodes: collected}, &mockSerializer{}, publisher, nil, nil, time.Hour, logger, "custom",
		)
		report := uc.RunCycle(ctx)

		assert.Equal(t, 2, report.Published)
		assert.Equal(t, []string{"custom", "custom"}, publisher.topics)
	})

	t.Run("empty cycle writes nothing", func(t *testing.T) {
		writer := &mockWriter{}

		uc := collector.NewScheduleCollectionUseCase(
			&mockNodeCollector{}, &mockSerializer{}, &mockPublisher{}, writer, &mockCleaner{}, time.Hour, logger, "",
		)
		uc.RunCycle(ctx)

		assert.Empty(t, writer.written)
	})

	t.Run("publish and serialize errors are not fatal", func(t *testing.T) {
		failing := &mockPublisher{err: errors.New("redis unavailable")}
		uc := collector.NewScheduleCollectionUseCase(
			&mockNodeCollector{nodes: collected}, &mockSerializer{}, failing, nil, &mockCleaner{err: errors.New("x")}, time.Hour, logger, "",
		)
		assert.Zero(t, uc.RunCycle(ctx).Published)

		publisher := &mockPublisher{}
		uc = collector.NewScheduleCollectionUseCase(
			&mockNodeCollector{nodes: collected}, &mockSerializer{err: errors.New("marshal")}, publisher, nil, nil, time.Hour, logger, "",
		)
		assert.Zero(t, uc.RunCycle(ctx).Published)
		assert.Empty(t, publisher.published)
	})
}

func TestScheduleCollectionUseCase_Execute(t *testing.T) {
	publisher := &mockPublisher{}
	uc := collector.NewScheduleCollectionUseCase(
		&mockNodeCollector{nodes: []collector.CollectedNode{{URI: nodeA, Source: "one"}}},
		&mockSerializer{}, publisher, nil, nil, time.Hour, schedulerTestLogger{}, "",
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := uc.Execute(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, publisher.published, 1)
}
