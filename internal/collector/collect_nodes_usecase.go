package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/subscription"
)

const DefaultSourceTimeout = 45 * time.Second

type SubscriptionParser interface {
	ParseURL(ctx context.Context, url string) ([]string, error)
}

type JobPool interface {
	Submit(ctx context.Context, job func(ctx context.Context)) error
	Wait()
}

type CollectorLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// CollectedNode is an aggregated node URI and the first source that
// published it.
type CollectedNode struct {
	URI    string
	Source string
}

type CollectNodesUseCase struct {
	parser    SubscriptionParser
	pool      JobPool
	sources   []Source
	minLength int
	timeout   time.Duration
	logger    CollectorLogger
}

func NewCollectNodesUseCase(
	parser SubscriptionParser,
	pool JobPool,
	sources []Source,
	minLength int,
	logger CollectorLogger,
) *CollectNodesUseCase {
	return &CollectNodesUseCase{
		parser:    parser,
		pool:      pool,
		sources:   sources,
		minLength: minLength,
		timeout:   DefaultSourceTimeout,
		logger:    logger,
	}
}

func (uc *CollectNodesUseCase) WithSourceTimeout(d time.Duration) *CollectNodesUseCase {
	uc.timeout = d
	return uc
}

// Execute fetches every source on the pool and merges the results. A failing
// source contributes an error and no nodes.
func (uc *CollectNodesUseCase) Execute(ctx context.Context) ([]CollectedNode, []error) {
	now := time.Now()
	results := make([]subscription.SourceResult, len(uc.sources))

	var (
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for i, src := range uc.sources {
		target := src.Resolve(now)
		err := uc.pool.Submit(ctx, func(ctx context.Context) {
			timeoutCtx, cancel := context.WithTimeout(ctx, uc.timeout)
			defer cancel()

			nodes, err := uc.parser.ParseURL(timeoutCtx, target)
			if err != nil {
				uc.logger.Warn("source failed", "source", src.Name, "error", err)
				fail(fmt.Errorf("%s: %w: %w", src.Name, ErrSourceUnavailable, err))
				return
			}

			uc.logger.Debug("source collected", "source", src.Name, "nodes", len(nodes))
			results[i] = subscription.SourceResult{Source: src.Name, Nodes: nodes}
		})
		if err != nil {
			fail(fmt.Errorf("%s: %w", src.Name, err))
		}
	}

	uc.pool.Wait()

	collected := attribute(results, subscription.Aggregate(results, uc.minLength))
	uc.logger.Info("collection complete",
		"sources", len(uc.sources),
		"failed", len(errs),
		"nodes", len(collected),
	)

	return collected, errs
}

func attribute(results []subscription.SourceResult, nodes []string) []CollectedNode {
	origin := make(map[string]string)
	for _, r := range results {
		for _, n := range r.Nodes {
			if _, ok := origin[n]; !ok {
				origin[n] = r.Source
			}
		}
	}

	out := make([]CollectedNode, len(nodes))
	for i, n := range nodes {
		out[i] = CollectedNode{URI: n, Source: origin[n]}
	}
	return out
}
