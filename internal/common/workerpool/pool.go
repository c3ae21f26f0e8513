package workerpool

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

type Pool struct {
	pool *ants.Pool
	wg   sync.WaitGroup
}

func New(size int) (*Pool, error) {
	if size <= 0 {
		size = 1
	}
	p, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Pool{pool: p}, nil
}

// Submit queues job, blocking while every worker is busy. A job whose
// context is already done when a worker picks it up is skipped.
func (p *Pool) Submit(ctx context.Context, job func(ctx context.Context)) error {
	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		if ctx.Err() != nil {
			return
		}
		job(ctx)
	})
	if err != nil {
		p.wg.Done()
		return fmt.Errorf("submit job: %w", err)
	}
	return nil
}

// Wait blocks until every submitted job has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) Stop() {
	p.pool.Release()
}

func (p *Pool) Workers() int {
	return p.pool.Cap()
}

func (p *Pool) Running() int {
	return p.pool.Running()
}
