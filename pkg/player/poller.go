package player

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Poller refetches data on an interval until its context is cancelled.
// Every fetch carries a sequence number; a response is applied only when it
// is newer than the last one applied, so a slow fetch never overwrites the
// result of a later one.
type Poller[T any] struct {
	interval time.Duration
	fetch    func(ctx context.Context) (T, error)
	apply    func(T)

	mu      sync.Mutex
	issued  uint64
	applied uint64
	wg      sync.WaitGroup
}

func NewPoller[T any](interval time.Duration, fetch func(ctx context.Context) (T, error), apply func(T)) *Poller[T] {
	return &Poller[T]{interval: interval, fetch: fetch, apply: apply}
}

// Run polls immediately and then on every tick. Fetches may overlap. It
// returns ctx.Err() once cancelled and all in-flight fetches are done.
func (p *Poller[T]) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.spawn(ctx)
	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			p.spawn(ctx)
		}
	}
}

func (p *Poller[T]) spawn(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.Poll(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("poll failed", "error", err)
		}
	}()
}

// Poll runs one stamped fetch. It reports whether the result was applied.
func (p *Poller[T]) Poll(ctx context.Context) (bool, error) {
	p.mu.Lock()
	p.issued++
	seq := p.issued
	p.mu.Unlock()

	v, err := p.fetch(ctx)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil || seq <= p.applied {
		return false, nil
	}
	p.applied = seq
	p.apply(v)
	return true, nil
}
