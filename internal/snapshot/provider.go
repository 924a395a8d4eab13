// Package snapshot keeps the latest consistent read of the network data in
// memory. The engine only ever scores a single snapshot, so consumers grab
// the current one and never worry about a refresh landing mid-computation.
package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/redealvo/rede-cli/internal/model"
	"github.com/redealvo/rede-cli/internal/resilience"
	"github.com/redealvo/rede-cli/internal/store"
)

// Fetch loads one consistent snapshot. The three reads run concurrently and
// the evaluation list is restricted to approved records, the only ones the
// engine may consume.
func Fetch(ctx context.Context, src store.Store) (*store.Snapshot, error) {
	var (
		stores []model.Store
		evals  []model.Evaluation
		th     model.PatentThresholds
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stores, err = src.ListStores(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		evals, err = src.ListEvaluations(gctx, store.EvaluationFilter{Status: model.EvaluationApproved})
		return err
	})
	g.Go(func() error {
		var err error
		th, err = src.GetThresholds(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "snapshot: fetch")
	}

	return &store.Snapshot{
		Stores:      stores,
		Evaluations: evals,
		Thresholds:  th,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

// Provider caches the most recent snapshot and refreshes it on an interval
// or on demand. On-demand refreshes are rate limited so UI visibility
// triggers cannot stampede the database; a throttled call serves the cached
// snapshot instead.
type Provider struct {
	src     store.Store
	limiter *rate.Limiter
	retry   resilience.RetryConfig

	mu  sync.RWMutex
	cur *store.Snapshot

	subMu sync.Mutex
	subs  []chan struct{}
}

// NewProvider creates a Provider. minRefreshInterval bounds how often
// Refresh actually hits the store; zero disables throttling.
func NewProvider(src store.Store, minRefreshInterval time.Duration) *Provider {
	limit := rate.Inf
	if minRefreshInterval > 0 {
		limit = rate.Every(minRefreshInterval)
	}
	return &Provider{
		src:     src,
		limiter: rate.NewLimiter(limit, 1),
		retry:   resilience.DefaultRetryConfig(),
	}
}

// Current returns the cached snapshot, or false when none has loaded yet.
func (p *Provider) Current() (*store.Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cur, p.cur != nil
}

// Refresh loads a fresh snapshot, replaces the cache and notifies
// subscribers. A call inside the throttle window returns the cached
// snapshot without touching the store.
func (p *Provider) Refresh(ctx context.Context) (*store.Snapshot, error) {
	if !p.limiter.Allow() {
		if snap, ok := p.Current(); ok {
			return snap, nil
		}
		// Nothing cached yet; fall through and pay for the fetch.
	}

	var snap *store.Snapshot
	err := resilience.Do(ctx, p.retry, func(ctx context.Context) error {
		s, err := Fetch(ctx, p.src)
		if err != nil {
			return err
		}
		snap = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cur = snap
	p.mu.Unlock()
	p.notify()

	return snap, nil
}

// Run refreshes immediately and then on every interval tick until ctx is
// cancelled. A failed refresh keeps serving the previous snapshot.
func (p *Provider) Run(ctx context.Context, interval time.Duration) {
	log := zap.L().With(zap.String("component", "snapshot.provider"))

	if _, err := p.Refresh(ctx); err != nil {
		log.Error("snapshot: initial refresh failed", zap.Error(err))
	}

	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("snapshot: provider stopped")
			return
		case <-ticker.C:
			if _, err := p.Refresh(ctx); err != nil {
				log.Error("snapshot: refresh failed, serving stale data", zap.Error(err))
			}
		}
	}
}

// Subscribe returns a channel that receives a tick whenever a fresh
// snapshot lands. Slow subscribers miss ticks instead of blocking refresh.
func (p *Provider) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	p.subMu.Lock()
	p.subs = append(p.subs, ch)
	p.subMu.Unlock()
	return ch
}

func (p *Provider) notify() {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
