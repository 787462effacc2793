package frontend

import (
	"context"
	"log"
	"sync"
	"time"
)

// TickFunc does one poll. ctx is cancelled when the poller stops.
type TickFunc func(ctx context.Context) error

// Poller runs a TickFunc on a fixed interval. Ticks never overlap: the next
// one is scheduled only after the previous one returned.
type Poller struct {
	name      string
	interval  time.Duration
	immediate bool
	tick      TickFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a stopped poller. With immediate set the first tick runs
// on Start instead of one interval later.
func NewPoller(name string, interval time.Duration, immediate bool, tick TickFunc) *Poller {
	return &Poller{name: name, interval: interval, immediate: immediate, tick: tick}
}

// Start begins polling. Starting a running poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, p.done)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	delay := p.interval
	if p.immediate {
		delay = 0
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := p.tick(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[POLL] %s: %v", p.name, err)
		}
		timer.Reset(p.interval)
	}
}

// Stop cancels the poller without waiting for an in-flight tick. Use Done to
// wait for the loop to exit. Stop is idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
}

// Done is closed once the loop of the last Start has exited
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return p.done
}

// Running reports whether the poller was started and not stopped
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// SeriesTick fetches s and records it in the buffer store holds for s when
// the tick is created. Results landing after ctx is cancelled, or after that
// buffer was removed or replaced, are discarded.
func SeriesTick(s Series, backend TelemetryBackend, store *HistoryStore) TickFunc {
	gen, _ := store.Generation(s)
	return func(ctx context.Context) error {
		sample, err := s.Fetch(ctx, backend)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		s.RecordAt(store, gen, sample)
		return nil
	}
}
