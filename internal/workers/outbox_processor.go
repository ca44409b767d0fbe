package workers

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dotfed/idhost/internal/logger"
)

// OutboxBatcher is the slice of the transit service the processor drives.
type OutboxBatcher interface {
	ProcessOutboxBatch(ctx context.Context) error
}

// OutboxProcessor drains the durable outbox on a ticker. A cycle that is
// still running when the next tick fires makes the tick a no-op, so a slow
// recipient never stacks concurrent cycles.
type OutboxProcessor struct {
	transit  OutboxBatcher
	interval time.Duration
	logger   *logger.Logger

	// running is set while a processing cycle is in flight.
	running atomic.Bool

	// kick wakes the processor outside its ticker, e.g. when a remote host
	// stokes the outbox.
	kick chan struct{}
}

// NewOutboxProcessor builds an idle processor. It starts ticking when Run
// is called.
func NewOutboxProcessor(transit OutboxBatcher, interval time.Duration, log *logger.Logger) *OutboxProcessor {
	return &OutboxProcessor{
		transit:  transit,
		interval: interval,
		logger:   log,
		kick:     make(chan struct{}, 1),
	}
}

// Run implements [Worker]. The goroutine exits when ctx is cancelled.
func (p *OutboxProcessor) Run(ctx context.Context) {
	go func() {
		t := time.NewTicker(p.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				p.cycle(ctx)
			case <-p.kick:
				p.cycle(ctx)
			}
		}
	}()
}

// Stoke requests an immediate processing cycle. Non-blocking; a stoke while
// one is already pending coalesces with it.
func (p *OutboxProcessor) Stoke() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *OutboxProcessor) cycle(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		p.logger.Debug().
			Str("func", "*workers.OutboxProcessor.cycle").
			Msg("previous outbox cycle still running, tick skipped")
		return
	}
	defer p.running.Store(false)

	ctx = p.logger.WithContext(ctx)
	if err := p.transit.ProcessOutboxBatch(ctx); err != nil {
		p.logger.Error().Err(err).
			Str("func", "*workers.OutboxProcessor.cycle").
			Msg("outbox processing cycle failed")
	}
}
