package workers

import (
	"context"
	"time"

	"github.com/dotfed/idhost/internal/logger"
)

// IdleSweeper is the slice of the perimeter service the sweeper drives.
type IdleSweeper interface {
	SweepIdle(ctx context.Context, idleAfter time.Duration) int
}

// StateSweeper evicts abandoned inbound transfers: entries whose sender went
// silent are removed and their temp areas released, so stalled transfers
// cannot pin disk and memory forever.
type StateSweeper struct {
	perimeter IdleSweeper
	interval  time.Duration
	idleAfter time.Duration
	logger    *logger.Logger
}

func NewStateSweeper(perimeter IdleSweeper, interval, idleAfter time.Duration, log *logger.Logger) *StateSweeper {
	return &StateSweeper{
		perimeter: perimeter,
		interval:  interval,
		idleAfter: idleAfter,
		logger:    log,
	}
}

// Run implements [Worker]. The goroutine exits when ctx is cancelled.
func (s *StateSweeper) Run(ctx context.Context) {
	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				swept := s.perimeter.SweepIdle(s.logger.WithContext(ctx), s.idleAfter)
				if swept > 0 {
					s.logger.Info().
						Str("func", "*workers.StateSweeper.Run").
						Int("swept", swept).
						Msg("idle inbound transfers evicted")
				}
			}
		}
	}()
}
