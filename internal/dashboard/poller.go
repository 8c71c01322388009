package dashboard

import (
	"context"
	"time"

	"github.com/osalazarm/alertview/internal/alertstore"
	"github.com/osalazarm/alertview/internal/logger"
)

// Poller keeps the dashboard cache warm by refreshing each period on a
// fixed interval. It stops as soon as its context is cancelled so a torn
// down consumer never leaves a goroutine polling stale state.
type Poller struct {
	service  *Service
	interval time.Duration
	periods  []alertstore.Period
	log      logger.Logger
	done     chan struct{}
}

// NewPoller creates a poller refreshing all periods at the given interval.
// A non-positive interval falls back to one minute.
func NewPoller(service *Service, interval time.Duration, log logger.Logger) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		service:  service,
		interval: interval,
		periods:  []alertstore.Period{alertstore.PeriodDaily, alertstore.PeriodWeekly, alertstore.PeriodMonthly},
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start launches the polling goroutine. Cancel ctx to stop it.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// Done is closed once the polling goroutine has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refreshAll(ctx)
	for {
		select {
		case <-ticker.C:
			p.refreshAll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) refreshAll(ctx context.Context) {
	for _, period := range p.periods {
		if ctx.Err() != nil {
			return
		}
		if err := p.service.Refresh(ctx, period); err != nil {
			p.log.Warn("dashboard refresh failed",
				logger.String("period", string(period)),
				logger.Error(err))
		}
	}
}
