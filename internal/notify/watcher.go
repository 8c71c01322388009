package notify

import (
	"context"
	"strings"
	"time"

	"github.com/osalazarm/alertview/internal/alert"
	"github.com/osalazarm/alertview/internal/alertstore"
	"github.com/osalazarm/alertview/internal/conf"
	"github.com/osalazarm/alertview/internal/datastore/entities"
	"github.com/osalazarm/alertview/internal/errors"
	"github.com/osalazarm/alertview/internal/logger"
	"github.com/osalazarm/alertview/internal/metrics"
	"github.com/osalazarm/alertview/internal/query"
	"github.com/osalazarm/alertview/internal/review"
)

// Searcher is the slice of the alert index client the watcher needs.
type Searcher interface {
	Search(ctx context.Context, spec query.FilterSpec, page query.Pagination) (*alertstore.SearchResult, error)
}

// Watcher periodically scans the alert index for unmanaged alerts at or
// above the notification threshold, marks them for review and records a
// notification entry for the active recipients.
type Watcher struct {
	store     Searcher
	reviewSvc *review.Service
	notifSvc  *Service
	interval  time.Duration
	batchSize int
	log       logger.Logger
	metrics   *metrics.Metrics
	done      chan struct{}
}

// NewWatcher creates a watcher from settings. metrics may be nil.
func NewWatcher(store Searcher, reviewSvc *review.Service, notifSvc *Service, settings *conf.WatcherSettings, m *metrics.Metrics, log logger.Logger) *Watcher {
	interval := settings.Interval.Std()
	if interval <= 0 {
		interval = time.Minute
	}
	batch := settings.BatchSize
	if batch <= 0 {
		batch = 20
	}
	return &Watcher{
		store:     store,
		reviewSvc: reviewSvc,
		notifSvc:  notifSvc,
		interval:  interval,
		batchSize: batch,
		log:       log,
		metrics:   m,
		done:      make(chan struct{}),
	}
}

// Start runs the watch loop until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Done is closed when the watch loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("alert watcher stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep runs one pass. Individual alert failures are logged and skipped
// so a single bad record cannot stall the loop.
func (w *Watcher) sweep(ctx context.Context) {
	config, err := w.notifSvc.GetOrCreateConfig(ctx)
	if err != nil {
		w.log.Error("failed to load notification config", logger.Error(err))
		return
	}
	if !config.Enabled {
		return
	}

	spec := query.FilterSpec{RuleLevels: levelsFrom(config.AlertThreshold)}
	page := query.Pagination{Page: 1, Size: w.batchSize}
	result, err := w.store.Search(ctx, spec, page)
	if err != nil {
		w.log.Error("watcher search failed", logger.Error(err))
		w.countStoreError(err)
		return
	}

	recipients, err := w.notifSvc.ActiveRecipients(ctx)
	if err != nil {
		w.log.Error("failed to load recipients", logger.Error(err))
		return
	}

	for i := range result.Alerts {
		w.handle(ctx, result.Alerts[i], config, recipients)
	}
}

func (w *Watcher) handle(ctx context.Context, a alert.Alert, config *entities.NotificationConfig, recipients []entities.NotificationEmail) {
	if !ShouldNotify(a.Rule.Level, config) {
		w.countDecision("below_threshold")
		return
	}

	record, err := w.reviewSvc.MarkForReview(ctx, a)
	if err != nil {
		// Already under review means a previous sweep handled this alert.
		if errors.Is(err, review.ErrInvalidTransition) {
			w.countDecision("already_managed")
			return
		}
		w.log.Error("watcher failed to manage alert",
			logger.String("alert_id", a.ID),
			logger.Error(err))
		return
	}

	addresses := make([]string, 0, len(recipients))
	for _, r := range recipients {
		addresses = append(addresses, r.Address)
	}

	history := &entities.NotificationHistory{
		ManagedAlertID: record.ID,
		RuleLevel:      a.Rule.Level,
		Recipients:     strings.Join(addresses, ","),
		SentAt:         time.Now().UTC(),
	}
	if err := w.notifSvc.repo.SaveHistory(ctx, history); err != nil {
		w.log.Error("failed to record notification",
			logger.String("alert_id", a.ID),
			logger.Error(err))
		return
	}

	w.countDecision("notified")
	w.log.Info("alert auto-managed above threshold",
		logger.String("alert_id", a.ID),
		logger.Int("rule_level", a.Rule.Level),
		logger.Int("recipients", len(addresses)))
}

func (w *Watcher) countDecision(outcome string) {
	if w.metrics != nil {
		w.metrics.NotificationDecisions.WithLabelValues(outcome).Inc()
	}
}

func (w *Watcher) countStoreError(err error) {
	if w.metrics == nil {
		return
	}
	kind := "unavailable"
	if errors.Is(err, alertstore.ErrTransport) {
		kind = "transport"
	}
	w.metrics.AlertStoreErrors.WithLabelValues(kind).Inc()
}

// levelsFrom lists every rule level from threshold through the maximum,
// matching the terms filter the index expects.
func levelsFrom(threshold int) []int {
	if threshold < alert.MinRuleLevel {
		threshold = alert.MinRuleLevel
	}
	levels := make([]int, 0, alert.MaxRuleLevel-threshold+1)
	for level := threshold; level <= alert.MaxRuleLevel; level++ {
		levels = append(levels, level)
	}
	return levels
}
