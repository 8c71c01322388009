// Package review implements the alert review lifecycle and its note
// ledger on top of the review store.
//
// The lifecycle is Unmanaged → Open → Closed. Closing is final: there is
// no reopen transition, so re-triaging a closed alert requires deleting
// the record and marking the alert for review again. This keeps the audit
// trail unambiguous.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/osalazarm/alertview/internal/alert"
	"github.com/osalazarm/alertview/internal/datastore/entities"
	"github.com/osalazarm/alertview/internal/datastore/repository"
	"github.com/osalazarm/alertview/internal/errors"
	"github.com/osalazarm/alertview/internal/logger"
	"github.com/osalazarm/alertview/internal/metrics"
)

// Lifecycle failure modes.
var (
	// ErrInvalidTransition is returned when an operation is not legal in
	// the record's current state.
	ErrInvalidTransition = errors.New("invalid review state transition")
)

// Service applies review lifecycle transitions. Every transition is
// atomic: on failure the caller observes the pre-transition state.
type Service struct {
	repo    repository.ReviewRepository
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewService creates a review lifecycle service. metrics may be nil.
func NewService(repo repository.ReviewRepository, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{repo: repo, log: log, metrics: m}
}

// MarkForReview transitions an alert from Unmanaged to Open, capturing a
// full copy of the alert at transition time. The index record may be
// mutated or rotated independently, so nothing is held by reference.
// Returns ErrInvalidTransition when the alert is already under management.
func (s *Service) MarkForReview(ctx context.Context, a alert.Alert) (*entities.ManagedAlert, error) {
	if a.Status != alert.StatusUnmanaged {
		return nil, fmt.Errorf("%w: alert %s is already %s", ErrInvalidTransition, a.ID, a.Status)
	}

	groups, err := json.Marshal(a.Rule.Groups)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule groups: %w", err)
	}

	record := &entities.ManagedAlert{
		AlertID:         a.ID,
		State:           string(alert.StatusOpen),
		Timestamp:       a.Timestamp,
		AgentID:         a.Agent.ID,
		AgentName:       a.Agent.Name,
		AgentIP:         a.Agent.IP,
		RuleID:          a.Rule.ID,
		RuleLevel:       a.Rule.Level,
		RuleDescription: a.Rule.Description,
		RuleGroups:      string(groups),
		AlertData:       string(a.Payload),
	}

	if err := s.repo.CreateManagedAlert(ctx, record); err != nil {
		if errors.Is(err, repository.ErrAlertAlreadyManaged) {
			return nil, fmt.Errorf("%w: alert %s is already under review", ErrInvalidTransition, a.ID)
		}
		return nil, err
	}

	s.countTransition("mark_for_review")
	s.log.Info("alert marked for review",
		logger.String("alert_id", a.ID),
		logger.Uint64("managed_id", uint64(record.ID)),
		logger.Int("rule_level", a.Rule.Level))
	return record, nil
}

// Close transitions a managed alert from Open to Closed and stamps the
// closing time. Closing an already closed record is ErrInvalidTransition.
func (s *Service) Close(ctx context.Context, id uint) (*entities.ManagedAlert, error) {
	now := time.Now().UTC()
	err := s.repo.UpdateState(ctx, id, string(alert.StatusOpen), string(alert.StatusClosed), &now)
	if err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, fmt.Errorf("%w: managed alert %d is not open", ErrInvalidTransition, id)
		}
		return nil, err
	}

	s.countTransition("close")
	s.log.Info("managed alert closed", logger.Uint64("managed_id", uint64(id)))
	return s.repo.GetManagedAlert(ctx, id)
}

// Delete removes a managed alert in any managed state, cascading to its
// notes. The underlying alert returns to Unmanaged from the console's
// point of view.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.DeleteManagedAlert(ctx, id); err != nil {
		return err
	}
	s.countTransition("delete")
	s.log.Info("managed alert deleted", logger.Uint64("managed_id", uint64(id)))
	return nil
}

// Get returns a managed alert by ID.
func (s *Service) Get(ctx context.Context, id uint) (*entities.ManagedAlert, error) {
	return s.repo.GetManagedAlert(ctx, id)
}

// List returns managed alerts newest first, optionally filtered by state.
func (s *Service) List(ctx context.Context, state string, limit, offset int) ([]entities.ManagedAlert, int64, error) {
	if state != "" {
		parsed, err := alert.ParseReviewStatus(state)
		if err != nil || parsed == alert.StatusUnmanaged {
			return nil, 0, fmt.Errorf("invalid state filter %q", state)
		}
	}
	return s.repo.ListManagedAlerts(ctx, repository.ManagedAlertFilter{
		State:  state,
		Limit:  limit,
		Offset: offset,
	})
}

// Annotate stamps each alert with its review status from the local store.
// Alerts without a managed record stay Unmanaged. Lookup failures leave
// the alert untouched rather than failing the page.
func (s *Service) Annotate(ctx context.Context, alerts []alert.Alert) []alert.Alert {
	for i := range alerts {
		record, err := s.repo.GetManagedAlertByAlertID(ctx, alerts[i].ID)
		if err != nil {
			if !errors.Is(err, repository.ErrManagedAlertNotFound) {
				s.log.Warn("review status lookup failed",
					logger.String("alert_id", alerts[i].ID),
					logger.Error(err))
			}
			continue
		}
		if parsed, err := alert.ParseReviewStatus(record.State); err == nil {
			alerts[i].Status = parsed
		}
	}
	return alerts
}

func (s *Service) countTransition(kind string) {
	if s.metrics != nil {
		s.metrics.LifecycleTransitions.WithLabelValues(kind).Inc()
	}
}
