package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/osalazarm/alertview/internal/alert"
	"github.com/osalazarm/alertview/internal/conf"
	"github.com/osalazarm/alertview/internal/datastore/entities"
	"github.com/osalazarm/alertview/internal/datastore/repository"
	"github.com/osalazarm/alertview/internal/errors"
	"github.com/osalazarm/alertview/internal/logger"
)

// Validation failure modes.
var (
	// ErrInvalidRecipient is returned for recipient addresses that cannot
	// receive mail.
	ErrInvalidRecipient = errors.New("invalid recipient address")
	// ErrInvalidThreshold is returned for thresholds outside the rule
	// level range.
	ErrInvalidThreshold = errors.New("alert threshold out of range")
)

// Service manages notification configuration and recipients.
type Service struct {
	repo     repository.NotificationRepository
	defaults conf.NotificationDefaults
	log      logger.Logger
}

// NewService creates a notification service. defaults seed the config row
// on first access.
func NewService(repo repository.NotificationRepository, defaults conf.NotificationDefaults, log logger.Logger) *Service {
	return &Service{repo: repo, defaults: defaults, log: log}
}

// GetOrCreateConfig returns the singleton config, seeding it from the
// deployment defaults when missing so the gate always has a threshold to
// work with.
func (s *Service) GetOrCreateConfig(ctx context.Context) (*entities.NotificationConfig, error) {
	config, err := s.repo.GetConfig(ctx)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, repository.ErrConfigNotFound) {
		return nil, err
	}

	config = &entities.NotificationConfig{
		AlertThreshold: s.defaults.AlertThreshold,
		Enabled:        s.defaults.Enabled,
		SenderName:     s.defaults.SenderName,
		SenderAddress:  s.defaults.SenderAddress,
		SenderUsername: s.defaults.SenderAddress,
	}
	if err := s.repo.CreateConfig(ctx, config); err != nil {
		// Another instance may have seeded concurrently; fall back to a read.
		if errors.Is(err, repository.ErrConfigExists) {
			return s.repo.GetConfig(ctx)
		}
		return nil, err
	}
	s.log.Info("seeded default notification config",
		logger.Int("alert_threshold", config.AlertThreshold),
		logger.Bool("enabled", config.Enabled))
	return config, nil
}

// CreateConfig creates the initial config row explicitly. The sender
// username mirrors the sender address unless set.
func (s *Service) CreateConfig(ctx context.Context, config *entities.NotificationConfig) error {
	if err := validateConfig(config); err != nil {
		return err
	}
	if config.SenderUsername == "" {
		config.SenderUsername = config.SenderAddress
	}
	return s.repo.CreateConfig(ctx, config)
}

// UpdateConfig applies changes to the existing config row.
func (s *Service) UpdateConfig(ctx context.Context, updated *entities.NotificationConfig) (*entities.NotificationConfig, error) {
	if err := validateConfig(updated); err != nil {
		return nil, err
	}

	current, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	current.AlertThreshold = updated.AlertThreshold
	current.Enabled = updated.Enabled
	current.SenderName = updated.SenderName
	current.CredentialRef = updated.CredentialRef
	if updated.SenderAddress != "" && updated.SenderAddress != current.SenderAddress {
		current.SenderAddress = updated.SenderAddress
		current.SenderUsername = updated.SenderAddress
	}

	if err := s.repo.UpdateConfig(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// ListRecipients returns all configured recipients.
func (s *Service) ListRecipients(ctx context.Context) ([]entities.NotificationEmail, error) {
	return s.repo.ListEmails(ctx)
}

// ActiveRecipients returns recipients eligible for dispatch.
func (s *Service) ActiveRecipients(ctx context.Context) ([]entities.NotificationEmail, error) {
	return s.repo.ListActiveEmails(ctx)
}

// AddRecipient registers a new recipient address.
func (s *Service) AddRecipient(ctx context.Context, email *entities.NotificationEmail) error {
	if err := validateAddress(email.Address); err != nil {
		return err
	}
	return s.repo.CreateEmail(ctx, email)
}

// UpdateRecipient edits a recipient.
func (s *Service) UpdateRecipient(ctx context.Context, email *entities.NotificationEmail) error {
	if err := validateAddress(email.Address); err != nil {
		return err
	}
	return s.repo.UpdateEmail(ctx, email)
}

// RemoveRecipient deletes a recipient.
func (s *Service) RemoveRecipient(ctx context.Context, id uint) error {
	return s.repo.DeleteEmail(ctx, id)
}

// History returns dispatch history newest first.
func (s *Service) History(ctx context.Context, limit, offset int) ([]entities.NotificationHistory, int64, error) {
	return s.repo.ListHistory(ctx, limit, offset)
}

func validateConfig(config *entities.NotificationConfig) error {
	if config.AlertThreshold < alert.MinRuleLevel || config.AlertThreshold > alert.MaxRuleLevel {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, config.AlertThreshold)
	}
	if config.SenderAddress != "" {
		return validateAddress(config.SenderAddress)
	}
	return nil
}

func validateAddress(address string) error {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" || !strings.Contains(trimmed, "@") || strings.ContainsAny(trimmed, " \t") {
		return fmt.Errorf("%w: %q", ErrInvalidRecipient, address)
	}
	return nil
}
