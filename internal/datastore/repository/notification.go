package repository

import (
	"context"

	"github.com/osalazarm/alertview/internal/datastore/entities"
	"github.com/osalazarm/alertview/internal/errors"
)

// Notification store failure modes.
var (
	// ErrConfigNotFound is returned when no notification config row exists.
	ErrConfigNotFound = errors.New("notification config not found")
	// ErrConfigExists is returned when creating a second config row.
	ErrConfigExists = errors.New("notification config already exists")
	// ErrEmailNotFound is returned when no recipient matches.
	ErrEmailNotFound = errors.New("notification email not found")
	// ErrEmailExists is returned when a recipient address is already registered.
	ErrEmailExists = errors.New("notification email already exists")
)

// NotificationRepository handles notification config, recipients and
// dispatch history.
type NotificationRepository interface {
	// Config (singleton per deployment)
	GetConfig(ctx context.Context) (*entities.NotificationConfig, error)
	CreateConfig(ctx context.Context, config *entities.NotificationConfig) error
	UpdateConfig(ctx context.Context, config *entities.NotificationConfig) error

	// Recipients
	ListEmails(ctx context.Context) ([]entities.NotificationEmail, error)
	ListActiveEmails(ctx context.Context) ([]entities.NotificationEmail, error)
	CreateEmail(ctx context.Context, email *entities.NotificationEmail) error
	UpdateEmail(ctx context.Context, email *entities.NotificationEmail) error
	DeleteEmail(ctx context.Context, id uint) error

	// Dispatch history
	SaveHistory(ctx context.Context, entry *entities.NotificationHistory) error
	ListHistory(ctx context.Context, limit, offset int) ([]entities.NotificationHistory, int64, error)
}
