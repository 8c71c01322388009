package repository

import (
	"context"
	"time"

	"github.com/osalazarm/alertview/internal/datastore/entities"
	"github.com/osalazarm/alertview/internal/errors"
)

// Review store failure modes.
var (
	// ErrManagedAlertNotFound is returned when no managed alert matches.
	ErrManagedAlertNotFound = errors.New("managed alert not found")
	// ErrAlertAlreadyManaged is returned when the store alert id already
	// has a managed record.
	ErrAlertAlreadyManaged = errors.New("alert already managed")
	// ErrStateConflict is returned when a conditional state update finds
	// the record in a different state than expected.
	ErrStateConflict = errors.New("managed alert state conflict")
	// ErrNoteNotFound is returned when no note matches.
	ErrNoteNotFound = errors.New("alert note not found")
)

// ReviewRepository handles managed alert and note persistence.
type ReviewRepository interface {
	// Managed alerts
	CreateManagedAlert(ctx context.Context, record *entities.ManagedAlert) error
	GetManagedAlert(ctx context.Context, id uint) (*entities.ManagedAlert, error)
	GetManagedAlertByAlertID(ctx context.Context, alertID string) (*entities.ManagedAlert, error)
	ListManagedAlerts(ctx context.Context, filter ManagedAlertFilter) ([]entities.ManagedAlert, int64, error)
	// UpdateState transitions id from one state to another atomically.
	// Returns ErrStateConflict when the record is not in the expected
	// state, ErrManagedAlertNotFound when it does not exist.
	UpdateState(ctx context.Context, id uint, from, to string, closedAt *time.Time) error
	// DeleteManagedAlert removes the record and all attached notes.
	DeleteManagedAlert(ctx context.Context, id uint) error

	// Notes
	CreateNote(ctx context.Context, note *entities.AlertNote) error
	GetNote(ctx context.Context, id uint) (*entities.AlertNote, error)
	ListNotes(ctx context.Context, managedAlertID uint) ([]entities.AlertNote, error)
	UpdateNoteContent(ctx context.Context, id uint, content, authorID, authorName string) (*entities.AlertNote, error)
	DeleteNote(ctx context.Context, id uint) error
}

// ManagedAlertFilter controls managed alert listing queries.
type ManagedAlertFilter struct {
	State  string
	Limit  int
	Offset int
}
