package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/osalazarm/alertview/internal/datastore/entities"
	"github.com/osalazarm/alertview/internal/errors"
)

// reviewRepository implements ReviewRepository.
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// CreateManagedAlert inserts a new managed alert record. Returns
// ErrAlertAlreadyManaged when the store alert id is already managed; the
// unique index on alert_id makes this race-safe.
func (r *reviewRepository) CreateManagedAlert(ctx context.Context, record *entities.ManagedAlert) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlertAlreadyManaged
		}
		return fmt.Errorf("failed to create managed alert: %w", err)
	}
	return nil
}

// GetManagedAlert returns a managed alert by ID.
func (r *reviewRepository) GetManagedAlert(ctx context.Context, id uint) (*entities.ManagedAlert, error) {
	var record entities.ManagedAlert
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManagedAlertNotFound
		}
		return nil, fmt.Errorf("failed to get managed alert %d: %w", id, err)
	}
	return &record, nil
}

// GetManagedAlertByAlertID returns the managed record for a store alert id.
func (r *reviewRepository) GetManagedAlertByAlertID(ctx context.Context, alertID string) (*entities.ManagedAlert, error) {
	var record entities.ManagedAlert
	if err := r.db.WithContext(ctx).Where("alert_id = ?", alertID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManagedAlertNotFound
		}
		return nil, fmt.Errorf("failed to get managed alert %q: %w", alertID, err)
	}
	return &record, nil
}

// ListManagedAlerts returns managed alerts newest first with the total
// match count for pagination.
func (r *reviewRepository) ListManagedAlerts(ctx context.Context, filter ManagedAlertFilter) ([]entities.ManagedAlert, int64, error) {
	var records []entities.ManagedAlert
	var total int64

	countQuery := r.db.WithContext(ctx).Model(&entities.ManagedAlert{})
	if filter.State != "" {
		countQuery = countQuery.Where("state = ?", filter.State)
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count managed alerts: %w", err)
	}

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list managed alerts: %w", err)
	}
	return records, total, nil
}

// UpdateState transitions a record between states with a conditional
// update so concurrent transitions cannot both win.
func (r *reviewRepository) UpdateState(ctx context.Context, id uint, from, to string, closedAt *time.Time) error {
	updates := map[string]any{"state": to}
	if closedAt != nil {
		updates["closed_at"] = *closedAt
	}

	result := r.db.WithContext(ctx).Model(&entities.ManagedAlert{}).
		Where("id = ? AND state = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update managed alert %d state: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing record from one in the wrong state so the
		// caller observes the pre-transition state on failure.
		if _, err := r.GetManagedAlert(ctx, id); err != nil {
			return err
		}
		return ErrStateConflict
	}
	return nil
}

// DeleteManagedAlert hard-deletes the record and cascades to its notes
// inside one transaction.
func (r *reviewRepository) DeleteManagedAlert(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("managed_alert_id = ?", id).Delete(&entities.AlertNote{}).Error; err != nil {
			return fmt.Errorf("failed to delete alert notes: %w", err)
		}
		result := tx.Delete(&entities.ManagedAlert{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete managed alert %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrManagedAlertNotFound
		}
		return nil
	})
}

// CreateNote inserts a new note.
func (r *reviewRepository) CreateNote(ctx context.Context, note *entities.AlertNote) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("failed to create alert note: %w", err)
	}
	return nil
}

// GetNote returns a note by ID.
func (r *reviewRepository) GetNote(ctx context.Context, id uint) (*entities.AlertNote, error) {
	var note entities.AlertNote
	if err := r.db.WithContext(ctx).First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get alert note %d: %w", id, err)
	}
	return &note, nil
}

// ListNotes returns all notes for a managed alert in insertion order
// (oldest first) to preserve a readable audit trail. A missing or deleted
// parent yields an empty list, never an error.
func (r *reviewRepository) ListNotes(ctx context.Context, managedAlertID uint) ([]entities.AlertNote, error) {
	notes := make([]entities.AlertNote, 0)
	if err := r.db.WithContext(ctx).
		Where("managed_alert_id = ?", managedAlertID).
		Order("id ASC").
		Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to list alert notes: %w", err)
	}
	return notes, nil
}

// UpdateNoteContent replaces a note's content, recording the last editor.
// Last write wins; there is no version check.
func (r *reviewRepository) UpdateNoteContent(ctx context.Context, id uint, content, authorID, authorName string) (*entities.AlertNote, error) {
	result := r.db.WithContext(ctx).Model(&entities.AlertNote{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"content":     content,
			"author_id":   authorID,
			"author_name": authorName,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update alert note %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoteNotFound
	}
	return r.GetNote(ctx, id)
}

// DeleteNote removes a single note.
func (r *reviewRepository) DeleteNote(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.AlertNote{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete alert note %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
