package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/osalazarm/alertview/internal/datastore/entities"
	"github.com/osalazarm/alertview/internal/errors"
)

// notificationRepository implements NotificationRepository.
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// GetConfig returns the singleton notification config row.
func (r *notificationRepository) GetConfig(ctx context.Context) (*entities.NotificationConfig, error) {
	var config entities.NotificationConfig
	if err := r.db.WithContext(ctx).First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get notification config: %w", err)
	}
	return &config, nil
}

// CreateConfig inserts the config row. The config is a singleton: a
// second create fails with ErrConfigExists.
func (r *notificationRepository) CreateConfig(ctx context.Context, config *entities.NotificationConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.NotificationConfig{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check notification config: %w", err)
		}
		if count > 0 {
			return ErrConfigExists
		}
		if err := tx.Create(config).Error; err != nil {
			return fmt.Errorf("failed to create notification config: %w", err)
		}
		return nil
	})
}

// UpdateConfig saves the full config row.
func (r *notificationRepository) UpdateConfig(ctx context.Context, config *entities.NotificationConfig) error {
	if config.ID == 0 {
		return ErrConfigNotFound
	}
	if err := r.db.WithContext(ctx).Save(config).Error; err != nil {
		return fmt.Errorf("failed to update notification config: %w", err)
	}
	return nil
}

// ListEmails returns all recipients.
func (r *notificationRepository) ListEmails(ctx context.Context) ([]entities.NotificationEmail, error) {
	var emails []entities.NotificationEmail
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to list notification emails: %w", err)
	}
	return emails, nil
}

// ListActiveEmails returns recipients eligible for dispatch.
func (r *notificationRepository) ListActiveEmails(ctx context.Context) ([]entities.NotificationEmail, error) {
	var emails []entities.NotificationEmail
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to list active notification emails: %w", err)
	}
	return emails, nil
}

// CreateEmail inserts a new recipient. Addresses are unique.
func (r *notificationRepository) CreateEmail(ctx context.Context, email *entities.NotificationEmail) error {
	if err := r.db.WithContext(ctx).Create(email).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create notification email: %w", err)
	}
	return nil
}

// UpdateEmail saves a recipient's full row.
func (r *notificationRepository) UpdateEmail(ctx context.Context, email *entities.NotificationEmail) error {
	if email.ID == 0 {
		return ErrEmailNotFound
	}
	result := r.db.WithContext(ctx).Model(&entities.NotificationEmail{}).
		Where("id = ?", email.ID).
		Updates(map[string]any{
			"address":     email.Address,
			"description": email.Description,
			"active":      email.Active,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to update notification email %d: %w", email.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEmailNotFound
	}
	return nil
}

// DeleteEmail removes a recipient.
func (r *notificationRepository) DeleteEmail(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.NotificationEmail{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete notification email %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEmailNotFound
	}
	return nil
}

// SaveHistory records one dispatch decision.
func (r *notificationRepository) SaveHistory(ctx context.Context, entry *entities.NotificationHistory) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to save notification history: %w", err)
	}
	return nil
}

// ListHistory returns dispatch history newest first with the total count.
func (r *notificationRepository) ListHistory(ctx context.Context, limit, offset int) ([]entities.NotificationHistory, int64, error) {
	var entries []entities.NotificationHistory
	var total int64

	if err := r.db.WithContext(ctx).Model(&entities.NotificationHistory{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notification history: %w", err)
	}

	query := r.db.WithContext(ctx).Order("sent_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notification history: %w", err)
	}
	return entries, total, nil
}
