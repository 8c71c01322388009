package entities

import "time"

// AlertNote is a free-text annotation attached to a managed alert. Notes
// are owned by their parent record and removed when it is deleted.
type AlertNote struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ManagedAlertID uint      `gorm:"not null;index" json:"managed_alert_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	AuthorID       string    `gorm:"size:255;not null" json:"author_id"`
	AuthorName     string    `gorm:"size:255;default:''" json:"author_name"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (AlertNote) TableName() string {
	return "alert_notes"
}
