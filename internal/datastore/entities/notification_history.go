package entities

import "time"

// NotificationHistory records each automatic-notification decision that
// passed the threshold gate, with a snapshot of the recipients at the
// time of dispatch.
type NotificationHistory struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ManagedAlertID uint      `gorm:"not null;index" json:"managed_alert_id"`
	RuleLevel      int       `gorm:"not null" json:"rule_level"`
	Recipients     string    `gorm:"type:text;default:''" json:"recipients"`
	SentAt         time.Time `gorm:"not null;index" json:"sent_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (NotificationHistory) TableName() string {
	return "notification_history"
}
