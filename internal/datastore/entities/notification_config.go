package entities

import "time"

// NotificationConfig is the singleton automatic-notification configuration.
// CredentialRef points at the delivery credential held by the external
// dispatch layer; the credential itself is never stored here.
type NotificationConfig struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AlertThreshold int       `gorm:"not null;default:10" json:"alert_threshold"`
	Enabled        bool      `gorm:"not null;default:true" json:"enabled"`
	SenderName     string    `gorm:"size:255;default:''" json:"sender_name"`
	SenderAddress  string    `gorm:"size:255;not null" json:"sender_address"`
	SenderUsername string    `gorm:"size:255;not null" json:"sender_username"`
	CredentialRef  string    `gorm:"size:255;default:''" json:"credential_ref"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (NotificationConfig) TableName() string {
	return "notification_config"
}
