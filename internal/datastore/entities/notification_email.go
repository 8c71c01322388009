package entities

// NotificationEmail is one notification recipient. Active can be toggled
// off to suspend a recipient without losing its configuration.
type NotificationEmail struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Address     string `gorm:"size:255;not null;uniqueIndex" json:"address"`
	Description string `gorm:"size:255;default:''" json:"description"`
	Active      bool   `gorm:"not null;default:true" json:"active"`
}

// TableName returns the table name for GORM.
func (NotificationEmail) TableName() string {
	return "notification_emails"
}
