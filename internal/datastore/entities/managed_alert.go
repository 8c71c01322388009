package entities

import "time"

// ManagedAlert is the persisted projection of an alert that entered the
// review workflow. The alert fields are copied at transition time because
// the originating index record may be mutated or rotated independently.
type ManagedAlert struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	AlertID         string      `gorm:"size:255;not null;uniqueIndex" json:"alert_id"`
	State           string      `gorm:"size:20;not null;index" json:"state"`
	Timestamp       time.Time   `gorm:"not null" json:"timestamp"`
	AgentID         string      `gorm:"size:255;not null" json:"agent_id"`
	AgentName       string      `gorm:"size:255;not null" json:"agent_name"`
	AgentIP         string      `gorm:"size:64;default:''" json:"agent_ip,omitempty"`
	RuleID          string      `gorm:"size:255;not null" json:"rule_id"`
	RuleLevel       int         `gorm:"not null;index" json:"rule_level"`
	RuleDescription string      `gorm:"size:1000;not null" json:"rule_description"`
	RuleGroups      string      `gorm:"type:text;default:''" json:"rule_groups,omitempty"`
	AlertData       string      `gorm:"type:text;default:''" json:"alert_data,omitempty"`
	CreatedAt       time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	ClosedAt        *time.Time  `json:"closed_at,omitempty"`
	Notes           []AlertNote `gorm:"foreignKey:ManagedAlertID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
}

// TableName returns the table name for GORM.
func (ManagedAlert) TableName() string {
	return "managed_alerts"
}
