// Package alert defines the canonical alert record and the normalizer
// that maps the alert store's and review store's legacy payload shapes
// into it.
package alert

import (
	"encoding/json"
	"fmt"
	"time"
)

// Rule levels are integer severity scores assigned by the detection engine.
const (
	MinRuleLevel = 0
	MaxRuleLevel = 15
)

// ReviewStatus is the review lifecycle state of an alert.
type ReviewStatus string

// Review lifecycle states. An alert with no recorded status is Unmanaged.
const (
	StatusUnmanaged ReviewStatus = "unmanaged"
	StatusOpen      ReviewStatus = "open"
	StatusClosed    ReviewStatus = "closed"
)

// ParseReviewStatus maps a raw status string to a ReviewStatus. An empty
// string maps to StatusUnmanaged so downstream code never branches on
// missing values.
func ParseReviewStatus(raw string) (ReviewStatus, error) {
	switch ReviewStatus(raw) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusClosed:
		return StatusClosed, nil
	case StatusUnmanaged, "":
		return StatusUnmanaged, nil
	default:
		return StatusUnmanaged, fmt.Errorf("unknown review status %q", raw)
	}
}

// Valid reports whether s is one of the defined review states.
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusUnmanaged, StatusOpen, StatusClosed:
		return true
	default:
		return false
	}
}

// Agent identifies the endpoint that reported an alert.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	IP   string `json:"ip,omitempty"`
}

// Rule describes the detection rule an alert matched.
type Rule struct {
	ID          string   `json:"id"`
	Level       int      `json:"level"`
	Description string   `json:"description"`
	Groups      []string `json:"groups"`
}

// Alert is the canonical alert record. Once normalized it is immutable
// for the lifetime of the view consuming it.
type Alert struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Agent     Agent           `json:"agent"`
	Rule      Rule            `json:"rule"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Status    ReviewStatus    `json:"status"`
}
