// Package query builds validated filter and pagination specifications
// for alert store queries.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/osalazarm/alertview/internal/alert"
)

// DefaultPageSize is the fixed page size used by listing views.
const DefaultPageSize = 10

// MaxPageSize caps caller-provided page sizes.
const MaxPageSize = 100

// DateRangeError reports an inconsistent date range. Bound names the
// offending field so forms can highlight it.
type DateRangeError struct {
	Bound  string
	Reason string
}

func (e *DateRangeError) Error() string {
	return fmt.Sprintf("invalid date range: %s %s", e.Bound, e.Reason)
}

// FilterSpec is a validated, immutable filter for alert store queries.
// Zero-value fields mean "no filter".
type FilterSpec struct {
	AgentIDs    []string           `json:"agent_ids,omitempty"`
	RuleLevels  []int              `json:"rule_levels,omitempty"`
	RuleGroups  []string           `json:"rule_groups,omitempty"`
	From        *time.Time         `json:"from,omitempty"`
	To          *time.Time         `json:"to,omitempty"`
	SearchTerm  string             `json:"search_term,omitempty"`
	AlertID     string             `json:"alert_id,omitempty"`
	ReviewState alert.ReviewStatus `json:"review_state,omitempty"`
}

// IsZero reports whether the filter applies no constraints at all.
func (f FilterSpec) IsZero() bool {
	return len(f.AgentIDs) == 0 && len(f.RuleLevels) == 0 && len(f.RuleGroups) == 0 &&
		f.From == nil && f.To == nil && f.SearchTerm == "" && f.AlertID == "" && f.ReviewState == ""
}

// Pagination selects a page of results. Page is 1-based.
type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// DefaultPagination returns the first page at the fixed default size.
func DefaultPagination() Pagination {
	return Pagination{Page: 1, Size: DefaultPageSize}
}

// Offset converts the pagination to a store offset.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Size
}

// FormInput is the raw, unvalidated filter form state. Agent IDs and rule
// levels arrive as comma-separated strings, dates as ISO strings.
type FormInput struct {
	AgentIDs   string
	RuleLevels string
	RuleGroups string
	FromDate   string
	ToDate     string
	SearchTerm string
	AlertID    string
}

// Compose validates raw form input and produces a FilterSpec. Non-numeric
// or out-of-range rule level tokens are dropped rather than failing the
// whole filter; an inverted date range is rejected with a DateRangeError
// before anything reaches the store.
func Compose(input FormInput) (FilterSpec, error) {
	spec := FilterSpec{
		AgentIDs:   splitTrimmed(input.AgentIDs),
		RuleGroups: splitTrimmed(input.RuleGroups),
		SearchTerm: strings.TrimSpace(input.SearchTerm),
		AlertID:    strings.TrimSpace(input.AlertID),
	}

	for _, token := range splitTrimmed(input.RuleLevels) {
		level, err := strconv.Atoi(token)
		if err != nil || level < alert.MinRuleLevel || level > alert.MaxRuleLevel {
			continue // a malformed token must not block the valid ones
		}
		spec.RuleLevels = append(spec.RuleLevels, level)
	}

	if input.FromDate != "" {
		from, err := parseDate(input.FromDate)
		if err != nil {
			return FilterSpec{}, &DateRangeError{Bound: "from", Reason: "is not a valid date"}
		}
		spec.From = &from
	}
	if input.ToDate != "" {
		to, err := parseDate(input.ToDate)
		if err != nil {
			return FilterSpec{}, &DateRangeError{Bound: "to", Reason: "is not a valid date"}
		}
		spec.To = &to
	}
	if spec.From != nil && spec.To != nil && spec.From.After(*spec.To) {
		return FilterSpec{}, &DateRangeError{Bound: "to", Reason: "precedes the from bound"}
	}

	return spec, nil
}

// Composer tracks the active filter and pagination for a listing view as
// explicit immutable values. Changing the filter always resets the page to
// 1 so an out-of-range page is never silently preserved.
type Composer struct {
	spec       FilterSpec
	pagination Pagination
}

// NewComposer creates a Composer at the unfiltered initial state.
func NewComposer() *Composer {
	return &Composer{pagination: DefaultPagination()}
}

// Apply validates the input and makes it the active filter, resetting the
// page to 1. On error the previous state is kept.
func (c *Composer) Apply(input FormInput) (FilterSpec, error) {
	spec, err := Compose(input)
	if err != nil {
		return FilterSpec{}, err
	}
	c.spec = spec
	c.pagination.Page = 1
	return spec, nil
}

// SetPage moves to the given 1-based page without touching the filter.
// Pages below 1 clamp to 1.
func (c *Composer) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.pagination.Page = page
}

// Reset returns the composer to the initial unfiltered state: all optional
// fields absent and page 1. The returned spec is equivalent to "no filters".
func (c *Composer) Reset() FilterSpec {
	c.spec = FilterSpec{}
	c.pagination = DefaultPagination()
	return c.spec
}

// Spec returns the active filter.
func (c *Composer) Spec() FilterSpec { return c.spec }

// Pagination returns the active pagination.
func (c *Composer) Pagination() Pagination { return c.pagination }

func splitTrimmed(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
