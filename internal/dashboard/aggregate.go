// Package dashboard turns raw bucketed counts from the alert index into
// the derived series the dashboard renders.
package dashboard

import (
	"math"

	"github.com/osalazarm/alertview/internal/alert"
	"github.com/osalazarm/alertview/internal/alertstore"
)

// maxTopRules caps the rules ranking shown on the dashboard.
const maxTopRules = 10

// TimeBucket is one point of the alerts-over-time series.
type TimeBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// SeveritySlice is one severity category with its share of the total.
type SeveritySlice struct {
	Category alert.SeverityCategory `json:"category"`
	Count    int64                  `json:"count"`
	Percent  float64                `json:"percent"`
}

// RuleCount is one entry of the top-rules ranking.
type RuleCount struct {
	Description string  `json:"description"`
	Count       int64   `json:"count"`
	Percent     float64 `json:"percent"`
}

// Series is the full derived dashboard data set. It is computed on demand
// and never persisted.
type Series struct {
	AlertsOverTime       []TimeBucket    `json:"alerts_over_time"`
	SeverityDistribution []SeveritySlice `json:"severity_distribution"`
	TopRules             []RuleCount     `json:"top_rules"`
}

// BuildSeries derives the dashboard series from raw store buckets.
//
// The time series passes through in store order (chronological). Rule
// levels collapse into the three severity categories with one-decimal
// percentages; a zero total yields zero percentages, never NaN. Top rules
// are truncated to ten entries preserving store order, since the index
// already sorts descending by count with a stable tie-break. Only the
// percentage is computed locally.
func BuildSeries(stats *alertstore.Stats) *Series {
	s := &Series{
		AlertsOverTime:       make([]TimeBucket, 0, len(stats.AlertsOverTime)),
		SeverityDistribution: make([]SeveritySlice, 0, 3),
		TopRules:             make([]RuleCount, 0, maxTopRules),
	}

	for _, bucket := range stats.AlertsOverTime {
		s.AlertsOverTime = append(s.AlertsOverTime, TimeBucket{
			Label: bucket.Label(),
			Count: bucket.DocCount,
		})
	}

	counts := map[alert.SeverityCategory]int64{}
	var severityTotal int64
	for _, bucket := range stats.RuleLevels {
		level, ok := bucket.LevelKey()
		if !ok {
			continue
		}
		counts[alert.CategoryForLevel(level)] += bucket.DocCount
		severityTotal += bucket.DocCount
	}
	for _, category := range alert.Categories() {
		s.SeverityDistribution = append(s.SeverityDistribution, SeveritySlice{
			Category: category,
			Count:    counts[category],
			Percent:  percentage(counts[category], severityTotal),
		})
	}

	var rulesTotal int64
	for _, bucket := range stats.TopRules {
		rulesTotal += bucket.DocCount
	}
	for i, bucket := range stats.TopRules {
		if i >= maxTopRules {
			break
		}
		s.TopRules = append(s.TopRules, RuleCount{
			Description: bucket.Label(),
			Count:       bucket.DocCount,
			Percent:     percentage(bucket.DocCount, rulesTotal),
		})
	}

	return s
}

// percentage returns count/total as a percentage rounded to one decimal,
// and 0 when total is 0.
func percentage(count, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}
