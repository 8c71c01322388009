package alertstore

import "strconv"

// Period selects the statistics window requested from the alert index.
type Period string

// Statistics periods accepted by the stats endpoint.
const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod validates a raw period string.
func ParsePeriod(raw string) (Period, bool) {
	switch Period(raw) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(raw), true
	default:
		return "", false
	}
}

// Bucket is a single pre-aggregated count from the alert index.
type Bucket struct {
	Key         any    `json:"key"`
	KeyAsString string `json:"key_as_string,omitempty"`
	DocCount    int64  `json:"doc_count"`
}

// Label returns the display label for the bucket, preferring the
// store-rendered string form when present.
func (b Bucket) Label() string {
	if b.KeyAsString != "" {
		return b.KeyAsString
	}
	switch k := b.Key.(type) {
	case string:
		return k
	case float64:
		if k == float64(int64(k)) {
			return strconv.FormatInt(int64(k), 10)
		}
		return strconv.FormatFloat(k, 'f', -1, 64)
	default:
		return ""
	}
}

// LevelKey returns the bucket key as an integer rule level.
func (b Bucket) LevelKey() (int, bool) {
	switch k := b.Key.(type) {
	case float64:
		return int(k), true
	case int:
		return k, true
	case string:
		n, err := strconv.Atoi(k)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Stats carries the three raw bucket sequences produced by the alert
// index for a period: chronological time buckets, per-level counts and
// descending rule frequency counts.
type Stats struct {
	AlertsOverTime []Bucket `json:"alerts_over_time"`
	RuleLevels     []Bucket `json:"rule_levels"`
	TopRules       []Bucket `json:"top_rules"`
}

// searchResponse mirrors the subset of the index search reply we consume.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string         `json:"_id"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		AlertsOverTime struct {
			Buckets []Bucket `json:"buckets"`
		} `json:"alerts_over_time"`
		RuleLevels struct {
			Buckets []Bucket `json:"buckets"`
		} `json:"rule_levels"`
		TopRules struct {
			Buckets []Bucket `json:"buckets"`
		} `json:"top_rules"`
	} `json:"aggregations"`
}

// errorResponse is the well-formed error payload the index returns
// alongside a non-2xx status.
type errorResponse struct {
	Error   any    `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}
