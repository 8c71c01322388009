package alert

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/osalazarm/alertview/internal/errors"
)

// Normalization failure modes.
var (
	// ErrMissingRequiredField is returned when a raw record lacks an id
	// or timestamp. Callers must not render such records.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrLevelOutOfRange is returned when rule.level falls outside [0,15].
	// This is a data-quality error, never a crash.
	ErrLevelOutOfRange = errors.New("rule level out of range")
)

// Normalize maps an arbitrary-shaped raw record into a canonical Alert.
//
// The alert store returns nested objects (agent.id, rule.level) while the
// review store returns a flattened projection (agent_id, rule_level). When
// both shapes are present the flattened field wins: the review-store
// projection is authoritative once an alert is under management. Status may
// arrive as "state" or "status"; "state" wins and absence maps to
// StatusUnmanaged.
func Normalize(raw map[string]any) (Alert, error) {
	if raw == nil {
		return Alert{}, fmt.Errorf("%w: id", ErrMissingRequiredField)
	}

	id := stringField(raw, "id")
	if id == "" {
		return Alert{}, fmt.Errorf("%w: id", ErrMissingRequiredField)
	}

	ts, ok := timestampField(raw)
	if !ok {
		return Alert{}, fmt.Errorf("%w: timestamp", ErrMissingRequiredField)
	}

	nestedAgent := nestedObject(raw, "agent")
	nestedRule := nestedObject(raw, "rule")

	a := Alert{
		ID:        id,
		Timestamp: ts.UTC(),
		Agent: Agent{
			ID:   firstNonEmpty(stringField(raw, "agent_id"), stringField(nestedAgent, "id")),
			Name: firstNonEmpty(stringField(raw, "agent_name"), stringField(nestedAgent, "name")),
			IP:   firstNonEmpty(stringField(raw, "agent_ip"), stringField(nestedAgent, "ip")),
		},
		Rule: Rule{
			ID:          firstNonEmpty(stringField(raw, "rule_id"), stringField(nestedRule, "id")),
			Description: firstNonEmpty(stringField(raw, "rule_description"), stringField(nestedRule, "description")),
			Groups:      ruleGroups(raw, nestedRule),
		},
	}

	level, levelFound := intField(raw, "rule_level")
	if !levelFound {
		level, levelFound = intField(nestedRule, "level")
	}
	if levelFound {
		if level < MinRuleLevel || level > MaxRuleLevel {
			return Alert{}, fmt.Errorf("%w: %d", ErrLevelOutOfRange, level)
		}
		a.Rule.Level = level
	}

	status, err := ParseReviewStatus(firstNonEmpty(stringField(raw, "state"), stringField(raw, "status")))
	if err != nil {
		return Alert{}, err
	}
	a.Status = status

	if payload, ok := raw["payload"]; ok && payload != nil {
		// Preserve the original event body verbatim; it is never re-derived.
		encoded, err := json.Marshal(payload)
		if err != nil {
			return Alert{}, fmt.Errorf("failed to encode alert payload: %w", err)
		}
		a.Payload = encoded
	} else if fullLog := stringField(raw, "full_log"); fullLog != "" {
		encoded, _ := json.Marshal(fullLog)
		a.Payload = encoded
	}

	return a, nil
}

// NormalizeJSON decodes a raw JSON document and normalizes it.
func NormalizeJSON(data []byte) (Alert, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Alert{}, fmt.Errorf("failed to decode alert record: %w", err)
	}
	return Normalize(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nestedObject(raw map[string]any, key string) map[string]any {
	if raw == nil {
		return nil
	}
	obj, _ := raw[key].(map[string]any)
	return obj
}

func stringField(raw map[string]any, key string) string {
	if raw == nil {
		return ""
	}
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		// Legacy records carry numeric rule/agent IDs; keep them as strings.
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func intField(raw map[string]any, key string) (int, bool) {
	if raw == nil {
		return 0, false
	}
	switch v := raw[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// ruleGroups prefers the flattened rule_groups projection over the nested
// rule.groups array. The review store persists groups as a JSON-encoded
// string, so that form is decoded too.
func ruleGroups(raw, nestedRule map[string]any) []string {
	if raw != nil {
		if s, ok := raw["rule_groups"].(string); ok && s != "" {
			var groups []string
			if err := json.Unmarshal([]byte(s), &groups); err == nil {
				return groups
			}
		}
		if groups := stringSliceField(raw, "rule_groups"); len(groups) > 0 {
			return groups
		}
	}
	return stringSliceField(nestedRule, "groups")
}

func stringSliceField(raw map[string]any, key string) []string {
	if raw == nil {
		return []string{}
	}
	switch v := raw[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

func timestampField(raw map[string]any) (time.Time, bool) {
	for _, key := range []string{"timestamp", "@timestamp"} {
		switch v := raw[key].(type) {
		case time.Time:
			return v, true
		case string:
			if ts, err := parseTimestamp(v); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
