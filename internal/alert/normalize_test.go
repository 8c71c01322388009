package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_NestedShape(t *testing.T) {
	raw := map[string]any{
		"id":        "1580123456.789",
		"timestamp": "2026-03-14T09:30:00Z",
		"agent": map[string]any{
			"id":   "001",
			"name": "web-01",
			"ip":   "10.0.0.5",
		},
		"rule": map[string]any{
			"id":          "5710",
			"level":       float64(10),
			"description": "sshd: brute force attempt",
			"groups":      []any{"sshd", "authentication_failed"},
		},
	}

	a, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "1580123456.789", a.ID)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), a.Timestamp)
	assert.Equal(t, "001", a.Agent.ID)
	assert.Equal(t, "web-01", a.Agent.Name)
	assert.Equal(t, "10.0.0.5", a.Agent.IP)
	assert.Equal(t, "5710", a.Rule.ID)
	assert.Equal(t, 10, a.Rule.Level)
	assert.Equal(t, []string{"sshd", "authentication_failed"}, a.Rule.Groups)
	assert.Equal(t, StatusUnmanaged, a.Status)
}

func TestNormalize_FlattenedFieldsWin(t *testing.T) {
	raw := map[string]any{
		"id":         "abc.001",
		"timestamp":  "2026-03-14T09:30:00Z",
		"agent_id":   "042",
		"agent_name": "db-02",
		"rule_id":    "9999",
		"rule_level": float64(7),
		"state":      "open",
		"agent": map[string]any{
			"id":   "001",
			"name": "web-01",
		},
		"rule": map[string]any{
			"id":    "5710",
			"level": float64(3),
		},
		"status": "closed",
	}

	a, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "042", a.Agent.ID)
	assert.Equal(t, "db-02", a.Agent.Name)
	assert.Equal(t, "9999", a.Rule.ID)
	assert.Equal(t, 7, a.Rule.Level)
	assert.Equal(t, StatusOpen, a.Status)
}

func TestNormalize_FlattenedRuleGroups(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"id":        "abc.002",
			"timestamp": "2026-03-14T09:30:00Z",
			"rule": map[string]any{
				"groups": []any{"nested"},
			},
		}
	}

	t.Run("json string projection wins", func(t *testing.T) {
		raw := base()
		raw["rule_groups"] = `["sshd","authentication_failed"]`
		a, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, []string{"sshd", "authentication_failed"}, a.Rule.Groups)
	})

	t.Run("array projection wins", func(t *testing.T) {
		raw := base()
		raw["rule_groups"] = []any{"pam"}
		a, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, []string{"pam"}, a.Rule.Groups)
	})

	t.Run("nested fallback", func(t *testing.T) {
		a, err := Normalize(base())
		require.NoError(t, err)
		assert.Equal(t, []string{"nested"}, a.Rule.Groups)
	})
}

func TestNormalize_MissingRequiredFields(t *testing.T) {
	t.Run("nil record", func(t *testing.T) {
		_, err := Normalize(nil)
		assert.ErrorIs(t, err, ErrMissingRequiredField)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := Normalize(map[string]any{"timestamp": "2026-03-14T09:30:00Z"})
		assert.ErrorIs(t, err, ErrMissingRequiredField)
	})

	t.Run("missing timestamp", func(t *testing.T) {
		_, err := Normalize(map[string]any{"id": "x.001"})
		assert.ErrorIs(t, err, ErrMissingRequiredField)
	})

	t.Run("unparseable timestamp", func(t *testing.T) {
		_, err := Normalize(map[string]any{"id": "x.001", "timestamp": "not-a-date"})
		assert.ErrorIs(t, err, ErrMissingRequiredField)
	})
}

func TestNormalize_LevelOutOfRange(t *testing.T) {
	for _, level := range []float64{-1, 16, 100} {
		_, err := Normalize(map[string]any{
			"id":         "x.001",
			"timestamp":  "2026-03-14T09:30:00Z",
			"rule_level": level,
		})
		assert.ErrorIs(t, err, ErrLevelOutOfRange, "level %v", level)
	}

	// Boundary levels are valid.
	for _, level := range []float64{0, 15} {
		a, err := Normalize(map[string]any{
			"id":         "x.001",
			"timestamp":  "2026-03-14T09:30:00Z",
			"rule_level": level,
		})
		require.NoError(t, err)
		assert.Equal(t, int(level), a.Rule.Level)
	}
}

func TestNormalize_StatusDefaultsAndRejects(t *testing.T) {
	t.Run("absent status is unmanaged", func(t *testing.T) {
		a, err := Normalize(map[string]any{"id": "x.001", "timestamp": "2026-03-14T09:30:00Z"})
		require.NoError(t, err)
		assert.Equal(t, StatusUnmanaged, a.Status)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := Normalize(map[string]any{
			"id":        "x.001",
			"timestamp": "2026-03-14T09:30:00Z",
			"status":    "snoozed",
		})
		assert.Error(t, err)
	})
}

func TestNormalize_AtTimestampFallback(t *testing.T) {
	a, err := Normalize(map[string]any{
		"id":         "x.001",
		"@timestamp": "2026-03-14T09:30:00.500Z",
	})
	require.NoError(t, err)
	assert.Equal(t, 2026, a.Timestamp.Year())
}

func TestNormalize_PayloadPreserved(t *testing.T) {
	a, err := Normalize(map[string]any{
		"id":        "x.001",
		"timestamp": "2026-03-14T09:30:00Z",
		"payload":   map[string]any{"full_log": "Mar 14 09:30:00 sshd[1]: Failed password"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"full_log":"Mar 14 09:30:00 sshd[1]: Failed password"}`, string(a.Payload))
}

func TestNormalizeJSON(t *testing.T) {
	a, err := NormalizeJSON([]byte(`{"id":"j.001","timestamp":"2026-03-14T09:30:00Z","rule":{"level":12}}`))
	require.NoError(t, err)
	assert.Equal(t, 12, a.Rule.Level)

	_, err = NormalizeJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseReviewStatus(t *testing.T) {
	for raw, want := range map[string]ReviewStatus{
		"":          StatusUnmanaged,
		"unmanaged": StatusUnmanaged,
		"open":      StatusOpen,
		"closed":    StatusClosed,
	} {
		got, err := ParseReviewStatus(raw)
		require.NoError(t, err, "raw %q", raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseReviewStatus("archived")
	assert.Error(t, err)
}

func TestCategoryForLevel(t *testing.T) {
	cases := []struct {
		level int
		want  SeverityCategory
	}{
		{0, SeverityLow}, {4, SeverityLow},
		{5, SeverityMedium}, {9, SeverityMedium},
		{10, SeverityHigh}, {15, SeverityHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CategoryForLevel(tc.level), "level %d", tc.level)
	}
}
