package alert

// SeverityCategory groups rule levels into the three dashboard buckets.
type SeverityCategory string

// Severity categories by rule level: High covers 10-15, Medium 5-9, Low 0-4.
const (
	SeverityLow    SeverityCategory = "low"
	SeverityMedium SeverityCategory = "medium"
	SeverityHigh   SeverityCategory = "high"
)

// Severity thresholds. Lower bounds are inclusive.
const (
	highSeverityMinLevel   = 10
	mediumSeverityMinLevel = 5
)

// CategoryForLevel maps a rule level to its severity category.
func CategoryForLevel(level int) SeverityCategory {
	switch {
	case level >= highSeverityMinLevel:
		return SeverityHigh
	case level >= mediumSeverityMinLevel:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Categories returns all severity categories in ascending order.
func Categories() []SeverityCategory {
	return []SeverityCategory{SeverityLow, SeverityMedium, SeverityHigh}
}
