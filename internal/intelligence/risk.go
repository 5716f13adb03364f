package intelligence

import "strings"

// Severity is the ordinal classification derived from active alerts
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Keyword tiers, checked in strict priority order. A higher tier is
// scanned across the whole alert list before falling to the next.
var (
	criticalKeywords = []string{"critical", "out of stock", "emergency", "unresponsive"}
	highKeywords     = []string{"sustained high bp", "sugar instability", "abnormal vitals", "repeatedly", "escalat"}
	mediumKeywords   = []string{"missed", "low", "unwell", "inventory"}
)

// AssessSeverity classifies the overall severity of a set of alert
// strings by case-insensitive keyword precedence. An empty list is low.
func AssessSeverity(alerts []string) Severity {
	if len(alerts) == 0 {
		return SeverityLow
	}

	if anyAlertMatches(alerts, criticalKeywords) {
		return SeverityCritical
	}
	if anyAlertMatches(alerts, highKeywords) {
		return SeverityHigh
	}
	if anyAlertMatches(alerts, mediumKeywords) {
		return SeverityMedium
	}
	return SeverityLow
}

func anyAlertMatches(alerts, keywords []string) bool {
	for _, alert := range alerts {
		lower := strings.ToLower(alert)
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}
