package agent

import (
	"strings"

	"github.com/LohithR22/DoseWise/internal/intelligence"
)

// Reasoner combines per-cycle observations with trend analysis and
// severity assessment to select a single dominant problem, an urgency
// level and an escalation flag.
type Reasoner struct{}

// NewReasoner builds a reasoner
func NewReasoner() *Reasoner {
	return &Reasoner{}
}

// Reason evaluates the precedence rules. Exactly one problem is selected
// per cycle; later rules may still raise urgency but never change a
// problem once it is set, and urgency is never downgraded.
func (r *Reasoner) Reason(observations []Observation, trendAlerts []string, trendSeverity intelligence.Severity) ReasoningResult {
	result := ReasoningResult{
		Problem:     ProblemNone,
		Urgency:     UrgencyLow,
		TrendAlerts: trendAlerts,
		Severity:    trendSeverity,
	}
	var narrative []string

	hasItems := func(kind ObservationKind) ([]string, bool) {
		obs, found := FindObservation(observations, kind)
		return obs.Items, found && len(obs.Items) > 0
	}

	if trendSeverity == intelligence.SeverityCritical ||
		(len(trendAlerts) > 0 && trendSeverity == intelligence.SeverityHigh) {
		result.Problem = ProblemTrendAlerts
		result.Urgency = Urgency(trendSeverity)
		result.EscalationNeeded = true
		narrative = append(narrative, "Multi-day trends require attention: "+strings.Join(trendAlerts, "; ")+".")
	}

	if items, ok := hasItems(ObsAbnormalVitals); ok {
		if result.Problem == ProblemNone {
			result.Problem = ProblemAbnormalVitals
		}
		result.Urgency = result.Urgency.Raise(UrgencyHigh)
		result.EscalationNeeded = true
		narrative = append(narrative, "Abnormal vital signs detected: "+strings.Join(items, ", ")+".")
	}

	if items, ok := hasItems(ObsMissedDoses); ok {
		if result.Problem == ProblemNone {
			result.Problem = ProblemMissedDoses
		}
		result.Urgency = result.Urgency.Raise(UrgencyMedium)
		narrative = append(narrative, "Doses were missed for: "+strings.Join(items, ", ")+".")
	}

	if items, ok := hasItems(ObsDueMedicines); ok {
		if result.Problem == ProblemNone {
			result.Problem = ProblemDueMedicines
		}
		narrative = append(narrative, "Medications due now: "+strings.Join(items, ", ")+".")
	}

	if items, ok := hasItems(ObsLowInventory); ok {
		if result.Problem == ProblemNone {
			result.Problem = ProblemLowInventory
		}
		result.Urgency = result.Urgency.Raise(UrgencyMedium)
		narrative = append(narrative, "Inventory running low for: "+strings.Join(items, ", ")+".")
	}

	if len(trendAlerts) > 0 && result.Problem == ProblemNone {
		result.Problem = ProblemTrendAlerts
		if trendSeverity == intelligence.SeverityLow {
			result.Urgency = result.Urgency.Raise(UrgencyMedium)
		} else {
			result.Urgency = result.Urgency.Raise(Urgency(trendSeverity))
		}
		narrative = append(narrative, "Ongoing patterns noted: "+strings.Join(trendAlerts, "; ")+".")
	}

	if result.Problem == ProblemNone {
		narrative = append(narrative, "All checks passed; no action needed.")
	}

	result.Narrative = strings.Join(narrative, " ")
	return result
}
