package agent

// Planner converts a reasoning result and the cycle's observations into
// an ordered list of typed action directives.
type Planner struct{}

// NewPlanner builds a planner
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan emits entries in rule order: reminders for due medications,
// reminders for missed doses (duplicates with the first rule are kept),
// one escalation when flagged, then reorders for low inventory. An empty
// plan is valid.
func (p *Planner) Plan(reasoning ReasoningResult, observations []Observation) []PlanEntry {
	plan := []PlanEntry{}

	if obs, ok := FindObservation(observations, ObsDueMedicines); ok {
		for _, name := range obs.Items {
			if name == NoneMarker {
				continue
			}
			plan = append(plan, PlanEntry{Kind: ActionRemind, Target: name})
		}
	}

	if obs, ok := FindObservation(observations, ObsMissedDoses); ok {
		for _, name := range obs.Items {
			if name == NoneMarker {
				continue
			}
			plan = append(plan, PlanEntry{Kind: ActionRemind, Target: name})
		}
	}

	if reasoning.EscalationNeeded {
		plan = append(plan, PlanEntry{Kind: ActionEscalate, Target: string(reasoning.Problem)})
	}

	if obs, ok := FindObservation(observations, ObsLowInventory); ok {
		for _, name := range obs.Items {
			if name == NoneMarker {
				continue
			}
			plan = append(plan, PlanEntry{Kind: ActionReorder, Target: name})
		}
	}

	return plan
}
