package agent

import "fmt"

// StatusLogged marks a plan entry recorded in the action log. Delivery
// of reminders and escalations happens out-of-band; the actor itself
// performs no network or persistence effects.
const StatusLogged = "logged"

// Actor turns a plan into an action log and an alert list
type Actor struct{}

// NewActor builds an actor
func NewActor() *Actor {
	return &Actor{}
}

// Act records every plan entry in the action log. ESCALATE entries also
// produce a human-readable alert string.
func (a *Actor) Act(plan []PlanEntry) ([]ActionLogEntry, []string) {
	log := []ActionLogEntry{}
	alerts := []string{}
	for _, entry := range plan {
		log = append(log, ActionLogEntry{
			Type:   entry.Kind,
			Target: entry.Target,
			Status: StatusLogged,
		})
		if entry.Kind == ActionEscalate {
			alerts = append(alerts, fmt.Sprintf("Escalation required: %s", entry.Target))
		}
	}
	return log, alerts
}
