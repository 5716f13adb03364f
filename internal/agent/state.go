// Package agent implements the deterministic reasoning-and-planning
// pipeline: Observe, Reason, Plan, Act, composed in a fixed cycle over an
// immutable snapshot. Each stage is a pure function that only writes the
// fields it owns; all I/O belongs to the surrounding collaborators.
package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LohithR22/DoseWise/internal/health"
	"github.com/LohithR22/DoseWise/internal/intelligence"
	"github.com/LohithR22/DoseWise/internal/medication"
)

// ObservationKind tags a categorical observation
type ObservationKind string

const (
	ObsDueMedicines   ObservationKind = "due_medicines"
	ObsMissedDoses    ObservationKind = "missed_doses"
	ObsLowInventory   ObservationKind = "low_inventory"
	ObsAbnormalVitals ObservationKind = "abnormal_vitals"
)

// NoneMarker is the literal carried by an observation with no items
const NoneMarker = "none"

// Observation is a categorical fact derived by the observer. Items is
// empty when nothing matched; String renders the "none" marker then.
type Observation struct {
	Kind  ObservationKind `json:"kind"`
	Items []string        `json:"items"`
}

// String renders the observation as "kind:item,item" or "kind:none"
func (o Observation) String() string {
	if len(o.Items) == 0 {
		return fmt.Sprintf("%s:%s", o.Kind, NoneMarker)
	}
	return fmt.Sprintf("%s:%s", o.Kind, strings.Join(o.Items, ","))
}

// Problem is the single dominant classification selected per cycle
type Problem string

const (
	ProblemNone           Problem = "none"
	ProblemTrendAlerts    Problem = "trend_alerts"
	ProblemAbnormalVitals Problem = "abnormal_vitals"
	ProblemMissedDoses    Problem = "missed_doses"
	ProblemDueMedicines   Problem = "due_medicines"
	ProblemLowInventory   Problem = "low_inventory"
)

// Urgency is the cycle's urgency level
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

var urgencyRank = map[Urgency]int{
	UrgencyLow:      0,
	UrgencyMedium:   1,
	UrgencyHigh:     2,
	UrgencyCritical: 3,
}

// Raise returns the higher of the two urgencies; never downgrades
func (u Urgency) Raise(to Urgency) Urgency {
	if urgencyRank[to] > urgencyRank[u] {
		return to
	}
	return u
}

// ReasoningResult is the reasoner's output for one cycle
type ReasoningResult struct {
	Problem          Problem               `json:"problem"`
	Urgency          Urgency               `json:"urgency"`
	EscalationNeeded bool                  `json:"escalation_needed"`
	TrendAlerts      []string              `json:"trend_alerts"`
	Severity         intelligence.Severity `json:"severity"`
	Narrative        string                `json:"narrative"`
}

// ActionKind is the type of a planned action
type ActionKind string

const (
	ActionRemind   ActionKind = "REMIND"
	ActionEscalate ActionKind = "ESCALATE"
	ActionReorder  ActionKind = "REORDER"
)

// PlanEntry is one typed action directive. It serializes as the string
// "KIND:target".
type PlanEntry struct {
	Kind   ActionKind
	Target string
}

// String renders the entry as "KIND:target"
func (p PlanEntry) String() string {
	return fmt.Sprintf("%s:%s", p.Kind, p.Target)
}

// MarshalJSON serializes the entry as its "KIND:target" string form
func (p PlanEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses the "KIND:target" string form
func (p *PlanEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind, target, found := strings.Cut(s, ":")
	if !found {
		return fmt.Errorf("malformed plan entry %q", s)
	}
	p.Kind = ActionKind(kind)
	p.Target = target
	return nil
}

// ActionLogEntry records one executed (logged) action
type ActionLogEntry struct {
	Type   ActionKind `json:"type"`
	Target string     `json:"target"`
	Status string     `json:"status"`
}

// Snapshot is the whole cycle state for one patient. It is loaded and
// saved wholesale by the persistence collaborator; the pipeline receives
// a snapshot and returns an updated one, never owning durable storage.
type Snapshot struct {
	PatientID       string                     `json:"patient_id"`
	CurrentTime     time.Time                  `json:"current_time"`
	Medications     []medication.Medication    `json:"medications"`
	Inventory       []medication.InventoryItem `json:"inventory"`
	Vitals          []health.VitalReading      `json:"vitals"`
	WellbeingLog    []health.WellbeingEntry    `json:"wellbeing_log"`
	Profile         health.Profile             `json:"patient_profile"`
	MissedDoseDates []string                   `json:"missed_dose_dates,omitempty"`

	// Written by the pipeline stages
	Observations []Observation    `json:"observations"`
	Reasoning    *ReasoningResult `json:"reasoning,omitempty"`
	Plan         []PlanEntry      `json:"plan"`
	ActionLog    []ActionLogEntry `json:"action_log"`
	Alerts       []string         `json:"alerts"`
}

// NewSnapshot builds an initial snapshot with empty collections
func NewSnapshot(patientID string, now time.Time) Snapshot {
	return Snapshot{
		PatientID:    patientID,
		CurrentTime:  now,
		Medications:  []medication.Medication{},
		Inventory:    []medication.InventoryItem{},
		Vitals:       []health.VitalReading{},
		WellbeingLog: []health.WellbeingEntry{},
		Observations: []Observation{},
		Plan:         []PlanEntry{},
		ActionLog:    []ActionLogEntry{},
		Alerts:       []string{},
	}
}

// FindObservation returns the observation with the given kind, if present
func FindObservation(observations []Observation, kind ObservationKind) (Observation, bool) {
	for _, obs := range observations {
		if obs.Kind == kind {
			return obs, true
		}
	}
	return Observation{}, false
}
