package agent

import (
	"fmt"
	"log"
	"time"

	"github.com/LohithR22/DoseWise/internal/health"
	"github.com/LohithR22/DoseWise/internal/intelligence"
	"github.com/LohithR22/DoseWise/internal/medication"
	"github.com/LohithR22/DoseWise/internal/shared/metrics"
)

// TrendDetector is the trend-analysis dependency of the cycle runner
type TrendDetector interface {
	DetectTrends(
		vitals []health.VitalReading,
		meds []medication.Medication,
		inventory []medication.InventoryItem,
		wellbeing []health.WellbeingEntry,
		missedDoseDates []string,
		now time.Time,
	) []string
}

// SeverityFunc maps a list of alert strings to one severity level
type SeverityFunc func(alerts []string) intelligence.Severity

// Runner composes the pipeline stages into one repeatable cycle:
// observe, reason, plan, act. It holds no per-patient state; callers
// own snapshot load and save and must serialize cycles per patient.
type Runner struct {
	observer *Observer
	reasoner *Reasoner
	planner  *Planner
	actor    *Actor
	trends   TrendDetector
	severity SeverityFunc
}

// NewRunner builds a cycle runner. trends and severity may be nil, in
// which case the default analyzer and keyword assessor are used.
func NewRunner(lowStockThreshold int, trends TrendDetector, severity SeverityFunc) *Runner {
	if trends == nil {
		trends = intelligence.NewAnalyzer(intelligence.DefaultTrendConfig())
	}
	if severity == nil {
		severity = intelligence.AssessSeverity
	}
	return &Runner{
		observer: NewObserver(lowStockThreshold),
		reasoner: NewReasoner(),
		planner:  NewPlanner(),
		actor:    NewActor(),
		trends:   trends,
		severity: severity,
	}
}

// RunCycle executes one full cycle against the snapshot and returns the
// updated snapshot. A panic in any stage is recovered: the input
// snapshot is returned unchanged and a generic failure is reported, so
// one bad cycle never takes down the surrounding service.
func (r *Runner) RunCycle(snap Snapshot, now time.Time) (result Snapshot, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("agent: cycle panic for patient %s: %v", snap.PatientID, rec)
			metrics.RecordCycleFailure()
			result = snap
			err = fmt.Errorf("agent cycle failed for patient %s", snap.PatientID)
		}
	}()

	updated := snap
	updated.CurrentTime = now

	observations, enriched := r.observer.Observe(updated)
	updated.Medications = enriched
	updated.Observations = observations
	updated.MissedDoseDates = medication.MissedDoseDates(updated.Medications, now)

	trendAlerts := r.trends.DetectTrends(
		updated.Vitals,
		updated.Medications,
		updated.Inventory,
		updated.WellbeingLog,
		updated.MissedDoseDates,
		now,
	)
	trendSeverity := r.severity(trendAlerts)

	reasoning := r.reasoner.Reason(observations, trendAlerts, trendSeverity)
	updated.Reasoning = &reasoning

	plan := r.planner.Plan(reasoning, observations)
	updated.Plan = plan

	actionLog, alerts := r.actor.Act(plan)
	updated.ActionLog = actionLog
	updated.Alerts = alerts

	metrics.RecordCycle(string(reasoning.Problem), string(reasoning.Urgency), len(trendAlerts), reasoning.EscalationNeeded)
	for _, entry := range plan {
		metrics.RecordPlanEntry(string(entry.Kind))
	}

	return updated, nil
}
