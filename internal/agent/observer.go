package agent

import (
	"time"

	"github.com/LohithR22/DoseWise/internal/medication"
)

// Observer derives categorical observations from the raw medication,
// inventory and vitals records and the current time. It performs no I/O.
type Observer struct {
	lowStockThreshold int
}

// NewObserver builds an observer. threshold is the low-stock default
// applied to inventory items without one of their own; zero selects the
// canonical default.
func NewObserver(threshold int) *Observer {
	if threshold <= 0 {
		threshold = medication.DefaultLowStockThreshold
	}
	return &Observer{lowStockThreshold: threshold}
}

// Observe computes the four observation categories and returns the
// medication list enriched with next_dose_at. The input snapshot is not
// modified.
func (o *Observer) Observe(snap Snapshot) ([]Observation, []medication.Medication) {
	now := snap.CurrentTime
	if now.IsZero() {
		now = time.Now()
	}

	enriched := make([]medication.Medication, len(snap.Medications))
	copy(enriched, snap.Medications)

	due := []string{}
	missed := []string{}
	for i := range enriched {
		next := medication.NextDoseAfter(enriched[i], now)
		enriched[i].NextDoseAt = &next

		if o.isDue(enriched[i], now) {
			due = append(due, enriched[i].Name)
		}
		// Missed detection requires dosing history: a medication never
		// taken is only ever due, not missed.
		if enriched[i].LastTakenAt != nil {
			expected := medication.NextDoseAfter(enriched[i], *enriched[i].LastTakenAt)
			if expected.Before(now) {
				missed = append(missed, enriched[i].Name)
			}
		}
	}

	low := []string{}
	for _, item := range snap.Inventory {
		threshold := item.LowStockThreshold
		if threshold <= 0 {
			threshold = o.lowStockThreshold
		}
		if item.Quantity <= threshold {
			low = append(low, item.Name)
		}
	}

	abnormal := []string{}
	for _, reading := range snap.Vitals {
		if bad, ident := reading.Abnormal(); bad {
			abnormal = append(abnormal, ident)
		}
	}

	return []Observation{
		{Kind: ObsDueMedicines, Items: due},
		{Kind: ObsMissedDoses, Items: missed},
		{Kind: ObsLowInventory, Items: low},
		{Kind: ObsAbnormalVitals, Items: abnormal},
	}, enriched
}

// isDue reports whether any of the medication's timings, placed on
// today's date, is at or before now.
func (o *Observer) isDue(med medication.Medication, now time.Time) bool {
	for _, timing := range medication.EffectiveTimings(med) {
		scheduled := medication.TimingOnDay(timing, now)
		if !scheduled.After(now) {
			return true
		}
	}
	return false
}
