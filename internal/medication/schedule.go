package medication

import (
	"sort"
	"time"
)

// TimingOnDay combines an HH:MM timing with a calendar day in the given
// location. Malformed timings fall back to the default 08:00 dose.
func TimingOnDay(timing string, day time.Time) time.Time {
	hour, minute, ok := ParseTiming(timing)
	if !ok {
		hour, minute, _ = ParseTiming(DefaultTiming)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// EffectiveTimings returns the medication's timings, substituting the
// default single 08:00 dose when none are configured.
func EffectiveTimings(med Medication) []string {
	if len(med.Timings) == 0 {
		return []string{DefaultTiming}
	}
	return med.Timings
}

// NextDoseAfter computes the earliest scheduled dose strictly after t:
// the earliest timing later the same day, otherwise the earliest timing
// the following day.
func NextDoseAfter(med Medication, t time.Time) time.Time {
	timings := append([]string(nil), EffectiveTimings(med)...)
	sort.Strings(timings)

	for _, timing := range timings {
		at := TimingOnDay(timing, t)
		if at.After(t) {
			return at
		}
	}
	return TimingOnDay(timings[0], t.AddDate(0, 0, 1))
}

// MarkDoseTaken records a confirmed dose and recomputes the next dose
func MarkDoseTaken(med *Medication, takenAt time.Time) {
	med.LastTakenAt = &takenAt
	next := NextDoseAfter(*med, takenAt)
	med.NextDoseAt = &next
	med.UpdatedAt = time.Now()
}

// MissedDoseDates extracts the calendar days (YYYY-MM-DD) on which a dose
// was missed, judged at the supplied current time: a medication with
// dosing history whose next scheduled dose after the last confirmed one
// has already passed. Used by the trend analyzer.
func MissedDoseDates(meds []Medication, now time.Time) []string {
	seen := make(map[string]bool)
	var out []string
	for _, med := range meds {
		if med.LastTakenAt == nil {
			continue
		}
		next := NextDoseAfter(med, *med.LastTakenAt)
		if next.Before(now) {
			day := next.Format("2006-01-02")
			if !seen[day] {
				seen[day] = true
				out = append(out, day)
			}
		}
	}
	sort.Strings(out)
	return out
}
