// Package intelligence holds the rule-based trend detection and severity
// classification that drive escalation decisions. Deterministic, no
// external calls; the summarizer is the only component that talks to a
// service, and it never feeds back into classification.
package intelligence

import (
	"sort"
	"strings"
	"time"

	"github.com/LohithR22/DoseWise/internal/health"
	"github.com/LohithR22/DoseWise/internal/medication"
)

// Trend alert strings. The risk assessor matches on these, so they are
// fixed constants rather than formatted messages.
const (
	AlertSustainedHighBP    = "Sustained high BP over the last 3 days"
	AlertSugarInstability   = "Sugar instability linked to missed medication"
	AlertRepeatedlyUnwell   = "Patient reports feeling unwell repeatedly"
	AlertInventoryLow       = "Inventory repeatedly low for one or more medications"
	AlertElevatedBPToday    = "Elevated blood pressure recorded today"
	AlertElevatedSugarToday = "Elevated blood sugar recorded today"
)

var lowWellbeingKeywords = []string{"unwell", "not well", "bad", "poor", "low"}

// TrendConfig holds the thresholds for the trend rules
type TrendConfig struct {
	BPWindowDays         int
	BPConsecutiveDays    int
	BPSystolicHigh       float64
	BPDiastolicHigh      float64
	SugarSpikeThreshold  float64
	WellbeingRepeatCount int
	LowInventoryCount    int
}

// DefaultTrendConfig returns the standard rule thresholds
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		BPWindowDays:         14,
		BPConsecutiveDays:    3,
		BPSystolicHigh:       140,
		BPDiastolicHigh:      90,
		SugarSpikeThreshold:  180,
		WellbeingRepeatCount: 2,
		LowInventoryCount:    2,
	}
}

// Analyzer is the rule-based multi-day pattern detector
type Analyzer struct {
	cfg TrendConfig
}

// NewAnalyzer creates a trend analyzer with the given thresholds
func NewAnalyzer(cfg TrendConfig) *Analyzer {
	if cfg.BPWindowDays <= 0 {
		cfg = DefaultTrendConfig()
	}
	return &Analyzer{cfg: cfg}
}

// DetectTrends evaluates the four general trend rules independently, in
// fixed order, and returns every alert that matched.
func (a *Analyzer) DetectTrends(
	vitals []health.VitalReading,
	meds []medication.Medication,
	inventory []medication.InventoryItem,
	wellbeing []health.WellbeingEntry,
	missedDoseDates []string,
	now time.Time,
) []string {
	alerts := []string{}

	if a.sustainedHighBP(vitals, now) {
		alerts = append(alerts, AlertSustainedHighBP)
	}
	if a.sugarSpikeAfterMissedDose(vitals, missedDoseDates) {
		alerts = append(alerts, AlertSugarInstability)
	}
	if a.repeatedLowWellbeing(wellbeing) {
		alerts = append(alerts, AlertRepeatedlyUnwell)
	}
	if a.inventoryRepeatedlyLow(inventory) {
		alerts = append(alerts, AlertInventoryLow)
	}

	return alerts
}

// DetectTrendsForDay evaluates condition-aware checks for a single day's
// report and merges them with the general rules run over that day's data,
// de-duplicated by exact string.
func (a *Analyzer) DetectTrendsForDay(
	dayVitals []health.VitalReading,
	profile health.Profile,
	meds []medication.Medication,
	inventory []medication.InventoryItem,
	dayWellbeing []health.WellbeingEntry,
	now time.Time,
) []string {
	conditions := strings.ToLower(profile.Conditions)
	alerts := []string{}

	if strings.Contains(conditions, "hypertension") ||
		strings.Contains(conditions, "blood pressure") ||
		strings.Contains(conditions, "bp") {
		for _, v := range dayVitals {
			if v.IsBPHigh(a.cfg.BPSystolicHigh, a.cfg.BPDiastolicHigh) {
				alerts = append(alerts, AlertElevatedBPToday)
				break
			}
		}
	}

	if strings.Contains(conditions, "diabetes") ||
		strings.Contains(conditions, "sugar") ||
		strings.Contains(conditions, "glucose") {
		for _, v := range dayVitals {
			if !v.IsGlucose() {
				continue
			}
			if num, ok := v.Number(); ok && num > a.cfg.SugarSpikeThreshold {
				alerts = append(alerts, AlertElevatedSugarToday)
				break
			}
		}
	}

	seen := make(map[string]bool, len(alerts))
	for _, alert := range alerts {
		seen[alert] = true
	}
	for _, alert := range a.DetectTrends(dayVitals, meds, inventory, dayWellbeing, nil, now) {
		if !seen[alert] {
			seen[alert] = true
			alerts = append(alerts, alert)
		}
	}

	return alerts
}

// VitalsByDay groups readings by calendar day (YYYY-MM-DD) within the
// lookback window ending at now.
func VitalsByDay(vitals []health.VitalReading, windowDays int, now time.Time) map[string][]health.VitalReading {
	today := now.Format("2006-01-02")
	cutoff := now.AddDate(0, 0, -windowDays).Format("2006-01-02")

	byDay := make(map[string][]health.VitalReading)
	for _, v := range vitals {
		if v.RecordedAt.IsZero() {
			continue
		}
		day := v.Day()
		if day < cutoff || day > today {
			continue
		}
		byDay[day] = append(byDay[day], v)
	}
	return byDay
}

// VitalsForDate returns the readings recorded on a single day (YYYY-MM-DD)
func VitalsForDate(vitals []health.VitalReading, date string) []health.VitalReading {
	var out []health.VitalReading
	for _, v := range vitals {
		if !v.RecordedAt.IsZero() && v.Day() == date {
			out = append(out, v)
		}
	}
	return out
}

// sustainedHighBP: at least BPConsecutiveDays distinct days carry data in
// the window, and each of the most recent days-with-data shows at least
// one high blood pressure reading.
func (a *Analyzer) sustainedHighBP(vitals []health.VitalReading, now time.Time) bool {
	byDay := VitalsByDay(vitals, a.cfg.BPWindowDays, now)
	if len(byDay) < a.cfg.BPConsecutiveDays {
		return false
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	for _, day := range days[:a.cfg.BPConsecutiveDays] {
		foundHigh := false
		for _, v := range byDay[day] {
			if v.IsBPHigh(a.cfg.BPSystolicHigh, a.cfg.BPDiastolicHigh) {
				foundHigh = true
				break
			}
		}
		if !foundHigh {
			return false
		}
	}
	return true
}

// sugarSpikeAfterMissedDose: any glucose reading at or above the spike
// threshold recorded on or after a known missed-dose date.
func (a *Analyzer) sugarSpikeAfterMissedDose(vitals []health.VitalReading, missedDoseDates []string) bool {
	if len(missedDoseDates) == 0 {
		return false
	}
	for _, v := range vitals {
		if !v.IsGlucose() || v.RecordedAt.IsZero() {
			continue
		}
		num, ok := v.Number()
		if !ok || num < a.cfg.SugarSpikeThreshold {
			continue
		}
		day := v.Day()
		for _, missed := range missedDoseDates {
			if day >= missed {
				return true
			}
		}
	}
	return false
}

// repeatedLowWellbeing: at least WellbeingRepeatCount entries match a
// negative-sentiment keyword or a numeric low score.
func (a *Analyzer) repeatedLowWellbeing(wellbeing []health.WellbeingEntry) bool {
	count := 0
	for _, entry := range wellbeing {
		feeling := strings.ToLower(strings.TrimSpace(entry.Feeling))
		if feeling == "" {
			continue
		}
		if feeling == "1" || feeling == "2" {
			count++
			continue
		}
		for _, keyword := range lowWellbeingKeywords {
			if strings.Contains(feeling, keyword) {
				count++
				break
			}
		}
	}
	return count >= a.cfg.WellbeingRepeatCount
}

// inventoryRepeatedlyLow: multiple items at or below threshold, or a
// single low item in a tracked set of at most two.
func (a *Analyzer) inventoryRepeatedlyLow(inventory []medication.InventoryItem) bool {
	if len(inventory) == 0 {
		return false
	}
	low := 0
	for _, item := range inventory {
		if item.IsLow() {
			low++
		}
	}
	return low >= a.cfg.LowInventoryCount || (low >= 1 && len(inventory) <= 2)
}
