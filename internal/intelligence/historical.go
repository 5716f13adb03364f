package intelligence

import (
	"math"
	"time"

	"github.com/LohithR22/DoseWise/internal/health"
	"github.com/LohithR22/DoseWise/internal/medication"
)

// Historical analytics enrich caregiver-facing reports. They never alter
// the problem or urgency classification.

// TrendDirection labels how a metric moved over the analysis period
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// AdherenceReport summarizes medication adherence over a period
type AdherenceReport struct {
	OverallRate   float64           `json:"overall_rate"`
	ByMedication  map[string]string `json:"by_medication"`
	TotalExpected int               `json:"total_expected"`
	TotalTaken    int               `json:"total_taken"`
	PeriodDays    int               `json:"period_days"`
}

// MetricSummary holds the aggregate view of one vital metric
type MetricSummary struct {
	Average float64        `json:"average"`
	Min     float64        `json:"min"`
	Max     float64        `json:"max"`
	Trend   TrendDirection `json:"trend"`
}

// VitalTrendReport summarizes vital readings over a period
type VitalTrendReport struct {
	Metrics    map[string]MetricSummary `json:"metrics"`
	Count      int                      `json:"count"`
	PeriodDays int                      `json:"period_days"`
}

// WellbeingReport summarizes mood reports over a period
type WellbeingReport struct {
	Entries           int            `json:"entries"`
	MostCommonFeeling string         `json:"most_common_feeling"`
	Distribution      map[string]int `json:"feeling_distribution"`
	PeriodDays        int            `json:"period_days"`
}

// MetricComparison holds a period-over-period change for one metric
type MetricComparison struct {
	CurrentAverage    float64 `json:"current_average"`
	HistoricalAverage float64 `json:"historical_average"`
	Change            float64 `json:"change"`
	ChangePercent     float64 `json:"change_percent"`
	Direction         string  `json:"direction"`
}

// ComparativeReport compares the current period to a historical one
type ComparativeReport struct {
	Comparisons          map[string]MetricComparison `json:"comparisons"`
	CurrentPeriodDays    int                         `json:"current_period_days"`
	HistoricalPeriodDays int                         `json:"historical_period_days"`
}

// HistoricalContext bundles the analytics passed to the summarizer
type HistoricalContext struct {
	Adherence   AdherenceReport   `json:"adherence"`
	VitalTrends VitalTrendReport  `json:"vital_trends"`
	Wellbeing   WellbeingReport   `json:"wellbeing"`
	Comparative ComparativeReport `json:"comparative"`
}

// CalculateAdherenceRate estimates adherence over the period, one
// expected dose per medication per day. A medication counts as adhering
// when its last confirmed dose falls inside the period.
func CalculateAdherenceRate(meds []medication.Medication, days int, now time.Time) AdherenceReport {
	report := AdherenceReport{
		OverallRate:  100.0,
		ByMedication: make(map[string]string),
		PeriodDays:   days,
	}
	if len(meds) == 0 {
		return report
	}

	cutoff := now.AddDate(0, 0, -days)
	report.TotalExpected = len(meds) * days

	for _, med := range meds {
		switch {
		case med.LastTakenAt == nil:
			report.ByMedication[med.Name] = "Never taken"
		case med.LastTakenAt.After(cutoff) || med.LastTakenAt.Equal(cutoff):
			report.TotalTaken++
			report.ByMedication[med.Name] = "Recent dose taken"
		default:
			report.ByMedication[med.Name] = "No recent dose"
		}
	}

	if report.TotalExpected > 0 {
		report.OverallRate = round1(float64(report.TotalTaken) / float64(report.TotalExpected) * 100)
	}
	return report
}

// AnalyzeVitalTrends aggregates readings within the period per metric
// and labels how each moved.
func AnalyzeVitalTrends(vitals []health.VitalReading, days int, now time.Time) VitalTrendReport {
	report := VitalTrendReport{
		Metrics:    make(map[string]MetricSummary),
		PeriodDays: days,
	}

	cutoff := now.AddDate(0, 0, -days)
	values := make(map[string][]float64)

	for _, v := range vitals {
		if v.RecordedAt.IsZero() || v.RecordedAt.Before(cutoff) {
			continue
		}
		report.Count++

		switch v.Kind {
		case health.VitalBloodPressure:
			if sys, _, ok := v.BloodPressure(); ok {
				values["blood_pressure"] = append(values["blood_pressure"], sys)
			}
		case health.VitalHeartRate:
			if f, ok := v.Number(); ok {
				values["heart_rate"] = append(values["heart_rate"], f)
			}
		case health.VitalTemperature:
			if f, ok := v.Number(); ok {
				values["temperature"] = append(values["temperature"], f)
			}
		case health.VitalGlucose:
			if f, ok := v.Number(); ok {
				values["glucose"] = append(values["glucose"], f)
			}
		}
	}

	for metric, series := range values {
		report.Metrics[metric] = summarize(series)
	}
	return report
}

// AnalyzeWellbeingPatterns counts feelings reported within the period
func AnalyzeWellbeingPatterns(wellbeing []health.WellbeingEntry, days int, now time.Time) WellbeingReport {
	report := WellbeingReport{
		Distribution: make(map[string]int),
		PeriodDays:   days,
	}

	cutoff := now.AddDate(0, 0, -days)
	for _, entry := range wellbeing {
		if entry.RecordedAt.IsZero() || entry.RecordedAt.Before(cutoff) || entry.Feeling == "" {
			continue
		}
		report.Entries++
		report.Distribution[entry.Feeling]++
	}

	best := 0
	for feeling, count := range report.Distribution {
		if count > best {
			best = count
			report.MostCommonFeeling = feeling
		}
	}
	return report
}

// GenerateComparativeSummary compares the current period's metrics to a
// longer historical one.
func GenerateComparativeSummary(vitals []health.VitalReading, currentDays, historicalDays int, now time.Time) ComparativeReport {
	current := AnalyzeVitalTrends(vitals, currentDays, now)
	historical := AnalyzeVitalTrends(vitals, historicalDays, now)

	report := ComparativeReport{
		Comparisons:          make(map[string]MetricComparison),
		CurrentPeriodDays:    currentDays,
		HistoricalPeriodDays: historicalDays,
	}

	for metric, cur := range current.Metrics {
		hist, ok := historical.Metrics[metric]
		if !ok || hist.Average == 0 {
			continue
		}

		change := cur.Average - hist.Average
		direction := "stable"
		if change > 0 {
			direction = "increased"
		} else if change < 0 {
			direction = "decreased"
		}

		report.Comparisons[metric] = MetricComparison{
			CurrentAverage:    cur.Average,
			HistoricalAverage: hist.Average,
			Change:            round1(change),
			ChangePercent:     round1(change / hist.Average * 100),
			Direction:         direction,
		}
	}
	return report
}

// BuildHistoricalContext assembles the full analytics bundle for reporting
func BuildHistoricalContext(
	meds []medication.Medication,
	vitals []health.VitalReading,
	wellbeing []health.WellbeingEntry,
	now time.Time,
) HistoricalContext {
	return HistoricalContext{
		Adherence:   CalculateAdherenceRate(meds, 7, now),
		VitalTrends: AnalyzeVitalTrends(vitals, 7, now),
		Wellbeing:   AnalyzeWellbeingPatterns(wellbeing, 7, now),
		Comparative: GenerateComparativeSummary(vitals, 7, 14, now),
	}
}

// summarize computes min/max/average and a direction by comparing the
// first half of the series to the second.
func summarize(series []float64) MetricSummary {
	s := MetricSummary{Trend: TrendStable}
	if len(series) == 0 {
		return s
	}

	s.Min = series[0]
	s.Max = series[0]
	sum := 0.0
	for _, v := range series {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Average = round1(sum / float64(len(series)))

	if len(series) >= 2 {
		mid := len(series) / 2
		firstAvg := mean(series[:mid])
		secondAvg := mean(series[mid:])
		if firstAvg > 0 {
			diffPct := (secondAvg - firstAvg) / firstAvg * 100
			if diffPct > 5 {
				s.Trend = TrendIncreasing
			} else if diffPct < -5 {
				s.Trend = TrendDecreasing
			}
		}
	}
	return s
}

func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
