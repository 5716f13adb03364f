package intelligence

import (
	"testing"
	"time"

	"github.com/LohithR22/DoseWise/internal/health"
	"github.com/LohithR22/DoseWise/internal/medication"
)

func day(offset int) time.Time {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func bpReading(at time.Time, value string) health.VitalReading {
	return health.VitalReading{Kind: health.VitalBloodPressure, Value: value, RecordedAt: at}
}

func TestSustainedHighBPThreeDays(t *testing.T) {
	now := day(0)
	analyzer := NewAnalyzer(DefaultTrendConfig())

	// 3 consecutive days, each with at least one high reading
	vitals := []health.VitalReading{
		bpReading(day(-2), "150/95"),
		bpReading(day(-1), "145/92"),
		bpReading(day(0), "142/91"),
	}

	alerts := analyzer.DetectTrends(vitals, nil, nil, nil, nil, now)
	if !contains(alerts, AlertSustainedHighBP) {
		t.Errorf("Expected sustained high BP alert, got %v", alerts)
	}
}

func TestSustainedHighBPTwoDaysNotEnough(t *testing.T) {
	now := day(0)
	analyzer := NewAnalyzer(DefaultTrendConfig())

	// Only 2 days with data: must not trigger
	vitals := []health.VitalReading{
		bpReading(day(-1), "150/95"),
		bpReading(day(0), "145/92"),
	}

	alerts := analyzer.DetectTrends(vitals, nil, nil, nil, nil, now)
	if contains(alerts, AlertSustainedHighBP) {
		t.Errorf("Expected no sustained high BP alert for 2 days, got %v", alerts)
	}
}

func TestSustainedHighBPNormalRecentDay(t *testing.T) {
	now := day(0)
	analyzer := NewAnalyzer(DefaultTrendConfig())

	// 3 days with data but the most recent is normal
	vitals := []health.VitalReading{
		bpReading(day(-2), "150/95"),
		bpReading(day(-1), "145/92"),
		bpReading(day(0), "120/80"),
	}

	alerts := analyzer.DetectTrends(vitals, nil, nil, nil, nil, now)
	if contains(alerts, AlertSustainedHighBP) {
		t.Errorf("Expected no alert when the latest day is normal, got %v", alerts)
	}
}

func TestSugarInstabilityAfterMissedDose(t *testing.T) {
	now := day(0)
	analyzer := NewAnalyzer(DefaultTrendConfig())

	vitals := []health.VitalReading{
		{Kind: health.VitalGlucose, Value: "195", RecordedAt: day(0)},
	}
	missed := []string{day(-1).Format("2006-01-02")}

	alerts := analyzer.DetectTrends(vitals, nil, nil, nil, missed, now)
	if !contains(alerts, AlertSugarInstability) {
		t.Errorf("Expected sugar instability alert, got %v", alerts)
	}

	// Spike before the missed date does not count
	vitals[0].RecordedAt = day(-3)
	alerts = analyzer.DetectTrends(vitals, nil, nil, nil, missed, now)
	if contains(alerts, AlertSugarInstability) {
		t.Errorf("Expected no alert for a spike before the missed dose, got %v", alerts)
	}
}

func TestRepeatedLowWellbeing(t *testing.T) {
	now := day(0)
	analyzer := NewAnalyzer(DefaultTrendConfig())

	wellbeing := []health.WellbeingEntry{
		{Feeling: "feeling unwell today", RecordedAt: day(-1)},
		{Feeling: "pretty bad", RecordedAt: day(0)},
	}

	alerts := analyzer.DetectTrends(nil, nil, nil, wellbeing, nil, now)
	if !contains(alerts, AlertRepeatedlyUnwell) {
		t.Errorf("Expected repeated low wellbeing alert, got %v", alerts)
	}

	// One report is below the repeat threshold
	alerts = analyzer.DetectTrends(nil, nil, nil, wellbeing[:1], nil, now)
	if contains(alerts, AlertRepeatedlyUnwell) {
		t.Errorf("Expected no alert for a single report, got %v", alerts)
	}
}

func TestChronicLowInventory(t *testing.T) {
	now := day(0)
	analyzer := NewAnalyzer(DefaultTrendConfig())

	tests := []struct {
		name      string
		inventory []medication.InventoryItem
		want      bool
	}{
		{
			"Two low items",
			[]medication.InventoryItem{
				{Name: "A", Quantity: 2, LowStockThreshold: 10},
				{Name: "B", Quantity: 3, LowStockThreshold: 10},
				{Name: "C", Quantity: 50, LowStockThreshold: 10},
			},
			true,
		},
		{
			"One low item of two tracked",
			[]medication.InventoryItem{
				{Name: "A", Quantity: 2, LowStockThreshold: 10},
				{Name: "B", Quantity: 50, LowStockThreshold: 10},
			},
			true,
		},
		{
			"One low item of many",
			[]medication.InventoryItem{
				{Name: "A", Quantity: 2, LowStockThreshold: 10},
				{Name: "B", Quantity: 50, LowStockThreshold: 10},
				{Name: "C", Quantity: 50, LowStockThreshold: 10},
			},
			false,
		},
		{
			"Nothing low",
			[]medication.InventoryItem{
				{Name: "A", Quantity: 50, LowStockThreshold: 10},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := analyzer.DetectTrends(nil, nil, tt.inventory, nil, nil, now)
			got := contains(alerts, AlertInventoryLow)
			if got != tt.want {
				t.Errorf("Expected alert=%v, got %v (%v)", tt.want, got, alerts)
			}
		})
	}
}

func TestDetectTrendsForDayConditions(t *testing.T) {
	now := day(0)
	analyzer := NewAnalyzer(DefaultTrendConfig())
	profile := health.Profile{Conditions: "hypertension, diabetes"}

	dayVitals := []health.VitalReading{
		bpReading(day(0), "155/95"),
		{Kind: health.VitalGlucose, Value: "200", RecordedAt: day(0)},
	}

	alerts := analyzer.DetectTrendsForDay(dayVitals, profile, nil, nil, nil, now)
	if !contains(alerts, AlertElevatedBPToday) {
		t.Errorf("Expected elevated BP alert for hypertension patient, got %v", alerts)
	}
	if !contains(alerts, AlertElevatedSugarToday) {
		t.Errorf("Expected elevated sugar alert for diabetes patient, got %v", alerts)
	}

	// Without matching conditions the day-scoped checks stay silent
	alerts = analyzer.DetectTrendsForDay(dayVitals, health.Profile{Conditions: "asthma"}, nil, nil, nil, now)
	if contains(alerts, AlertElevatedBPToday) || contains(alerts, AlertElevatedSugarToday) {
		t.Errorf("Expected no condition-scoped alerts for asthma, got %v", alerts)
	}
}

func TestAlertOrderIsFixed(t *testing.T) {
	now := day(0)
	analyzer := NewAnalyzer(DefaultTrendConfig())

	vitals := []health.VitalReading{
		bpReading(day(-2), "150/95"),
		bpReading(day(-1), "145/92"),
		bpReading(day(0), "142/91"),
		{Kind: health.VitalGlucose, Value: "195", RecordedAt: day(0)},
	}
	wellbeing := []health.WellbeingEntry{
		{Feeling: "unwell", RecordedAt: day(-1)},
		{Feeling: "poor", RecordedAt: day(0)},
	}
	inventory := []medication.InventoryItem{
		{Name: "A", Quantity: 2, LowStockThreshold: 10},
		{Name: "B", Quantity: 3, LowStockThreshold: 10},
	}
	missed := []string{day(-1).Format("2006-01-02")}

	alerts := analyzer.DetectTrends(vitals, nil, inventory, wellbeing, missed, now)
	want := []string{
		AlertSustainedHighBP,
		AlertSugarInstability,
		AlertRepeatedlyUnwell,
		AlertInventoryLow,
	}
	if len(alerts) != len(want) {
		t.Fatalf("Expected %d alerts, got %d: %v", len(want), len(alerts), alerts)
	}
	for i := range want {
		if alerts[i] != want[i] {
			t.Errorf("Expected alerts[%d] = %q, got %q", i, want[i], alerts[i])
		}
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
