package health

import (
	"testing"
	"time"
)

func TestAbnormalHeartRate(t *testing.T) {
	tests := []struct {
		value    string
		abnormal bool
	}{
		{"50", false}, // boundaries are inclusive-normal
		{"120", false},
		{"49", true},
		{"121", true},
		{"72", false},
		{"fast", false}, // unparseable, skipped
	}
	for _, tt := range tests {
		r := VitalReading{Kind: VitalHeartRate, Value: tt.value}
		got, _ := r.Abnormal()
		if got != tt.abnormal {
			t.Errorf("Heart rate %q: expected abnormal=%v, got %v", tt.value, tt.abnormal, got)
		}
	}
}

func TestAbnormalBloodPressure(t *testing.T) {
	tests := []struct {
		value    string
		abnormal bool
	}{
		{"120/80", false},
		{"90/60", false},
		{"160/100", false},
		{"89/70", true},  // systolic low
		{"161/80", true}, // systolic high
		{"120/59", true}, // diastolic low
		{"120/101", true},
		{"150", false}, // plain systolic inside range
		{"85", true},   // plain systolic below range
		{"high", false},
	}
	for _, tt := range tests {
		r := VitalReading{Kind: VitalBloodPressure, Value: tt.value}
		got, _ := r.Abnormal()
		if got != tt.abnormal {
			t.Errorf("Blood pressure %q: expected abnormal=%v, got %v", tt.value, tt.abnormal, got)
		}
	}
}

func TestAbnormalTemperature(t *testing.T) {
	tests := []struct {
		value    string
		abnormal bool
	}{
		{"36", false},
		{"38", false},
		{"35.9", true},
		{"38.1", true},
	}
	for _, tt := range tests {
		r := VitalReading{Kind: VitalTemperature, Value: tt.value}
		got, _ := r.Abnormal()
		if got != tt.abnormal {
			t.Errorf("Temperature %q: expected abnormal=%v, got %v", tt.value, tt.abnormal, got)
		}
	}
}

func TestGlucoseNeverAbnormal(t *testing.T) {
	// Glucose has no fixed range; only the trend analyzer judges it.
	r := VitalReading{Kind: VitalGlucose, Value: "400"}
	if got, _ := r.Abnormal(); got {
		t.Error("Expected glucose readings to pass the fixed-range check")
	}
}

func TestBloodPressureParsing(t *testing.T) {
	tests := []struct {
		value string
		sys   float64
		dia   float64
		ok    bool
	}{
		{"120/80", 120, 80, true},
		{"120 / 80", 120, 80, true},
		{"135", 135, 0, true},
		{"120/", 120, 0, true},
		{"abc/80", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		r := VitalReading{Kind: VitalBloodPressure, Value: tt.value}
		sys, dia, ok := r.BloodPressure()
		if ok != tt.ok || sys != tt.sys || dia != tt.dia {
			t.Errorf("BloodPressure(%q): expected (%v, %v, %v), got (%v, %v, %v)",
				tt.value, tt.sys, tt.dia, tt.ok, sys, dia, ok)
		}
	}
}

func TestIsBPHigh(t *testing.T) {
	tests := []struct {
		kind  VitalKind
		value string
		high  bool
	}{
		{VitalBloodPressure, "142/91", true},
		{VitalBloodPressure, "140/90", false}, // strictly above
		{VitalBloodPressure, "138/92", true},
		{VitalBloodPressure, "120/80", false},
		{VitalHeartRate, "150", false}, // wrong kind
	}
	for _, tt := range tests {
		r := VitalReading{Kind: tt.kind, Value: tt.value}
		if got := r.IsBPHigh(140, 90); got != tt.high {
			t.Errorf("IsBPHigh(%s %q): expected %v, got %v", tt.kind, tt.value, tt.high, got)
		}
	}
}

func TestIsGlucose(t *testing.T) {
	tests := []struct {
		kind VitalKind
		want bool
	}{
		{VitalGlucose, true},
		{VitalKind("blood_sugar"), true},
		{VitalHeartRate, false},
	}
	for _, tt := range tests {
		r := VitalReading{Kind: tt.kind}
		if r.IsGlucose() != tt.want {
			t.Errorf("IsGlucose(%s): expected %v, got %v", tt.kind, tt.want, r.IsGlucose())
		}
	}
}

func TestDay(t *testing.T) {
	r := VitalReading{RecordedAt: time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)}
	if r.Day() != "2026-03-10" {
		t.Errorf("Expected 2026-03-10, got %s", r.Day())
	}
}
