package health

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VitalKind identifies the kind of vital reading
type VitalKind string

const (
	VitalHeartRate     VitalKind = "heart_rate"
	VitalBloodPressure VitalKind = "blood_pressure"
	VitalTemperature   VitalKind = "temperature"
	VitalGlucose       VitalKind = "glucose"
)

// Normal ranges for the fixed-threshold abnormality checks
const (
	HeartRateMin = 50.0
	HeartRateMax = 120.0
	SystolicMin  = 90.0
	SystolicMax  = 160.0
	DiastolicMin = 60.0
	DiastolicMax = 100.0
	TempMin      = 36.0
	TempMax      = 38.0
)

// VitalReading is a single recorded vital. Value is the raw value as
// entered: a number ("72", "37.5") or a compound blood pressure ("120/80").
type VitalReading struct {
	Kind       VitalKind `json:"kind"`
	Value      string    `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// WellbeingEntry is a free-text feeling/mood report
type WellbeingEntry struct {
	Feeling    string    `json:"feeling"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Number parses the reading value as a float. Returns false for compound
// or unparseable values.
func (v VitalReading) Number() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// BloodPressure parses a compound "systolic/diastolic" value. A plain
// number is treated as systolic with no diastolic component.
func (v VitalReading) BloodPressure() (systolic, diastolic float64, ok bool) {
	s := strings.ReplaceAll(strings.TrimSpace(v.Value), " ", "")
	if !strings.Contains(s, "/") {
		f, numOK := v.Number()
		return f, 0, numOK
	}
	parts := strings.SplitN(s, "/", 2)
	sys, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, false
	}
	dia, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return sys, 0, true
	}
	return sys, dia, true
}

// IsGlucose reports whether the reading kind refers to blood sugar
func (v VitalReading) IsGlucose() bool {
	kind := strings.ToLower(string(v.Kind))
	return strings.Contains(kind, "glucose") || strings.Contains(kind, "sugar")
}

// IsBPHigh reports whether the reading represents high blood pressure
// (systolic above sysHigh or diastolic above diaHigh). Only blood
// pressure readings qualify.
func (v VitalReading) IsBPHigh(sysHigh, diaHigh float64) bool {
	if v.Kind != VitalBloodPressure {
		return false
	}
	sys, dia, ok := v.BloodPressure()
	if !ok {
		return false
	}
	return sys > sysHigh || dia > diaHigh
}

// Abnormal checks the reading against the fixed normal ranges. The second
// return is a human-readable identifier for the abnormality; unparseable
// values report false, never abnormal.
func (v VitalReading) Abnormal() (bool, string) {
	switch v.Kind {
	case VitalHeartRate:
		f, ok := v.Number()
		if !ok {
			return false, ""
		}
		if f < HeartRateMin || f > HeartRateMax {
			return true, fmt.Sprintf("heart_rate=%s", v.Value)
		}
	case VitalBloodPressure:
		sys, dia, ok := v.BloodPressure()
		if !ok {
			return false, ""
		}
		if sys < SystolicMin || sys > SystolicMax {
			return true, fmt.Sprintf("blood_pressure=%s", v.Value)
		}
		if dia != 0 && (dia < DiastolicMin || dia > DiastolicMax) {
			return true, fmt.Sprintf("blood_pressure=%s", v.Value)
		}
	case VitalTemperature:
		f, ok := v.Number()
		if !ok {
			return false, ""
		}
		if f < TempMin || f > TempMax {
			return true, fmt.Sprintf("temperature=%s", v.Value)
		}
	}
	return false, ""
}

// Day returns the calendar day of the reading as YYYY-MM-DD
func (v VitalReading) Day() string {
	return v.RecordedAt.Format("2006-01-02")
}
