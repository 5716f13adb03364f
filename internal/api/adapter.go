package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LohithR22/DoseWise/internal/health"
)

// The frontend and older clients send several alias keys for the same
// concept (med_name/name/id, type/metric, timestamp/recorded_at). The
// adapters below normalize those at the boundary so only canonical
// fields reach the domain types.

// SetupMedicationItem is one medication in a setup payload
type SetupMedicationItem struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Time      string `json:"time,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// SetupRequest is the body for POST /setup/medications
type SetupRequest struct {
	Name        string                `json:"name,omitempty"`
	Age         string                `json:"age,omitempty"`
	Conditions  string                `json:"conditions,omitempty"`
	Medications []SetupMedicationItem `json:"medications"`
}

// DoseConfirmRequest is the body for POST /dose/confirm. Older clients
// send a medication id instead of a name; the handler resolves it
// against the stored medications.
type DoseConfirmRequest struct {
	MedicationName string     `json:"medication_name,omitempty"`
	MedicationID   string     `json:"medication_id,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
	ScheduledTime  string     `json:"scheduled_time,omitempty"`
}

// VitalsRequest is the body for POST /vitals/submit. Clients send either
// dedicated fields (heart_rate, blood_pressure, temperature) or a
// generic type/metric plus value pair.
type VitalsRequest struct {
	HeartRate     *float64        `json:"heart_rate,omitempty"`
	BloodPressure string          `json:"blood_pressure,omitempty"`
	Temperature   *float64        `json:"temperature,omitempty"`
	Glucose       *float64        `json:"glucose,omitempty"`
	Type          string          `json:"type,omitempty"`
	Metric        string          `json:"metric,omitempty"`
	Value         json.RawMessage `json:"value,omitempty"`
	RecordedAt    *time.Time      `json:"recorded_at,omitempty"`
	Timestamp     *time.Time      `json:"timestamp,omitempty"`
}

// WellbeingRequest is the body for POST /wellbeing/submit
type WellbeingRequest struct {
	Feeling    string     `json:"feeling"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// Readings converts the request into canonical vital readings. Entries
// without a usable value are skipped rather than rejected.
func (r VitalsRequest) Readings(now time.Time) []health.VitalReading {
	recordedAt := now
	if r.RecordedAt != nil {
		recordedAt = *r.RecordedAt
	} else if r.Timestamp != nil {
		recordedAt = *r.Timestamp
	}

	readings := []health.VitalReading{}
	if r.HeartRate != nil {
		readings = append(readings, health.VitalReading{
			Kind: health.VitalHeartRate, Value: formatNumber(*r.HeartRate), RecordedAt: recordedAt,
		})
	}
	if r.BloodPressure != "" {
		readings = append(readings, health.VitalReading{
			Kind: health.VitalBloodPressure, Value: r.BloodPressure, RecordedAt: recordedAt,
		})
	}
	if r.Temperature != nil {
		readings = append(readings, health.VitalReading{
			Kind: health.VitalTemperature, Value: formatNumber(*r.Temperature), RecordedAt: recordedAt,
		})
	}
	if r.Glucose != nil {
		readings = append(readings, health.VitalReading{
			Kind: health.VitalGlucose, Value: formatNumber(*r.Glucose), RecordedAt: recordedAt,
		})
	}

	// Generic type/metric aliases with a raw value
	kind := r.Type
	if kind == "" {
		kind = r.Metric
	}
	if kind != "" && len(r.Value) > 0 {
		var value string
		if err := json.Unmarshal(r.Value, &value); err != nil {
			var num float64
			if err := json.Unmarshal(r.Value, &num); err == nil {
				value = formatNumber(num)
			}
		}
		if value != "" {
			readings = append(readings, health.VitalReading{
				Kind: health.VitalKind(strings.ToLower(kind)), Value: value, RecordedAt: recordedAt,
			})
		}
	}

	return readings
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
