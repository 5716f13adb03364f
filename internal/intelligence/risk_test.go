package intelligence

import "testing"

func TestAssessSeverityTiers(t *testing.T) {
	tests := []struct {
		alerts []string
		want   Severity
	}{
		{nil, SeverityLow},
		{[]string{}, SeverityLow},
		{[]string{"Routine reading recorded"}, SeverityLow},
		{[]string{"Missed dose detected"}, SeverityMedium},
		{[]string{"Chronic low inventory for 2 medications"}, SeverityMedium},
		{[]string{"Sustained high BP for 3 days"}, SeverityHigh},
		{[]string{"Sugar instability after missed dose"}, SeverityHigh},
		{[]string{"Patient reported feeling unwell repeatedly"}, SeverityHigh},
		{[]string{"Medication out of stock"}, SeverityCritical},
		{[]string{"CRITICAL: patient unresponsive"}, SeverityCritical},
	}
	for _, tt := range tests {
		if got := AssessSeverity(tt.alerts); got != tt.want {
			t.Errorf("AssessSeverity(%v): expected %s, got %s", tt.alerts, tt.want, got)
		}
	}
}

func TestAssessSeverityHighestTierWins(t *testing.T) {
	// The critical tier is scanned across the whole list before any
	// lower tier is consulted.
	alerts := []string{"Missed dose detected", "Emergency restock required"}
	if got := AssessSeverity(alerts); got != SeverityCritical {
		t.Errorf("Expected critical, got %s", got)
	}
}

func TestAssessSeverityOrderIndependent(t *testing.T) {
	forward := []string{"Missed dose detected", "Sustained high BP for 3 days", "Low inventory"}
	reversed := []string{"Low inventory", "Sustained high BP for 3 days", "Missed dose detected"}

	if AssessSeverity(forward) != AssessSeverity(reversed) {
		t.Errorf("Expected same severity regardless of alert order, got %s vs %s",
			AssessSeverity(forward), AssessSeverity(reversed))
	}
	if got := AssessSeverity(forward); got != SeverityHigh {
		t.Errorf("Expected high, got %s", got)
	}
}

func TestAssessSeverityCaseInsensitive(t *testing.T) {
	if got := AssessSeverity([]string{"SUSTAINED HIGH BP over three days"}); got != SeverityHigh {
		t.Errorf("Expected high for upper-case alert, got %s", got)
	}
}
