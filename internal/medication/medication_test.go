package medication

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/LohithR22/DoseWise/internal/shared/errors"
)

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry()

	med, err := r.Add("Metformin", "500mg", []string{"20:00", "08:00"}, FoodAfter)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if med.Name != "Metformin" {
		t.Errorf("Expected name Metformin, got %s", med.Name)
	}
	if len(med.Timings) != 2 || med.Timings[0] != "08:00" || med.Timings[1] != "20:00" {
		t.Errorf("Expected sorted timings [08:00 20:00], got %v", med.Timings)
	}

	_, err = r.Add("Metformin", "850mg", []string{"09:00"}, FoodAfter)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != "CONFLICT" {
		t.Errorf("Expected CONFLICT for duplicate medication, got %v", err)
	}
}

func TestRegistryAddValidation(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name    string
		dosage  string
		timings []string
		food    FoodRelation
	}{
		{"", "500mg", []string{"08:00"}, FoodAfter},
		{"Metformin", "", []string{"08:00"}, FoodAfter},
		{"Metformin", "500mg", nil, FoodAfter},
		{"Metformin", "500mg", []string{"25:00"}, FoodAfter},
		{"Metformin", "500mg", []string{"8am"}, FoodAfter},
		{"Metformin", "500mg", []string{"08:00"}, FoodRelation("with")},
	}
	for _, tt := range tests {
		if _, err := r.Add(tt.name, tt.dosage, tt.timings, tt.food); err == nil {
			t.Errorf("Expected validation error for %q/%q/%v/%q, got nil",
				tt.name, tt.dosage, tt.timings, tt.food)
		}
	}
}

func TestRegistryAllPreservesOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"Zinc", "Aspirin", "Metformin"} {
		if _, err := r.Add(name, "1 tablet", []string{"08:00"}, FoodAnytime); err != nil {
			t.Fatalf("Expected no error adding %s, got %v", name, err)
		}
	}

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("Expected 3 medications, got %d", len(all))
	}
	for i, want := range []string{"Zinc", "Aspirin", "Metformin"} {
		if all[i].Name != want {
			t.Errorf("Expected %s at position %d, got %s", want, i, all[i].Name)
		}
	}
}

func TestRegistryUpdateAndDelete(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Add("Metformin", "500mg", []string{"08:00"}, FoodAfter); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	med, err := r.Update("Metformin", "850mg", nil, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if med.Dosage != "850mg" {
		t.Errorf("Expected dosage 850mg, got %s", med.Dosage)
	}
	if len(med.Timings) != 1 || med.Timings[0] != "08:00" {
		t.Errorf("Expected timings unchanged, got %v", med.Timings)
	}

	if _, err := r.Update("Unknown", "1mg", nil, ""); err == nil {
		t.Error("Expected not found error for unknown medication")
	}

	if !r.Delete("Metformin") {
		t.Error("Expected delete to succeed")
	}
	if r.Delete("Metformin") {
		t.Error("Expected second delete to fail")
	}
}

func TestTimingOnDayMalformedFallsBack(t *testing.T) {
	day := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		timing string
		hour   int
		minute int
	}{
		{"07:45", 7, 45},
		{"garbage", 8, 0},
		{"25:00", 8, 0},
		{"", 8, 0},
	}
	for _, tt := range tests {
		at := TimingOnDay(tt.timing, day)
		if at.Hour() != tt.hour || at.Minute() != tt.minute {
			t.Errorf("TimingOnDay(%q): expected %02d:%02d, got %02d:%02d",
				tt.timing, tt.hour, tt.minute, at.Hour(), at.Minute())
		}
		if at.Year() != 2026 || at.Month() != time.March || at.Day() != 10 {
			t.Errorf("TimingOnDay(%q): expected date preserved, got %v", tt.timing, at)
		}
	}
}

func TestNextDoseAfter(t *testing.T) {
	med := Medication{Name: "Metformin", Timings: []string{"08:00", "20:00"}}
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		at   time.Time
		want time.Time
	}{
		{day.Add(7 * time.Hour), day.Add(8 * time.Hour)},
		{day.Add(8 * time.Hour), day.Add(20 * time.Hour)}, // strictly after
		{day.Add(12 * time.Hour), day.Add(20 * time.Hour)},
		{day.Add(21 * time.Hour), day.AddDate(0, 0, 1).Add(8 * time.Hour)},
	}
	for _, tt := range tests {
		got := NextDoseAfter(med, tt.at)
		if !got.Equal(tt.want) {
			t.Errorf("NextDoseAfter at %v: expected %v, got %v", tt.at, tt.want, got)
		}
	}
}

func TestNextDoseAfterNoTimings(t *testing.T) {
	med := Medication{Name: "Vitamin D"}
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	got := NextDoseAfter(med, at)
	want := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected default 08:00 next day, got %v", got)
	}
}

func TestMissedDoseDates(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	taken := time.Date(2026, 3, 8, 8, 30, 0, 0, time.UTC)

	meds := []Medication{
		{Name: "Metformin", Timings: []string{"08:00"}, LastTakenAt: &taken},
		{Name: "Lisinopril", Timings: []string{"08:00"}}, // never taken, never missed
	}

	dates := MissedDoseDates(meds, now)
	if len(dates) != 1 {
		t.Fatalf("Expected 1 missed date, got %d: %v", len(dates), dates)
	}
	if dates[0] != "2026-03-09" {
		t.Errorf("Expected missed date 2026-03-09, got %s", dates[0])
	}
}

func TestMissedDoseDatesDeduplicates(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	taken := time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)

	meds := []Medication{
		{Name: "Metformin", Timings: []string{"08:00"}, LastTakenAt: &taken},
		{Name: "Lisinopril", Timings: []string{"09:00"}, LastTakenAt: &taken},
	}

	dates := MissedDoseDates(meds, now)
	if len(dates) != 1 || dates[0] != "2026-03-10" {
		t.Errorf("Expected single deduplicated date 2026-03-10, got %v", dates)
	}
}

func TestMarkDoseTaken(t *testing.T) {
	med := Medication{Name: "Metformin", Timings: []string{"08:00", "20:00"}}
	at := time.Date(2026, 3, 10, 8, 5, 0, 0, time.UTC)

	MarkDoseTaken(&med, at)
	if med.LastTakenAt == nil || !med.LastTakenAt.Equal(at) {
		t.Errorf("Expected last taken %v, got %v", at, med.LastTakenAt)
	}
	want := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	if med.NextDoseAt == nil || !med.NextDoseAt.Equal(want) {
		t.Errorf("Expected next dose %v, got %v", want, med.NextDoseAt)
	}
}

func TestInventoryIsLowBoundary(t *testing.T) {
	tests := []struct {
		quantity  int
		threshold int
		low       bool
	}{
		{11, 10, false},
		{10, 10, true}, // inclusive
		{9, 10, true},
		{0, 10, true},
		{10, 0, true}, // unset threshold falls back to default 10
		{11, 0, false},
	}
	for _, tt := range tests {
		item := InventoryItem{Name: "Metformin", Quantity: tt.quantity, LowStockThreshold: tt.threshold}
		if item.IsLow() != tt.low {
			t.Errorf("Quantity %d threshold %d: expected low=%v, got %v",
				tt.quantity, tt.threshold, tt.low, item.IsLow())
		}
	}
}

func TestInventoryDecrement(t *testing.T) {
	m := NewInventoryManager(0, nil)
	if _, err := m.Add("Metformin", 5, 10); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	remaining, err := m.Decrement(context.Background(), "Metformin", 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if remaining != 4 {
		t.Errorf("Expected 4 remaining, got %d", remaining)
	}

	_, err = m.Decrement(context.Background(), "Metformin", 10)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != "INSUFFICIENT_STOCK" {
		t.Errorf("Expected INSUFFICIENT_STOCK, got %v", err)
	}
	if item, _ := m.Get("Metformin"); item.Quantity != 4 {
		t.Errorf("Expected quantity unchanged at 4 after failed decrement, got %d", item.Quantity)
	}

	if _, err := m.Decrement(context.Background(), "Unknown", 1); err == nil {
		t.Error("Expected not found error for unknown medication")
	}
}

type captureNotifier struct {
	alerts []string
}

func (c *captureNotifier) SendLowInventoryAlert(ctx context.Context, medication string, quantity, threshold int) error {
	c.alerts = append(c.alerts, medication)
	return nil
}

func TestDecrementFiresAlertOnThresholdCrossing(t *testing.T) {
	notifier := &captureNotifier{}
	m := NewInventoryManager(0, notifier)
	if _, err := m.Add("Metformin", 11, 10); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// 11 -> 10 crosses the threshold
	if _, err := m.Decrement(context.Background(), "Metformin", 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(notifier.alerts) != 1 {
		t.Fatalf("Expected 1 alert after crossing threshold, got %d", len(notifier.alerts))
	}

	// 10 -> 9 is already below, no second alert
	if _, err := m.Decrement(context.Background(), "Metformin", 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(notifier.alerts) != 1 {
		t.Errorf("Expected no additional alert below threshold, got %d", len(notifier.alerts))
	}
}

func TestInventoryIncrementAndSetQuantity(t *testing.T) {
	m := NewInventoryManager(0, nil)
	if _, err := m.Add("Metformin", 2, 10); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	qty, err := m.Increment("Metformin", 30)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if qty != 32 {
		t.Errorf("Expected 32 after refill, got %d", qty)
	}

	if _, err := m.Increment("Metformin", 0); err == nil {
		t.Error("Expected error for non-positive increment")
	}

	qty, err = m.SetQuantity("Metformin", 7)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if qty != 7 {
		t.Errorf("Expected 7 after set, got %d", qty)
	}
	if _, err := m.SetQuantity("Metformin", -1); err == nil {
		t.Error("Expected error for negative quantity")
	}
}

func TestHydrateInventoryAppliesDefaultThreshold(t *testing.T) {
	m := HydrateInventory([]InventoryItem{
		{Name: "Metformin", Quantity: 5},
		{Name: "Lisinopril", Quantity: 50, LowStockThreshold: 3},
	}, nil)

	item, ok := m.Get("Metformin")
	if !ok || item.LowStockThreshold != DefaultLowStockThreshold {
		t.Errorf("Expected default threshold %d, got %+v", DefaultLowStockThreshold, item)
	}

	low := m.LowStock()
	if len(low) != 1 || low[0].Name != "Metformin" {
		t.Errorf("Expected only Metformin low, got %v", low)
	}
}
