package reorder

import (
	"context"
	"testing"

	"github.com/LohithR22/DoseWise/internal/medication"
)

func TestRequestRefill(t *testing.T) {
	agent := NewAgent(nil, nil)

	req, err := agent.RequestRefill(context.Background(), "patient-1", "Metformin", 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if req.Medication != "Metformin" {
		t.Errorf("Expected Metformin, got %s", req.Medication)
	}
	if req.Quantity != DefaultRefillQuantity {
		t.Errorf("Expected default quantity %d, got %d", DefaultRefillQuantity, req.Quantity)
	}
	if req.Status != StatusPending {
		t.Errorf("Expected pending status, got %s", req.Status)
	}
	if req.PharmacyID != "default" {
		t.Errorf("Expected default pharmacy, got %q", req.PharmacyID)
	}
}

func TestRequestRefillRequiresMedication(t *testing.T) {
	agent := NewAgent(nil, nil)
	if _, err := agent.RequestRefill(context.Background(), "patient-1", "", 0); err == nil {
		t.Error("Expected validation error for empty medication name")
	}
}

func TestRequestRefillWithoutPharmacy(t *testing.T) {
	// An empty directory still records the request for manual follow-up.
	agent := NewAgent(&StaticDirectory{}, nil)

	req, err := agent.RequestRefill(context.Background(), "patient-1", "Metformin", 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if req.PharmacyID != "" {
		t.Errorf("Expected empty pharmacy id, got %q", req.PharmacyID)
	}
	if req.Quantity != 10 {
		t.Errorf("Expected quantity 10, got %d", req.Quantity)
	}
}

func TestCheckInventoryCreatesRequestsForLowItems(t *testing.T) {
	agent := NewAgent(nil, nil)

	items := []medication.InventoryItem{
		{Name: "Metformin", Quantity: 3, LowStockThreshold: 10},
		{Name: "Lisinopril", Quantity: 50, LowStockThreshold: 10},
	}

	created, err := agent.CheckInventory(context.Background(), "patient-1", items)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(created) != 1 || created[0].Medication != "Metformin" {
		t.Fatalf("Expected one request for Metformin, got %v", created)
	}

	// A second scan must not duplicate the pending request.
	created, err = agent.CheckInventory(context.Background(), "patient-1", items)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(created) != 0 {
		t.Errorf("Expected no duplicate requests, got %d", len(created))
	}
}

func TestRequestsFiltersByPatient(t *testing.T) {
	agent := NewAgent(nil, nil)
	ctx := context.Background()

	if _, err := agent.RequestRefill(ctx, "patient-1", "Metformin", 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := agent.RequestRefill(ctx, "patient-2", "Lisinopril", 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	reqs := agent.Requests("patient-1")
	if len(reqs) != 1 || reqs[0].Medication != "Metformin" {
		t.Errorf("Expected only patient-1's request, got %v", reqs)
	}
	if len(agent.Requests("patient-3")) != 0 {
		t.Error("Expected no requests for unknown patient")
	}
}

func TestStaticDirectoryAvailability(t *testing.T) {
	dir := NewStaticDirectory()

	avail, err := dir.CheckAvailability(context.Background(), "default", "Metformin")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !avail.InStock {
		t.Error("Expected static directory to report in stock")
	}

	if _, err := dir.CheckAvailability(context.Background(), "unknown", "Metformin"); err == nil {
		t.Error("Expected not found for unknown pharmacy")
	}
}
