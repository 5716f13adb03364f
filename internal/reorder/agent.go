// Package reorder creates refill requests for medications running low.
// It is invoked out-of-band after a cycle completes, never by the
// reasoning pipeline itself.
package reorder

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LohithR22/DoseWise/internal/medication"
	"github.com/LohithR22/DoseWise/internal/shared/errors"
	"github.com/LohithR22/DoseWise/internal/shared/metrics"
)

// RequestStatus is the lifecycle state of a reorder request
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusConfirmed RequestStatus = "confirmed"
	StatusCancelled RequestStatus = "cancelled"
)

// Request is one refill order
type Request struct {
	ID         uuid.UUID     `json:"id"`
	PatientID  string        `json:"patient_id"`
	Medication string        `json:"medication"`
	Quantity   int           `json:"quantity"`
	PharmacyID string        `json:"pharmacy_id"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// DefaultRefillQuantity is ordered when no quantity is specified
const DefaultRefillQuantity = 30

// Agent turns low-inventory findings into reorder requests. Requests
// are persisted when a database pool is supplied, otherwise kept in
// memory.
type Agent struct {
	directory Directory
	pool      *pgxpool.Pool

	mu       sync.RWMutex
	requests []Request
}

// NewAgent creates a reorder agent. pool may be nil.
func NewAgent(directory Directory, pool *pgxpool.Pool) *Agent {
	if directory == nil {
		directory = NewStaticDirectory()
	}
	return &Agent{directory: directory, pool: pool}
}

// RequestRefill creates a reorder request for one medication. The
// pharmacy is chosen by stock; when no pharmacy stocks the medication
// the request is still recorded, with an empty pharmacy, for manual
// follow-up.
func (a *Agent) RequestRefill(ctx context.Context, patientID, med string, quantity int) (*Request, error) {
	if med == "" {
		return nil, errors.Validation("medication name required", nil)
	}
	if quantity <= 0 {
		quantity = DefaultRefillQuantity
	}

	req := Request{
		ID:         uuid.New(),
		PatientID:  patientID,
		Medication: med,
		Quantity:   quantity,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}

	pharmacy, err := a.directory.FindPharmacy(ctx, med)
	if err != nil {
		log.Printf("reorder: no pharmacy found for %s: %v", med, err)
	} else {
		req.PharmacyID = pharmacy.ID
	}

	if err := a.persist(ctx, req); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.requests = append(a.requests, req)
	a.mu.Unlock()

	metrics.RecordReorder()
	return &req, nil
}

// CheckInventory scans the inventory and creates one reorder request
// per low item that has no pending request yet.
func (a *Agent) CheckInventory(ctx context.Context, patientID string, items []medication.InventoryItem) ([]Request, error) {
	created := []Request{}
	for _, item := range items {
		if !item.IsLow() {
			continue
		}
		if a.hasPending(patientID, item.Name) {
			continue
		}
		req, err := a.RequestRefill(ctx, patientID, item.Name, 0)
		if err != nil {
			log.Printf("reorder: failed to create request for %s: %v", item.Name, err)
			continue
		}
		created = append(created, *req)
	}
	return created, nil
}

// Requests returns the requests recorded for a patient, newest last
func (a *Agent) Requests(patientID string) []Request {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := []Request{}
	for _, req := range a.requests {
		if req.PatientID == patientID {
			out = append(out, req)
		}
	}
	return out
}

func (a *Agent) hasPending(patientID, med string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, req := range a.requests {
		if req.PatientID == patientID && req.Medication == med && req.Status == StatusPending {
			return true
		}
	}
	return false
}

func (a *Agent) persist(ctx context.Context, req Request) error {
	if a.pool == nil {
		return nil
	}

	query := `
		INSERT INTO dosewise.reorder_requests (id, patient_id, medication, quantity, pharmacy_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := a.pool.Exec(ctx, query,
		req.ID, req.PatientID, req.Medication, req.Quantity, req.PharmacyID, req.Status, req.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save reorder request")
	}
	return nil
}
