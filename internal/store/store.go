// Package store persists patient cycle snapshots. The pipeline never
// touches durable storage itself; it receives a snapshot and returns an
// updated one, and the store replaces the stored copy wholesale.
package store

import (
	"context"

	"github.com/LohithR22/DoseWise/internal/agent"
)

// Store loads and saves whole snapshots keyed by patient ID. Load must
// return a fresh initial snapshot, not an error, when no snapshot exists
// yet for the patient.
type Store interface {
	Load(ctx context.Context, patientID string) (agent.Snapshot, error)
	Save(ctx context.Context, snap agent.Snapshot) error
}
