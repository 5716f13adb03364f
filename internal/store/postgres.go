package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LohithR22/DoseWise/internal/agent"
	"github.com/LohithR22/DoseWise/internal/shared/errors"
)

// PostgresStore keeps one JSONB snapshot row per patient
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a snapshot store backed by PostgreSQL
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Load reads the patient's snapshot. A patient without a stored snapshot
// gets a fresh initial one.
func (s *PostgresStore) Load(ctx context.Context, patientID string) (agent.Snapshot, error) {
	query := `
		SELECT data
		FROM dosewise.snapshots
		WHERE patient_id = $1`

	var data []byte
	err := s.pool.QueryRow(ctx, query, patientID).Scan(&data)
	if err == pgx.ErrNoRows {
		return agent.NewSnapshot(patientID, time.Now()), nil
	}
	if err != nil {
		return agent.Snapshot{}, errors.Wrap(err, "failed to load snapshot")
	}

	var snap agent.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return agent.Snapshot{}, errors.Wrap(err, "failed to decode snapshot")
	}
	if snap.PatientID == "" {
		snap.PatientID = patientID
	}
	return snap, nil
}

// Save replaces the stored snapshot wholesale
func (s *PostgresStore) Save(ctx context.Context, snap agent.Snapshot) error {
	if snap.PatientID == "" {
		return errors.Validation("snapshot missing patient id", nil)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}

	query := `
		INSERT INTO dosewise.snapshots (patient_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	_, err = s.pool.Exec(ctx, query, snap.PatientID, data, time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to save snapshot")
	}
	return nil
}
