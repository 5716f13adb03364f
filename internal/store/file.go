package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LohithR22/DoseWise/internal/agent"
	"github.com/LohithR22/DoseWise/internal/shared/errors"
)

// FileStore keeps one JSON file per patient under a base directory. It
// is the fallback when no database is configured, suitable for local
// development and single-node deployments.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed snapshot store rooted at dir
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create snapshot directory")
	}
	return &FileStore{dir: dir}, nil
}

// Load reads the patient's snapshot file. A missing file yields a fresh
// initial snapshot; a corrupt file is reported to the caller.
func (s *FileStore) Load(ctx context.Context, patientID string) (agent.Snapshot, error) {
	data, err := os.ReadFile(s.path(patientID))
	if os.IsNotExist(err) {
		return agent.NewSnapshot(patientID, time.Now()), nil
	}
	if err != nil {
		return agent.Snapshot{}, errors.Wrap(err, "failed to read snapshot file")
	}

	var snap agent.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return agent.Snapshot{}, errors.Wrap(err, "failed to decode snapshot file")
	}
	if snap.PatientID == "" {
		snap.PatientID = patientID
	}
	return snap, nil
}

// Save writes the snapshot atomically: temp file then rename
func (s *FileStore) Save(ctx context.Context, snap agent.Snapshot) error {
	if snap.PatientID == "" {
		return errors.Validation("snapshot missing patient id", nil)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}

	target := s.path(snap.PatientID)
	tmp, err := os.CreateTemp(s.dir, "snapshot-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create snapshot temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to write snapshot")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to close snapshot temp file")
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to replace snapshot file")
	}
	return nil
}

func (s *FileStore) path(patientID string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, patientID)
	return filepath.Join(s.dir, fmt.Sprintf("state_%s.json", name))
}
