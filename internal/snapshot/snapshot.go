// Package snapshot persists the daily topic state across restarts with an
// explicit schema version and load/save boundary.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doit-app/challenge-arena-go/internal/models"
)

// SchemaVersion identifies the snapshot layout. A mismatch on load discards
// the snapshot and forces regeneration.
const SchemaVersion = 1

// TopicState is the serializable slice of topic engine state. Video counts
// are not persisted; they are rederived from the video set.
type TopicState struct {
	Version           int            `json:"version"`
	Topics            []models.Topic `json:"topics"`
	LastGeneratedDate string         `json:"last_generated_date"`
	AIGenerated       bool           `json:"ai_generated"`
}

// Store reads and writes the topic state snapshot as a JSON file.
type Store struct {
	path string
}

// NewStore creates a Store writing to the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the snapshot. A missing file or a schema version mismatch
// returns (nil, nil): there is nothing usable but nothing wrong either.
func (s *Store) Load() (*TopicState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var state TopicState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if state.Version != SchemaVersion {
		return nil, nil
	}
	return &state, nil
}

// Save writes the snapshot atomically via a temp file rename.
func (s *Store) Save(state *TopicState) error {
	state.Version = SchemaVersion

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
