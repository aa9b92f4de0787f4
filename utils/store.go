package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"slot-go/models"
)

// SlotStore persists the slot counters to a small JSON file.
// A missing or unreadable file always yields the defaults (inactive, 0 spins).
type SlotStore struct {
	path  string
	mutex sync.Mutex
}

// NewSlotStore creates a store backed by the given file path
func NewSlotStore(path string) *SlotStore {
	return &SlotStore{path: path}
}

// Path returns the backing file path
func (ss *SlotStore) Path() string {
	return ss.path
}

// Load reads the counters, falling back to defaults on any problem
func (ss *SlotStore) Load() models.SlotState {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	data, err := os.ReadFile(ss.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			AreaLogger("STORE").WithError(err).Warn("Failed to read slot data, using defaults")
		}
		return models.SlotState{}
	}

	var state models.SlotState
	if err := json.Unmarshal(data, &state); err != nil {
		AreaLogger("STORE").WithError(err).Warn("Failed to parse slot data, using defaults")
		return models.SlotState{}
	}

	return state
}

// Save writes the counters atomically (temp file + rename)
func (ss *SlotStore) Save(state models.SlotState) error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode slot data: %w", err)
	}

	if err := WriteFileAtomic(ss.path, data); err != nil {
		return fmt.Errorf("failed to write slot data: %w", err)
	}
	return nil
}

// WriteFileAtomic replaces path with data through a temp file in the same directory
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
