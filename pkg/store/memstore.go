package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/xrsl/jobpilot/pkg/pipeline"
)

// MemStore is a map-backed pipeline.Store for tests and --ephemeral runs.
// Snapshots are deep-copied through JSON so callers cannot alias stored
// state.
type MemStore struct {
	mu        sync.Mutex
	snapshots map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{snapshots: make(map[string][]byte)}
}

// Load returns the stored snapshot or pipeline.ErrNotFound.
func (s *MemStore) Load(_ context.Context, workflowID string) (*pipeline.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.snapshots[workflowID]
	if !ok {
		return nil, pipeline.ErrNotFound
	}
	var st pipeline.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Save stores a deep copy of the snapshot.
func (s *MemStore) Save(_ context.Context, st *pipeline.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[st.WorkflowID] = data
	return nil
}

// List returns all stored workflow ids in no particular order.
func (s *MemStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	return ids, nil
}
