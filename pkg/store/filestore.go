// Package store provides pipeline.Store implementations: a durable
// file-backed store for real runs and an in-memory store for tests and
// ephemeral runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xrsl/jobpilot/pkg/pipeline"
)

// FileStore keeps one JSON snapshot per workflow under
// <dir>/workflows/<workflow-id>.json. Writes are atomic and durable
// (temp file + fsync + rename + directory sync) so a crash mid-write can
// never corrupt the previous checkpoint.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store dir is required")
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) workflowsDir() string {
	return filepath.Join(s.dir, "workflows")
}

func (s *FileStore) path(workflowID string) string {
	return filepath.Join(s.workflowsDir(), workflowID+".json")
}

// validID rejects ids that would escape the workflows directory.
func validID(workflowID string) error {
	if strings.TrimSpace(workflowID) == "" {
		return errors.New("workflow id is required")
	}
	if strings.ContainsAny(workflowID, `/\`) || workflowID == "." || workflowID == ".." {
		return fmt.Errorf("workflow id %q is not a valid snapshot name", workflowID)
	}
	return nil
}

// Load reads the snapshot for a workflow id. A missing snapshot is
// pipeline.ErrNotFound.
func (s *FileStore) Load(_ context.Context, workflowID string) (*pipeline.State, error) {
	if err := validID(workflowID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(workflowID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pipeline.ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var st pipeline.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", workflowID, err)
	}
	if st.WorkflowID != workflowID {
		return nil, fmt.Errorf("snapshot %s holds workflow %q", workflowID, st.WorkflowID)
	}
	return &st, nil
}

// Save writes the whole snapshot atomically.
func (s *FileStore) Save(_ context.Context, st *pipeline.State) error {
	if st == nil {
		return errors.New("nil state")
	}
	if err := validID(st.WorkflowID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(s.workflowsDir(), 0o755); err != nil {
		return fmt.Errorf("create workflows dir: %w", err)
	}
	return writeFileAtomic(s.path(st.WorkflowID), data, 0o644)
}

// List returns all workflow ids with a snapshot on disk, sorted.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.workflowsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a workflow snapshot. Missing snapshots are not an error.
func (s *FileStore) Delete(workflowID string) error {
	if err := validID(workflowID); err != nil {
		return err
	}
	err := os.Remove(s.path(workflowID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return fsyncDir(dir)
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
