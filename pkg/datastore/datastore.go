// Package datastore is the data-access collaborator for the pipeline: a
// record store keyed by natural keys (job URL hash, company+title hash).
// Records are YAML files grouped by namespace under the work directory.
//
// Cache gates read from this store; stage functions write their outputs back
// so later runs with the same natural key can short-circuit.
package datastore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	clog "github.com/xrsl/jobpilot/pkg/log"
)

// Validator checks a record's shape before it is persisted.
type Validator func(record map[string]any) error

// Store reads and writes records keyed by "<namespace>/<natural-key>".
type Store struct {
	dir        string
	validators map[string]Validator
}

// New creates a record store rooted at dir.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("records dir is required")
	}
	return &Store{dir: dir, validators: make(map[string]Validator)}, nil
}

// Validate registers a shape validator for one namespace. Writes to that
// namespace fail when the record does not validate.
func (s *Store) Validate(namespace string, fn Validator) {
	s.validators[namespace] = fn
}

// splitKey separates "<namespace>/<name>" and rejects keys that would
// escape the records directory.
func splitKey(key string) (namespace, name string, err error) {
	namespace, name, ok := strings.Cut(key, "/")
	if !ok || namespace == "" || name == "" {
		return "", "", fmt.Errorf("record key %q must be namespace/name", key)
	}
	for _, part := range []string{namespace, name} {
		if strings.ContainsAny(part, `/\`) || part == "." || part == ".." {
			return "", "", fmt.Errorf("record key %q contains invalid path elements", key)
		}
	}
	return namespace, name, nil
}

func (s *Store) path(namespace, name string) string {
	return filepath.Join(s.dir, namespace, name+".yaml")
}

// Read returns the record for key, or false when it is absent or unreadable.
// Callers treat any miss the same way, so read problems are logged and
// reported as absence.
func (s *Store) Read(key string) (map[string]any, bool) {
	namespace, name, err := splitKey(key)
	if err != nil {
		clog.Debug("record read rejected", "key", key, "error", err)
		return nil, false
	}
	data, err := os.ReadFile(s.path(namespace, name))
	if err != nil {
		return nil, false
	}
	var record map[string]any
	if err := yaml.Unmarshal(data, &record); err != nil {
		clog.Warn("record unreadable", "key", key, "error", err)
		return nil, false
	}
	return record, true
}

// Write validates and persists a record under key.
func (s *Store) Write(key string, record map[string]any) error {
	namespace, name, err := splitKey(key)
	if err != nil {
		return err
	}
	if validate, ok := s.validators[namespace]; ok {
		if err := validate(record); err != nil {
			return fmt.Errorf("record %s failed validation: %w", key, err)
		}
	}

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("marshal record %s: %w", key, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshal record %s: %w", key, err)
	}

	dir := filepath.Join(s.dir, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create records dir: %w", err)
	}
	return os.WriteFile(s.path(namespace, name), []byte(buf.String()), 0o644)
}
