package datastore

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStoreRoundtrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	record := map[string]any{
		"company": "Acme",
		"title":   "Backend Engineer",
		"skills":  []any{"go", "postgres"},
	}
	if err := s.Write("analysis/abc123", record); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, ok := s.Read("analysis/abc123")
	if !ok {
		t.Fatal("Read() = false after Write")
	}
	if !reflect.DeepEqual(got, record) {
		t.Errorf("Read() = %v, want %v", got, record)
	}
}

func TestStoreReadMiss(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Read("analysis/never-written"); ok {
		t.Error("Read() = true for absent record")
	}
}

func TestStoreKeyValidation(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	badKeys := []string{
		"no-namespace",
		"analysis/",
		"/name",
		"analysis/../escape",
		`analysis/a\b`,
		"a/b/c",
	}
	for _, key := range badKeys {
		if err := s.Write(key, map[string]any{"x": 1}); err == nil {
			t.Errorf("Write(%q) = nil error, want key rejection", key)
		}
		if _, ok := s.Read(key); ok {
			t.Errorf("Read(%q) = true, want miss", key)
		}
	}
}

func TestStoreValidator(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s.Validate("analysis", func(record map[string]any) error {
		if _, ok := record["company"]; !ok {
			return errors.New("company required")
		}
		return nil
	})

	if err := s.Write("analysis/k", map[string]any{"title": "x"}); err == nil {
		t.Error("Write() accepted record failing validation")
	}
	if err := s.Write("analysis/k", map[string]any{"company": "Acme"}); err != nil {
		t.Errorf("Write() valid record error = %v", err)
	}
	// Other namespaces are unaffected.
	if err := s.Write("resume/k", map[string]any{"title": "x"}); err != nil {
		t.Errorf("Write() to unvalidated namespace error = %v", err)
	}
}

func TestStoreCorruptRecordIsMiss(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "analysis"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "analysis", "bad.yaml"), []byte("{unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Read("analysis/bad"); ok {
		t.Error("Read() = true for unparseable record, want miss")
	}
}

func TestStoreOverwrite(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write("letter/k", map[string]any{"content": "v1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("letter/k", map[string]any{"content": "v2"}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Read("letter/k")
	if got["content"] != "v2" {
		t.Errorf("content = %v, want v2", got["content"])
	}
}
