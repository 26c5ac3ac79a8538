package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xrsl/jobpilot/pkg/pipeline"
)

func TestFileStoreRoundtrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	st := pipeline.NewState("wf-abc", map[string]any{"job_url": "https://example.com/jobs/1"})
	st.RecordSuccess("job_analysis", map[string]any{"company": "Acme"})
	st.RecordFailure("resume_tailoring", "timeout")
	st.Version = 2

	if err := fs.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := fs.Load(ctx, "wf-abc")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.WorkflowID != "wf-abc" || got.Version != 2 {
		t.Errorf("loaded id=%q version=%d", got.WorkflowID, got.Version)
	}
	if !got.Succeeded("job_analysis") {
		t.Error("job_analysis outcome lost")
	}
	if got.Results["resume_tailoring"].Error != "timeout" {
		t.Errorf("resume_tailoring error = %q", got.Results["resume_tailoring"].Error)
	}
	if got.Input["job_url"] != "https://example.com/jobs/1" {
		t.Errorf("input lost: %v", got.Input)
	}
}

func TestFileStoreLoadNotFound(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = fs.Load(context.Background(), "wf-missing")
	if !errors.Is(err, pipeline.ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestFileStoreInvalidIDs(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, id := range []string{"", "  ", "../escape", `a\b`, ".", ".."} {
		if _, err := fs.Load(ctx, id); err == nil || errors.Is(err, pipeline.ErrNotFound) {
			t.Errorf("Load(%q) error = %v, want validation error", id, err)
		}
		if err := fs.Save(ctx, pipeline.NewState(id, nil)); err == nil {
			t.Errorf("Save(%q) = nil error, want validation error", id)
		}
	}
}

func TestFileStoreIDMismatch(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := fs.Save(ctx, pipeline.NewState("wf-real", nil)); err != nil {
		t.Fatal(err)
	}
	// A renamed snapshot file must not be served under the wrong id.
	src := filepath.Join(dir, "workflows", "wf-real.json")
	dst := filepath.Join(dir, "workflows", "wf-other.json")
	if err := os.Rename(src, dst); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Load(ctx, "wf-other"); err == nil {
		t.Error("Load() accepted snapshot with mismatched workflow id")
	}
}

func TestFileStoreListAndDelete(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	ids, err := fs.List()
	if err != nil || ids != nil {
		t.Fatalf("List() on empty store = %v, %v", ids, err)
	}

	for _, id := range []string{"wf-b", "wf-a", "wf-c"} {
		if err := fs.Save(ctx, pipeline.NewState(id, nil)); err != nil {
			t.Fatal(err)
		}
	}

	ids, err = fs.List()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"wf-a", "wf-b", "wf-c"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("List() = %v, want %v", ids, want)
	}

	if err := fs.Delete("wf-b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// Deleting a missing snapshot is not an error.
	if err := fs.Delete("wf-b"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}

	ids, _ = fs.List()
	if want := []string{"wf-a", "wf-c"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("List() after delete = %v, want %v", ids, want)
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	st := pipeline.NewState("wf-1", nil)
	if err := fs.Save(ctx, st); err != nil {
		t.Fatal(err)
	}
	st.RecordSuccess("job_analysis", "out")
	st.Version = 1
	if err := fs.Save(ctx, st); err != nil {
		t.Fatal(err)
	}

	got, err := fs.Load(ctx, "wf-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 1 || !got.Succeeded("job_analysis") {
		t.Errorf("overwrite lost data: %+v", got)
	}
}

func TestNewFileStoreEmptyDir(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Error("NewFileStore(blank) = nil error")
	}
}

func TestMemStoreRoundtrip(t *testing.T) {
	ms := NewMemStore()
	ctx := context.Background()

	if _, err := ms.Load(ctx, "wf-1"); !errors.Is(err, pipeline.ErrNotFound) {
		t.Errorf("Load() on empty store error = %v, want ErrNotFound", err)
	}

	st := pipeline.NewState("wf-1", map[string]any{"job_url": "u"})
	st.RecordSuccess("job_analysis", "out")
	if err := ms.Save(ctx, st); err != nil {
		t.Fatal(err)
	}

	got, err := ms.Load(ctx, "wf-1")
	if err != nil {
		t.Fatal(err)
	}
	// The store must hand out copies, not aliases.
	got.RecordFailure("cover_letter", "mutated")
	again, _ := ms.Load(ctx, "wf-1")
	if again.Ran("cover_letter") {
		t.Error("mutation of a loaded snapshot leaked into the store")
	}
}
