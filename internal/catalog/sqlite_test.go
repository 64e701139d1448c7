package catalog

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestBeginFinish(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	started := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	id, err := c.Begin("Save", "20240115-103000", started)
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if id == 0 {
		t.Fatal("Begin() returned id 0, want a row id")
	}

	ops, err := c.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("Recent() returned %d records, want 1", len(ops))
	}
	op := ops[0]
	if op.Operation != "Save" || op.Target != "20240115-103000" {
		t.Errorf("record = %s/%s, want Save/20240115-103000", op.Operation, op.Target)
	}
	if op.Status != "running" {
		t.Errorf("status = %q before Finish, want running", op.Status)
	}
	if op.FinishedAt != nil {
		t.Errorf("FinishedAt = %v before Finish, want nil", op.FinishedAt)
	}

	finished := started.Add(3 * time.Second)
	if err := c.Finish(id, "success", finished); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}

	ops, err = c.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	op = ops[0]
	if op.Status != "success" {
		t.Errorf("status = %q, want success", op.Status)
	}
	if op.FinishedAt == nil || !op.FinishedAt.Equal(finished) {
		t.Errorf("FinishedAt = %v, want %v", op.FinishedAt, finished)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"Save", "Restore", "Clean"} {
		if _, err := c.Begin(name, "", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Begin(%s) error: %v", name, err)
		}
	}

	ops, err := c.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("Recent(2) returned %d records, want 2", len(ops))
	}
	if ops[0].Operation != "Clean" || ops[1].Operation != "Restore" {
		t.Errorf("Recent(2) = %s, %s; want newest first (Clean, Restore)", ops[0].Operation, ops[1].Operation)
	}
}

func TestRecentEmpty(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	ops, err := c.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(ops) != 0 {
		t.Errorf("Recent() on empty catalog = %v, want empty", ops)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "catalog.db")

	c, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := c.Begin("Save", "", time.Now()); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	c2, err := New(path)
	if err != nil {
		t.Fatalf("reopening catalog: %v", err)
	}
	defer c2.Close()

	ops, err := c2.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(ops) != 1 {
		t.Errorf("Recent() after reopen returned %d records, want 1", len(ops))
	}
}
