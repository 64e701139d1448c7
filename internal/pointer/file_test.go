package pointer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilePointer(t *testing.T) {
	t.Parallel()

	t.Run("unset pointer reads empty", func(t *testing.T) {
		t.Parallel()
		p := NewFilePointer(filepath.Join(t.TempDir(), "current"))

		got, err := p.Get()
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if got != "" {
			t.Errorf("Get() = %q, want empty", got)
		}
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		t.Parallel()
		p := NewFilePointer(filepath.Join(t.TempDir(), "deep", "current"))

		if err := p.Set("20240115-103000"); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
		got, err := p.Get()
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if got != "20240115-103000" {
			t.Errorf("Get() = %q, want 20240115-103000", got)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		t.Parallel()
		p := NewFilePointer(filepath.Join(t.TempDir(), "current"))

		for _, v := range []string{"first", "second"} {
			if err := p.Set(v); err != nil {
				t.Fatalf("Set(%s) error: %v", v, err)
			}
		}
		got, err := p.Get()
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if got != "second" {
			t.Errorf("Get() = %q, want second", got)
		}
	})

	t.Run("trims whitespace on read", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "current")
		if err := os.WriteFile(path, []byte("  value \n"), 0644); err != nil {
			t.Fatalf("seeding pointer file: %v", err)
		}
		p := NewFilePointer(path)

		got, err := p.Get()
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if got != "value" {
			t.Errorf("Get() = %q, want value", got)
		}
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		t.Parallel()
		p := NewFilePointer(filepath.Join(t.TempDir(), "current"))
		if err := p.Set("x"); err != nil {
			t.Fatalf("Set() error: %v", err)
		}

		for i := 0; i < 2; i++ {
			if err := p.Clear(); err != nil {
				t.Fatalf("Clear() #%d error: %v", i+1, err)
			}
		}
		got, err := p.Get()
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if got != "" {
			t.Errorf("Get() after Clear() = %q, want empty", got)
		}
	})
}
