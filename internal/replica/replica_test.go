package replica

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"lifeboat/internal/life"
)

// Both backends must behave identically from the service's point of view.
func TestReplicaBackends(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backends := []struct {
		name string
		make func(t *testing.T) life.Replica
	}{
		{"memory", func(t *testing.T) life.Replica {
			return NewMemoryReplica("test")
		}},
		{"filesystem", func(t *testing.T) life.Replica {
			r, err := NewFileSystemReplica("test", t.TempDir())
			if err != nil {
				t.Fatalf("NewFileSystemReplica() error: %v", err)
			}
			return r
		}},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			t.Parallel()

			t.Run("put then get round-trips", func(t *testing.T) {
				t.Parallel()
				r := b.make(t)
				payload := []byte("snapshot database bytes")

				if err := r.Put(ctx, "20240115-103000", bytes.NewReader(payload), int64(len(payload))); err != nil {
					t.Fatalf("Put() error: %v", err)
				}

				var buf bytes.Buffer
				if err := r.Get(ctx, "20240115-103000", &buf); err != nil {
					t.Fatalf("Get() error: %v", err)
				}
				if !bytes.Equal(buf.Bytes(), payload) {
					t.Errorf("Get() = %q, want the stored payload", buf.Bytes())
				}
			})

			t.Run("unknown size is accepted", func(t *testing.T) {
				t.Parallel()
				r := b.make(t)

				if err := r.Put(ctx, "20240115-103000", strings.NewReader("data"), -1); err != nil {
					t.Fatalf("Put(size=-1) error: %v", err)
				}
			})

			t.Run("size mismatch is rejected", func(t *testing.T) {
				t.Parallel()
				r := b.make(t)

				if err := r.Put(ctx, "20240115-103000", strings.NewReader("data"), 99); err == nil {
					t.Fatal("Put(wrong size) succeeded, want error")
				}
				if _, err := r.List(ctx); err != nil {
					t.Fatalf("List() error: %v", err)
				}
				var buf bytes.Buffer
				if err := r.Get(ctx, "20240115-103000", &buf); !errors.Is(err, life.ErrNotFound) {
					t.Errorf("Get() after failed put error = %v, want ErrNotFound", err)
				}
			})

			t.Run("put overwrites", func(t *testing.T) {
				t.Parallel()
				r := b.make(t)

				for _, payload := range []string{"first", "second version"} {
					if err := r.Put(ctx, "20240115-103000", strings.NewReader(payload), int64(len(payload))); err != nil {
						t.Fatalf("Put(%q) error: %v", payload, err)
					}
				}

				var buf bytes.Buffer
				if err := r.Get(ctx, "20240115-103000", &buf); err != nil {
					t.Fatalf("Get() error: %v", err)
				}
				if buf.String() != "second version" {
					t.Errorf("Get() = %q, want the latest payload", buf.String())
				}
			})

			t.Run("get missing snapshot", func(t *testing.T) {
				t.Parallel()
				r := b.make(t)

				var buf bytes.Buffer
				if err := r.Get(ctx, "19990101-000000", &buf); !errors.Is(err, life.ErrNotFound) {
					t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
				}
			})

			t.Run("list returns stored IDs", func(t *testing.T) {
				t.Parallel()
				r := b.make(t)

				for _, id := range []string{"20240116-000000", "20240115-000000"} {
					if err := r.Put(ctx, id, strings.NewReader("x"), 1); err != nil {
						t.Fatalf("Put(%s) error: %v", id, err)
					}
				}

				ids, err := r.List(ctx)
				if err != nil {
					t.Fatalf("List() error: %v", err)
				}
				want := []string{"20240115-000000", "20240116-000000"}
				if !reflect.DeepEqual(ids, want) {
					t.Errorf("List() = %v, want %v", ids, want)
				}
			})

			t.Run("validate", func(t *testing.T) {
				t.Parallel()
				r := b.make(t)
				if err := r.Validate(ctx); err != nil {
					t.Errorf("Validate() error: %v", err)
				}
			})
		})
	}
}
