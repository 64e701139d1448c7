package life_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"lifeboat/internal/life"
)

func TestRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round-trips the data file byte for byte", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil, nil)
		env.writeLiveData(t, "original state")
		snap, err := env.svc.Save(ctx)
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		env.probe.Running = false

		env.writeLiveData(t, "mutated state, much longer than before")

		res, err := env.svc.Restore(ctx, snap.ID, false)
		if err != nil {
			t.Fatalf("Restore() error: %v", err)
		}
		if !res.RestoredData {
			t.Error("RestoredData = false, want true")
		}

		got := env.readFile(t, env.layout.DataFile)
		if !bytes.Equal(got, []byte("original state")) {
			t.Errorf("live data = %q, want %q", got, "original state")
		}
	})

	t.Run("takes a byte-identical pre-restore copy", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil, nil)
		env.writeLiveData(t, "v1")
		snap, err := env.svc.Save(ctx)
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		env.probe.Running = false
		env.writeLiveData(t, "v2 about to be overwritten")

		res, err := env.svc.Restore(ctx, snap.ID, false)
		if err != nil {
			t.Fatalf("Restore() error: %v", err)
		}
		if res.PreRestore != env.layout.PreRestoreFile() {
			t.Errorf("PreRestore = %q, want %q", res.PreRestore, env.layout.PreRestoreFile())
		}

		pre := env.readFile(t, res.PreRestore)
		if !bytes.Equal(pre, []byte("v2 about to be overwritten")) {
			t.Errorf("pre-restore copy = %q, want the overwritten live bytes", pre)
		}
	})

	t.Run("no pre-restore copy when live data is absent", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil, nil)
		env.writeLiveData(t, "v1")
		snap, err := env.svc.Save(ctx)
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		env.probe.Running = false
		if err := env.store.Remove(env.layout.DataFile); err != nil {
			t.Fatalf("removing live data: %v", err)
		}

		res, err := env.svc.Restore(ctx, snap.ID, false)
		if err != nil {
			t.Fatalf("Restore() error: %v", err)
		}
		if res.PreRestore != "" {
			t.Errorf("PreRestore = %q, want empty", res.PreRestore)
		}
	})

	t.Run("empty ID restores the current snapshot", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil, nil)
		env.writeLiveData(t, "current state")
		snap, err := env.svc.Save(ctx)
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		env.probe.Running = false
		env.writeLiveData(t, "drifted")

		res, err := env.svc.Restore(ctx, "", false)
		if err != nil {
			t.Fatalf("Restore(\"\") error: %v", err)
		}
		if res.ID != snap.ID {
			t.Errorf("restored ID = %q, want current %q", res.ID, snap.ID)
		}
		got := env.readFile(t, env.layout.DataFile)
		if !bytes.Equal(got, []byte("current state")) {
			t.Errorf("live data = %q, want %q", got, "current state")
		}
	})

	t.Run("empty ID without a current pointer", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil, nil)
		env.probe.Running = false

		if _, err := env.svc.Restore(ctx, "", false); !errors.Is(err, life.ErrNoCurrentSnapshot) {
			t.Fatalf("Restore(\"\") error = %v, want ErrNoCurrentSnapshot", err)
		}
	})

	t.Run("unknown snapshot ID", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil, nil)
		env.probe.Running = false

		if _, err := env.svc.Restore(ctx, "20240101-000000", false); !errors.Is(err, life.ErrSnapshotNotFound) {
			t.Fatalf("Restore() error = %v, want ErrSnapshotNotFound", err)
		}
	})

	t.Run("refuses while the service runs unless forced", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil, nil)
		env.writeLiveData(t, "v1")
		snap, err := env.svc.Save(ctx)
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}

		if _, err := env.svc.Restore(ctx, snap.ID, false); !errors.Is(err, life.ErrServiceRunning) {
			t.Fatalf("Restore() error = %v, want ErrServiceRunning", err)
		}
		if _, err := env.svc.Restore(ctx, snap.ID, true); err != nil {
			t.Fatalf("forced Restore() error: %v", err)
		}
	})

	t.Run("replaces the cache instead of merging", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil, nil)
		env.writeLiveData(t, "v1")
		env.writeLiveCache(t, "kept.bin", "snapshot cache")
		snap, err := env.svc.Save(ctx)
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		env.probe.Running = false

		env.writeLiveCache(t, "stray.bin", "appeared after save")

		res, err := env.svc.Restore(ctx, snap.ID, false)
		if err != nil {
			t.Fatalf("Restore() error: %v", err)
		}
		if !res.RestoredCache {
			t.Error("RestoredCache = false, want true")
		}
		if env.store.Exists(filepath.Join(env.layout.CacheDir, "stray.bin")) {
			t.Error("stray cache file survived restore, want full replacement")
		}
		got := env.readFile(t, filepath.Join(env.layout.CacheDir, "kept.bin"))
		if !bytes.Equal(got, []byte("snapshot cache")) {
			t.Errorf("restored cache file = %q, want snapshot contents", got)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil, nil)
		env.writeLiveData(t, "stable state")
		snap, err := env.svc.Save(ctx)
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		env.probe.Running = false

		for i := 0; i < 2; i++ {
			if _, err := env.svc.Restore(ctx, snap.ID, false); err != nil {
				t.Fatalf("Restore() #%d error: %v", i+1, err)
			}
		}
		got := env.readFile(t, env.layout.DataFile)
		if !bytes.Equal(got, []byte("stable state")) {
			t.Errorf("live data after double restore = %q, want %q", got, "stable state")
		}
	})
}
