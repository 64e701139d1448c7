package store

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"lifeboat/internal/life"
)

func TestWriteRead(t *testing.T) {
	t.Parallel()
	s := NewOSStore()
	dir := t.TempDir()

	path := filepath.Join(dir, "nested", "file.txt")
	if err := s.Write(path, []byte("hello")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := s.Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Errorf("Read() = %q, want hello", got)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries after write, want 1", len(entries))
	}
}

func TestWriteFrom(t *testing.T) {
	t.Parallel()
	s := NewOSStore()

	t.Run("streams a reader into place", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		path := filepath.Join(dir, "pulled", "data.bin")
		if err := s.WriteFrom(path, bytes.NewReader([]byte("streamed in"))); err != nil {
			t.Fatalf("WriteFrom() error: %v", err)
		}

		got, err := s.Read(path)
		if err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		if !bytes.Equal(got, []byte("streamed in")) {
			t.Errorf("Read() = %q, want the streamed bytes", got)
		}
	})

	t.Run("failing reader leaves no file behind", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		path := filepath.Join(dir, "data.bin")
		bad := io.MultiReader(bytes.NewReader([]byte("partial")), brokenReader{})
		if err := s.WriteFrom(path, bad); err == nil {
			t.Fatal("WriteFrom() with failing reader succeeded, want error")
		}

		if s.Exists(path) {
			t.Error("destination exists after failed write")
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir() error: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("directory holds %d entries after failed write, want 0", len(entries))
		}
	})
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}

func TestReadMissing(t *testing.T) {
	t.Parallel()
	s := NewOSStore()

	if _, err := s.Read(filepath.Join(t.TempDir(), "absent")); !errors.Is(err, life.ErrNotFound) {
		t.Fatalf("Read(absent) error = %v, want ErrNotFound", err)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()
	s := NewOSStore()
	dir := t.TempDir()

	path := filepath.Join(dir, "stream.bin")
	if err := s.Write(path, []byte("streamed")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	rc, err := s.Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if !bytes.Equal(got, []byte("streamed")) {
		t.Errorf("streamed read = %q, want streamed", got)
	}

	if _, err := s.Open(filepath.Join(dir, "absent")); !errors.Is(err, life.ErrNotFound) {
		t.Fatalf("Open(absent) error = %v, want ErrNotFound", err)
	}
}

func TestCopyFile(t *testing.T) {
	t.Parallel()
	s := NewOSStore()
	dir := t.TempDir()

	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "deep", "dst.db")
	if err := os.WriteFile(src, []byte("payload"), 0600); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	if err := s.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() error: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}
	if !bytes.Equal(got, []byte("payload")) {
		t.Errorf("copied bytes = %q, want payload", got)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat destination: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("destination mode = %v, want 0600 preserved", info.Mode().Perm())
	}

	if err := s.CopyFile(filepath.Join(dir, "absent"), dst); !errors.Is(err, life.ErrNotFound) {
		t.Fatalf("CopyFile(absent) error = %v, want ErrNotFound", err)
	}
}

func TestCopyTree(t *testing.T) {
	t.Parallel()
	s := NewOSStore()
	dir := t.TempDir()

	src := filepath.Join(dir, "src")
	for rel, content := range map[string]string{
		"a.txt":        "alpha",
		"sub/b.txt":    "beta",
		"sub/in/c.txt": "gamma",
	} {
		if err := s.Write(filepath.Join(src, rel), []byte(content)); err != nil {
			t.Fatalf("seeding tree: %v", err)
		}
	}

	dst := filepath.Join(dir, "dst")
	if err := s.CopyTree(src, dst); err != nil {
		t.Fatalf("CopyTree() error: %v", err)
	}

	for rel, want := range map[string]string{
		"a.txt":        "alpha",
		"sub/b.txt":    "beta",
		"sub/in/c.txt": "gamma",
	} {
		got, err := os.ReadFile(filepath.Join(dst, rel))
		if err != nil {
			t.Fatalf("reading %s: %v", rel, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", rel, got, want)
		}
	}

	if err := s.CopyTree(filepath.Join(dir, "absent"), dst); !errors.Is(err, life.ErrNotFound) {
		t.Fatalf("CopyTree(absent) error = %v, want ErrNotFound", err)
	}
	if err := s.CopyTree(filepath.Join(src, "a.txt"), dst); err == nil {
		t.Fatal("CopyTree(file) succeeded, want error")
	}
}

func TestListMatching(t *testing.T) {
	t.Parallel()
	s := NewOSStore()
	dir := t.TempDir()

	for _, name := range []string{"prod.env", "dev.env", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("seeding dir: %v", err)
		}
	}

	got, err := s.ListMatching(dir, "*.env")
	if err != nil {
		t.Fatalf("ListMatching() error: %v", err)
	}
	want := []string{filepath.Join(dir, "dev.env"), filepath.Join(dir, "prod.env")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListMatching() = %v, want %v", got, want)
	}

	got, err = s.ListMatching(filepath.Join(dir, "absent"), "*")
	if err != nil {
		t.Fatalf("ListMatching(absent) error: %v", err)
	}
	if got != nil {
		t.Errorf("ListMatching(absent) = %v, want nil", got)
	}
}

func TestAgeInDays(t *testing.T) {
	t.Parallel()
	s := NewOSStore()
	dir := t.TempDir()

	path := filepath.Join(dir, "aged")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("seeding file: %v", err)
	}
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	mtime := now.Add(-36 * time.Hour)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("setting mtime: %v", err)
	}

	age, err := s.AgeInDays(path, now)
	if err != nil {
		t.Fatalf("AgeInDays() error: %v", err)
	}
	if age != 1.5 {
		t.Errorf("AgeInDays() = %v, want 1.5", age)
	}

	if _, err := s.AgeInDays(filepath.Join(dir, "absent"), now); !errors.Is(err, life.ErrNotFound) {
		t.Fatalf("AgeInDays(absent) error = %v, want ErrNotFound", err)
	}
}

func TestTreeSize(t *testing.T) {
	t.Parallel()
	s := NewOSStore()
	dir := t.TempDir()

	root := filepath.Join(dir, "tree")
	if err := s.Write(filepath.Join(root, "a"), []byte("12345")); err != nil {
		t.Fatalf("seeding tree: %v", err)
	}
	if err := s.Write(filepath.Join(root, "sub", "b"), []byte("123")); err != nil {
		t.Fatalf("seeding tree: %v", err)
	}

	size, err := s.TreeSize(root)
	if err != nil {
		t.Fatalf("TreeSize() error: %v", err)
	}
	if size != 8 {
		t.Errorf("TreeSize() = %d, want 8", size)
	}

	size, err = s.TreeSize(filepath.Join(root, "a"))
	if err != nil {
		t.Fatalf("TreeSize(file) error: %v", err)
	}
	if size != 5 {
		t.Errorf("TreeSize(file) = %d, want 5", size)
	}

	size, err = s.TreeSize(filepath.Join(dir, "absent"))
	if err != nil {
		t.Fatalf("TreeSize(absent) error: %v", err)
	}
	if size != 0 {
		t.Errorf("TreeSize(absent) = %d, want 0", size)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()
	s := NewOSStore()
	dir := t.TempDir()

	tree := filepath.Join(dir, "tree")
	if err := s.Write(filepath.Join(tree, "sub", "f"), []byte("x")); err != nil {
		t.Fatalf("seeding tree: %v", err)
	}

	if err := s.Remove(tree); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if s.Exists(tree) {
		t.Error("tree still exists after Remove()")
	}
	if err := s.Remove(tree); err != nil {
		t.Errorf("Remove(missing) error: %v, want no-op", err)
	}
}
