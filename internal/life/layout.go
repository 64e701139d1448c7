package life

import "path/filepath"

// Standard file names inside a snapshot directory and the live data dir.
const (
	DataFileName = "database.sqlite"
	CacheDirName = "cache"
	MetaFileName = "metadata.json"

	// PreRestoreSuffix names the single-slot safety copy of the live
	// data file taken immediately before a restore overwrites it. Each
	// restore overwrites the same slot, so only the most recent
	// pre-restore state is recoverable.
	PreRestoreSuffix = ".pre-restore"
)

// Layout fixes the on-disk directory tree the lifecycle services operate on.
// The live data file and cache dir belong to the managed service; everything
// else lives under the tool's base directory.
type Layout struct {
	DataFile     string // live data-store file of the managed service
	CacheDir     string // live auxiliary cache directory (may be absent)
	SnapshotsDir string // one subdirectory per snapshot ID
	ProfilesDir  string // one file per profile name
	LogDir       string
}

// SnapshotDir returns the directory holding the snapshot with the given ID.
func (l Layout) SnapshotDir(id string) string {
	return filepath.Join(l.SnapshotsDir, id)
}

// SnapshotData returns the path of a snapshot's copied data-store file.
func (l Layout) SnapshotData(id string) string {
	return filepath.Join(l.SnapshotsDir, id, DataFileName)
}

// SnapshotCache returns the path of a snapshot's copied cache directory.
func (l Layout) SnapshotCache(id string) string {
	return filepath.Join(l.SnapshotsDir, id, CacheDirName)
}

// SnapshotMeta returns the path of a snapshot's metadata record.
func (l Layout) SnapshotMeta(id string) string {
	return filepath.Join(l.SnapshotsDir, id, MetaFileName)
}

// PreRestoreFile returns the path of the pre-restore safety copy.
func (l Layout) PreRestoreFile() string {
	return l.DataFile + PreRestoreSuffix
}

// ProfileFile returns the path of a named profile.
func (l Layout) ProfileFile(name string) string {
	return filepath.Join(l.ProfilesDir, name+".env")
}
