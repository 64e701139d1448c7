package life

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Entry is one key=value line of a profile.
type Entry struct {
	Key   string
	Value string
}

// Profile is a named bundle of configuration entries representing one
// deployment environment of the managed service. Entry order is preserved
// so profiles round-trip and diff the way the user wrote them.
type Profile struct {
	Name    string
	Entries []Entry
}

// Get returns the value for key and whether it is present.
// The last occurrence wins, matching how env files are applied.
func (p *Profile) Get(key string) (string, bool) {
	val, found := "", false
	for _, e := range p.Entries {
		if e.Key == key {
			val, found = e.Value, true
		}
	}
	return val, found
}

// Violation is one profile validation failure. Validation collects all
// violations in a single pass instead of failing on the first.
type Violation struct {
	Key    string
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Key, v.Reason)
}

// DiffLine is one positional difference between two profiles. The
// comparison is purely line-based: no key-aware matching, lines present in
// one profile but not the other are reported at their position.
type DiffLine struct {
	Line  int
	Left  string
	Right string
}

// Required keys every profile must carry, and the formats they must follow.
const (
	KeyEnvironment = "N8N_ENVIRONMENT"
	KeyLogLevel    = "N8N_LOG_LEVEL"
	KeyMemoryLimit = "MEMORY_LIMIT"
)

var (
	requiredKeys    = []string{KeyEnvironment, KeyLogLevel, KeyMemoryLimit}
	memoryLimitRe   = regexp.MustCompile(`^[0-9]+[gmk]$`)
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	defaultTemplate = []Entry{
		{KeyEnvironment, "development"},
		{KeyLogLevel, "info"},
		{KeyMemoryLimit, "2g"},
		{"N8N_PORT", "5678"},
		{"TZ", "UTC"},
	}
)

// Profiles manages named configuration profiles and the active-profile
// pointer. Each profile is a line-oriented key=value file; the pointer
// repoint on switch is the sole mutation and is atomic.
type Profiles struct {
	store  Store
	active Pointer
	dir    string
	logger Logger
}

// NewProfiles creates a profile manager over the given directory.
func NewProfiles(store Store, active Pointer, dir string, logger Logger) *Profiles {
	return &Profiles{store: store, active: active, dir: dir, logger: logger}
}

func (p *Profiles) path(name string) string {
	return filepath.Join(p.dir, name+".env")
}

// Create creates a new profile by copying all entries from the named
// template profile. When the template does not exist (or is empty-named),
// a fixed default development template is used instead.
func (p *Profiles) Create(name, template string) (*Profile, error) {
	if p.store.Exists(p.path(name)) {
		return nil, fmt.Errorf("profile %s: %w", name, ErrAlreadyExists)
	}

	entries := defaultTemplate
	if template != "" && p.store.Exists(p.path(template)) {
		tmpl, err := p.load(template)
		if err != nil {
			return nil, err
		}
		entries = tmpl.Entries
	}

	prof := &Profile{Name: name, Entries: entries}
	if err := p.store.Write(p.path(name), encodeProfile(prof)); err != nil {
		return nil, fmt.Errorf("writing profile %s: %w", name, err)
	}

	p.logger.Info("profile created", "name", name, "template", template)
	return prof, nil
}

// Switch makes the named profile active by repointing the active-profile
// pointer. A missing profile leaves the pointer unchanged.
func (p *Profiles) Switch(name string) error {
	if !p.store.Exists(p.path(name)) {
		return fmt.Errorf("profile %s: %w", name, ErrNotFound)
	}
	if err := p.active.Set(name); err != nil {
		return fmt.Errorf("setting active profile: %w", err)
	}
	p.logger.Info("profile activated", "name", name)
	return nil
}

// Active returns the currently active profile.
func (p *Profiles) Active() (*Profile, error) {
	name, err := p.active.Get()
	if err != nil {
		return nil, fmt.Errorf("reading active pointer: %w", err)
	}
	if name == "" {
		return nil, fmt.Errorf("no active profile: %w", ErrNotFound)
	}
	return p.load(name)
}

// List returns the names of all profiles, in lexicographic order.
func (p *Profiles) List() ([]string, error) {
	files, err := p.store.ListMatching(p.dir, "*.env")
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(f), ".env"))
	}
	return names, nil
}

// Remove deletes a profile. Profiles are never removed implicitly, and the
// active profile cannot be removed; switch away first.
func (p *Profiles) Remove(name string) error {
	if !p.store.Exists(p.path(name)) {
		return fmt.Errorf("profile %s: %w", name, ErrNotFound)
	}
	active, err := p.active.Get()
	if err != nil {
		return fmt.Errorf("reading active pointer: %w", err)
	}
	if name == active {
		return fmt.Errorf("profile %s is active, switch away before removing", name)
	}
	if err := p.store.Remove(p.path(name)); err != nil {
		return fmt.Errorf("removing profile %s: %w", name, err)
	}
	p.logger.Info("profile removed", "name", name)
	return nil
}

// Validate checks a named profile against the minimal required schema and
// returns every violation found. It never mutates state.
func (p *Profiles) Validate(name string) ([]Violation, error) {
	prof, err := p.load(name)
	if err != nil {
		return nil, err
	}
	return ValidateProfile(prof), nil
}

// ValidateFile validates an arbitrary key=value file without requiring it
// to be a registered profile.
func (p *Profiles) ValidateFile(path string) ([]Violation, error) {
	data, err := p.store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	prof := ParseProfile(filepath.Base(path), data)
	return ValidateProfile(prof), nil
}

// Diff compares two profiles line by line and returns the positional
// differences.
func (p *Profiles) Diff(nameA, nameB string) ([]DiffLine, error) {
	rawA, err := p.store.Read(p.path(nameA))
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", nameA, ErrNotFound)
	}
	rawB, err := p.store.Read(p.path(nameB))
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", nameB, ErrNotFound)
	}
	return diffLines(rawA, rawB), nil
}

func (p *Profiles) load(name string) (*Profile, error) {
	data, err := p.store.Read(p.path(name))
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", name, ErrNotFound)
	}
	return ParseProfile(name, data), nil
}

// ParseProfile parses line-oriented key=value content. Blank lines and
// #-comments are skipped; malformed lines (no '=') are ignored rather than
// rejected, matching env-file conventions.
func ParseProfile(name string, data []byte) *Profile {
	prof := &Profile{Name: name}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		prof.Entries = append(prof.Entries, Entry{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	return prof
}

// ValidateProfile checks the required keys and their formats, returning
// every violation rather than stopping at the first.
func ValidateProfile(prof *Profile) []Violation {
	var violations []Violation

	for _, key := range requiredKeys {
		if _, ok := prof.Get(key); !ok {
			violations = append(violations, Violation{Key: key, Reason: "required key missing"})
		}
	}

	if level, ok := prof.Get(KeyLogLevel); ok && !validLogLevels[level] {
		violations = append(violations, Violation{
			Key:    KeyLogLevel,
			Reason: fmt.Sprintf("invalid level %q (want debug, info, warn or error)", level),
		})
	}

	if limit, ok := prof.Get(KeyMemoryLimit); ok && !memoryLimitRe.MatchString(limit) {
		violations = append(violations, Violation{
			Key:    KeyMemoryLimit,
			Reason: fmt.Sprintf("invalid limit %q (want <integer><g|m|k>, e.g. 2g)", limit),
		})
	}

	return violations
}

func encodeProfile(prof *Profile) []byte {
	var buf bytes.Buffer
	for _, e := range prof.Entries {
		fmt.Fprintf(&buf, "%s=%s\n", e.Key, e.Value)
	}
	return buf.Bytes()
}

func diffLines(rawA, rawB []byte) []DiffLine {
	linesA := splitLines(rawA)
	linesB := splitLines(rawB)

	n := len(linesA)
	if len(linesB) > n {
		n = len(linesB)
	}

	var diffs []DiffLine
	for i := 0; i < n; i++ {
		var left, right string
		if i < len(linesA) {
			left = linesA[i]
		}
		if i < len(linesB) {
			right = linesB[i]
		}
		if left != right {
			diffs = append(diffs, DiffLine{Line: i + 1, Left: left, Right: right})
		}
	}
	return diffs
}

func splitLines(raw []byte) []string {
	s := strings.TrimRight(string(raw), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
