package marks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// YearStore owns the in-memory document for one academic year and the JSON
// file backing it. It is always passed explicitly; there is no ambient
// store. All access is single-threaded from the UI loop.
type YearStore struct {
	dir  string
	year string
	data map[string]map[string]*Subject
}

// OpenYear loads <dir>/<year>.json. A missing file returns ErrNotFound so
// the caller can decide which semesters to initialize.
func OpenYear(dir, year string) (*YearStore, error) {
	path := yearPath(dir, year)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("year %s: %w", year, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read year file: %w", err)
	}

	data := make(map[string]map[string]*Subject)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse year file %s: %w", path, err)
	}
	// A semester serialized while empty comes back as a nil map.
	for sem, subjects := range data {
		if subjects == nil {
			data[sem] = make(map[string]*Subject)
		}
	}
	return &YearStore{dir: dir, year: year, data: data}, nil
}

// InitYear creates a new year document containing the chosen semesters,
// all empty, and saves it immediately.
func InitYear(dir, year string, semesters []string) (*YearStore, error) {
	data := make(map[string]map[string]*Subject, len(semesters))
	for _, sem := range semesters {
		data[sem] = make(map[string]*Subject)
	}
	ys := &YearStore{dir: dir, year: year, data: data}
	if err := ys.Save(); err != nil {
		return nil, err
	}
	return ys, nil
}

// Year returns the academic year this store holds.
func (ys *YearStore) Year() string { return ys.year }

// Semesters returns the semester names present in the document, in
// academic order (Autumn, Spring, Annual).
func (ys *YearStore) Semesters() []string {
	var names []string
	for _, name := range SemesterNames {
		if _, ok := ys.data[name]; ok {
			names = append(names, name)
		}
	}
	// Tolerate names outside the known set in hand-edited files.
	if len(names) < len(ys.data) {
		names = names[:0]
		for name := range ys.data {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	return names
}

// HasSemester reports whether the document contains the semester.
func (ys *YearStore) HasSemester(name string) bool {
	_, ok := ys.data[name]
	return ok
}

// Subject returns the record stored under (semester, code). It never
// creates: resolution of Annual projections is the engine's concern.
func (ys *YearStore) Subject(semester, code string) (*Subject, error) {
	subjects, ok := ys.data[semester]
	if !ok {
		return nil, fmt.Errorf("semester %q: %w", semester, ErrNotFound)
	}
	subj, ok := subjects[code]
	if !ok {
		return nil, fmt.Errorf("subject %q: %w", code, ErrNotFound)
	}
	return subj, nil
}

// getOrCreate returns the record under (semester, code), inserting one with
// the default fields when absent: empty assignments, zero marks, zero exam.
// The semester bucket itself is created on demand.
func (ys *YearStore) getOrCreate(semester, code, name string, syncSource bool) *Subject {
	subjects, ok := ys.data[semester]
	if !ok {
		subjects = make(map[string]*Subject)
		ys.data[semester] = subjects
	}
	if subj, ok := subjects[code]; ok {
		return subj
	}
	subj := &Subject{
		Name:        name,
		Assignments: []Assessment{},
		SyncSource:  syncSource,
	}
	subjects[code] = subj
	return subj
}

// Save writes the document atomically: the data is marshaled, written to a
// temp file in the same directory, and renamed over the old file. A failed
// save leaves the previous document intact on disk.
func (ys *YearStore) Save() error {
	if err := os.MkdirAll(ys.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	raw, err := json.MarshalIndent(ys.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal year data: %w", err)
	}

	tmp, err := os.CreateTemp(ys.dir, ys.year+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write year file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), yearPath(ys.dir, ys.year)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace year file: %w", err)
	}
	return nil
}

func yearPath(dir, year string) string {
	return filepath.Join(dir, year+".json")
}

// DefaultDataDir returns ~/.config/unimarks/data
func DefaultDataDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "unimarks", "data"), nil
}
