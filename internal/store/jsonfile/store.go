// Package jsonfile persists record collections as flat JSON array files,
// one file per collection, full-rewrite-on-update.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/store"
)

// Canonical collection filenames inside the data directory.
const (
	StudentsFile        = "students.json"
	ProfessorsFile      = "professors.json"
	GuestReviewersFile  = "guest_reviewers.json"
	CoursesFile         = "courses.json"
	ThesisRequestsFile  = "thesis_requests.json"
	DefenseRequestsFile = "defense_requests.json"
)

type Collection[T any] struct {
	path string
}

func New[T any](path string) *Collection[T] {
	return &Collection[T]{path: path}
}

// Load reads the full collection. A missing or corrupt file reads as an
// empty collection; any other outcome of a read is a real error.
func (c *Collection[T]) Load() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		logger.Debug.Printf("Treating unreadable collection %s as empty: %v", c.path, err)
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Debug.Printf("Treating malformed collection %s as empty: %v", c.path, err)
		return []T{}, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// ReplaceAll rewrites the collection atomically: the records are written to
// a temp file in the same directory and renamed over the target, so readers
// never observe a torn file. Write failures are returned, never swallowed.
func (c *Collection[T]) ReplaceAll(records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", c.path, err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", c.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write collection %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush collection %s: %w", c.path, err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace collection %s: %w", c.path, err)
	}
	return nil
}

// OpenStores wires the six collections under dataDir.
func OpenStores(dataDir string) *store.Stores {
	path := func(name string) string { return filepath.Join(dataDir, name) }
	return &store.Stores{
		Students:        New[models.Account](path(StudentsFile)),
		Professors:      New[models.Account](path(ProfessorsFile)),
		GuestReviewers:  New[models.Account](path(GuestReviewersFile)),
		Courses:         New[models.CourseSlot](path(CoursesFile)),
		ThesisRequests:  New[models.ThesisRequest](path(ThesisRequestsFile)),
		DefenseRequests: New[models.DefenseRequest](path(DefenseRequestsFile)),
	}
}

// EnsureDataFiles creates the data directory and empty collection files that
// do not exist yet, so a fresh installation starts from well-formed files.
func EnsureDataFiles(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	names := []string{
		StudentsFile,
		ProfessorsFile,
		GuestReviewersFile,
		CoursesFile,
		ThesisRequestsFile,
		DefenseRequestsFile,
	}
	for _, name := range names {
		path := filepath.Join(dataDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return fmt.Errorf("failed to seed %s: %w", path, err)
		}
	}
	return nil
}
