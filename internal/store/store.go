// Package store persists publish attempts to a JSON tracking file.
//
// The file holds every attempt in order plus statistics derived from them.
// Statistics are always recomputed from the entries, on load and on every
// write, so the two can never drift apart.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"chefpress/internal/core"
	"chefpress/internal/logger"
)

// Entry is the summary kept for one publish attempt.
type Entry struct {
	PostID      string     `json:"post_id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	SEOScore    float64    `json:"seo_score"`
	WordCount   int        `json:"word_count"`
	PublishedAt *time.Time `json:"published_at"`
	IsPublished bool       `json:"is_published"`
	URL         string     `json:"url"`
}

// Statistics is the aggregate derived from all entries.
type Statistics struct {
	TotalPublished  int            `json:"total_published"`
	TotalDrafts     int            `json:"total_drafts"`
	AvgSEOScore     float64        `json:"avg_seo_score"`
	CategoriesCount map[string]int `json:"categories_count"`
	LastPublish     *time.Time     `json:"last_publish"`
}

// Document is the on-disk layout.
type Document struct {
	Recipes    []Entry    `json:"recipes"`
	Statistics Statistics `json:"statistics"`
}

var (
	// ErrCorrupt is returned by Read when the tracking file is not valid JSON.
	ErrCorrupt = errors.New("tracking file is corrupt")
	// ErrReadOnly is returned by Track on a store opened with Read.
	ErrReadOnly = errors.New("tracking store is read-only")
)

// Store is the tracking file plus its in-memory copy. It assumes a single
// writer.
type Store struct {
	path     string
	doc      Document
	readOnly bool
}

// Open loads the tracking file at path. A missing file yields an empty store.
// A file that is not valid JSON is moved to path+".corrupt" and the store
// starts empty.
func Open(path string) (*Store, error) {
	s, err := load(path)
	if !errors.Is(err, ErrCorrupt) {
		return s, err
	}

	backup := path + ".corrupt"
	logger.Warn("Tracking file is corrupt, starting empty", "path", path, "backup", backup, "error", err.Error())
	if rerr := os.Rename(path, backup); rerr != nil {
		return nil, fmt.Errorf("failed to move corrupt tracking file aside: %w", rerr)
	}
	return newStore(path), nil
}

// Read loads the tracking file at path without ever touching it. A corrupt
// file is reported as ErrCorrupt and left where it is. Track on the result
// fails with ErrReadOnly.
func Read(path string) (*Store, error) {
	s, err := load(path)
	if err != nil {
		return nil, err
	}
	s.readOnly = true
	return s, nil
}

func newStore(path string) *Store {
	s := &Store{path: path}
	s.doc.Statistics = Derive(nil)
	return s
}

func load(path string) (*Store, error) {
	s := newStore(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tracking file %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}

	s.doc.Recipes = doc.Recipes
	s.doc.Statistics = Derive(doc.Recipes)
	return s, nil
}

// Path returns the tracking file location.
func (s *Store) Path() string { return s.path }

// Track appends an entry for r and rewrites the file. If the write fails the
// entry is dropped again so memory matches what is on disk.
func (s *Store) Track(r *core.Recipe, published bool) error {
	if s.readOnly {
		return ErrReadOnly
	}
	e := Entry{
		PostID:      r.PostID,
		Title:       r.Title,
		Category:    r.Category,
		SEOScore:    r.SEOScore,
		WordCount:   r.WordCount,
		IsPublished: published,
		URL:         r.PostURL,
	}
	if !r.PublishedAt.IsZero() {
		t := r.PublishedAt.UTC()
		e.PublishedAt = &t
	}

	prev := s.doc
	s.doc.Recipes = append(slices.Clone(s.doc.Recipes), e)
	s.doc.Statistics = Derive(s.doc.Recipes)

	if err := s.save(); err != nil {
		s.doc = prev
		return err
	}

	logger.Info("Recipe tracked", "title", e.Title, "category", e.Category, "published", published, "total", len(s.doc.Recipes))
	return nil
}

// Statistics returns a copy of the current aggregate.
func (s *Store) Statistics() Statistics {
	st := s.doc.Statistics
	st.CategoriesCount = maps.Clone(st.CategoriesCount)
	return st
}

// Entries returns a copy of all entries in the order they were tracked.
func (s *Store) Entries() []Entry {
	return slices.Clone(s.doc.Recipes)
}

// CategoryCounts returns the number of tracked entries per category.
func (s *Store) CategoryCounts() map[string]int {
	return maps.Clone(s.doc.Statistics.CategoriesCount)
}

// Derive computes the aggregate for entries. The average SEO score only
// includes entries with a positive score.
func Derive(entries []Entry) Statistics {
	st := Statistics{CategoriesCount: map[string]int{}}

	var scoreSum float64
	var scored int
	for _, e := range entries {
		if e.IsPublished {
			st.TotalPublished++
			if e.PublishedAt != nil && (st.LastPublish == nil || e.PublishedAt.After(*st.LastPublish)) {
				t := *e.PublishedAt
				st.LastPublish = &t
			}
		} else {
			st.TotalDrafts++
		}
		st.CategoriesCount[e.Category]++
		if e.SEOScore > 0 {
			scoreSum += e.SEOScore
			scored++
		}
	}
	if scored > 0 {
		st.AvgSEOScore = scoreSum / float64(scored)
	}
	return st
}

// save rewrites the whole document through a temp file and rename so a
// crash leaves either the old or the new file.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tracking data: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write tracking data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync tracking data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set tracking file mode: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace tracking file %s: %w", s.path, err)
	}
	return nil
}
