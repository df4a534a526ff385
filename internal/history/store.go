// Package history persists metric records per site in a single JSON document.
//
// The document maps each site to {"records": [...]} in fetch order. A Store is
// owned by one process: Persist replaces the whole file and nothing guards
// against a second writer.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ethpandaops/pagespeed-history/internal/metrics"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound indicates there is no history file yet.
	ErrNotFound = errors.New("history not found")
	// ErrCorruptState indicates the history file exists but cannot be read as a history document.
	ErrCorruptState = errors.New("history is corrupt")
	// ErrWriteFailure indicates the history file could not be written.
	ErrWriteFailure = errors.New("history write failure")
)

// Store maps sites to their recorded history.
type Store struct {
	path     string
	sites    map[string]*SiteHistory
	warnings []string
	log      logrus.FieldLogger
}

// New returns an empty in-memory store backed by path. Nothing is written.
func New(log logrus.FieldLogger, path string) *Store {
	return &Store{
		path:  path,
		sites: make(map[string]*SiteHistory),
		log:   log.WithField("component", "history_store"),
	}
}

// Load reads the store at path. Entries whose records are missing or not a list
// load as corrupt entries and are reported through Warnings.
func Load(log logrus.FieldLogger, path string) (*Store, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrCorruptState, path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrCorruptState, path, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s does not hold a JSON object", ErrCorruptState, path)
	}

	s := New(log, path)
	for site, msg := range raw {
		h, warning := decodeSiteHistory(msg)
		if warning != "" {
			s.warn(fmt.Sprintf("history for %s %s", site, warning))
		}
		s.sites[site] = h
	}

	s.log.WithFields(logrus.Fields{
		"path":  path,
		"sites": len(s.sites),
	}).Debug("loaded history")

	return s, nil
}

// Initialize creates an empty store at path and writes it immediately.
func Initialize(log logrus.FieldLogger, path string) (*Store, error) {
	s := New(log, path)
	if err := s.Persist(); err != nil {
		return nil, err
	}

	s.log.WithField("path", path).Info("created new history file")

	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of sites.
func (s *Store) Len() int {
	return len(s.sites)
}

// Sites returns the site keys in sorted order.
func (s *Store) Sites() []string {
	sites := make([]string, 0, len(s.sites))
	for site := range s.sites {
		sites = append(sites, site)
	}
	sort.Strings(sites)

	return sites
}

// Has reports whether site has an entry, corrupt or not.
func (s *Store) Has(site string) bool {
	_, ok := s.sites[site]
	return ok
}

// Records returns a copy of the readable records of site in fetch order.
func (s *Store) Records(site string) []metrics.Record {
	h, ok := s.sites[site]
	if !ok {
		return nil
	}

	return h.Records()
}

// Append adds records to the end of site's history. A corrupt entry is
// replaced by a fresh list holding only the new records.
func (s *Store) Append(site string, records ...metrics.Record) {
	if len(records) == 0 {
		return
	}

	h, ok := s.sites[site]
	switch {
	case !ok:
		h = &SiteHistory{}
		s.sites[site] = h
	case h.Corrupt():
		s.warn(fmt.Sprintf("history for %s was corrupted and has been reset", site))
		h = &SiteHistory{}
		s.sites[site] = h
	}

	for _, r := range records {
		h.items = append(h.items, item{record: r})
	}

	s.log.WithFields(logrus.Fields{
		"site":    site,
		"added":   len(records),
		"records": len(h.items),
	}).Debug("appended records")
}

// Persist writes the whole store to its path, replacing the previous file.
func (s *Store) Persist() error {
	data, err := json.MarshalIndent(s.sites, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding history: %v", ErrWriteFailure, err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}

	s.log.WithFields(logrus.Fields{
		"path":  s.path,
		"sites": len(s.sites),
	}).Debug("persisted history")

	return nil
}

// Warnings returns and clears the data-quality warnings gathered since the last call.
func (s *Store) Warnings() []string {
	w := s.warnings
	s.warnings = nil

	return w
}

func (s *Store) warn(msg string) {
	s.log.Debug(msg)
	s.warnings = append(s.warnings, msg)
}

// MoveAside renames the history file at path to path.<label>-<timestamp> so
// the next Persist does not overwrite it. It returns the new location.
func MoveAside(path, label string) (string, error) {
	target := fmt.Sprintf("%s.%s-%s", path, label, time.Now().UTC().Format("20060102T150405"))
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("moving history aside: %w", err)
	}

	return target, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("moving history into place: %w", err)
	}

	return nil
}
