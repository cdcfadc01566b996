// Package store persists schema caches as YAML documents under the
// project's metadata directory. The on-disk documents are the single
// source of truth: every completion request reloads them, so writes are
// atomic (temp file plus rename) to keep concurrent readers off
// half-written documents.
package store

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jwinkels/ais/internal/schema"
)

const (
	// DefaultDir is the metadata directory created in the project root.
	DefaultDir = ".ais"

	cacheFile   = "cache.yaml"
	libraryFile = "apex.yaml"
)

// Store reads and writes the two cache documents: the per-project cache
// and the shared APEX library cache.
type Store struct {
	// Dir is the metadata directory holding both documents.
	Dir string

	// LibraryPath, when set, overrides the location of the APEX library
	// document. Teams can point it at a pre-built shared file.
	LibraryPath string
}

// New returns a store rooted at projectRoot's metadata directory.
func New(projectRoot string) *Store {
	return &Store{Dir: filepath.Join(projectRoot, DefaultDir)}
}

// CachePath returns the location of the per-project cache document.
func (s *Store) CachePath() string {
	return filepath.Join(s.Dir, cacheFile)
}

// LibraryCachePath returns the location of the APEX library document.
func (s *Store) LibraryCachePath() string {
	if s.LibraryPath != "" {
		return s.LibraryPath
	}
	return filepath.Join(s.Dir, libraryFile)
}

// Load reads the per-project cache. A missing or unreadable document
// yields an empty cache, never an error. The APEX version stamp from
// the library document is carried over for display.
func (s *Store) Load() *schema.Cache {
	c := loadDocument(s.CachePath())
	if lib := loadDocument(s.LibraryCachePath()); lib.ApexMajor != 0 {
		c.SetApexVersion(lib.ApexMajor, lib.ApexMinor)
	}
	return c
}

// LoadLibrary reads the APEX library cache, falling back to an empty
// cache on any failure.
func (s *Store) LoadLibrary() *schema.Cache {
	return loadDocument(s.LibraryCachePath())
}

// Save writes the per-project cache document.
func (s *Store) Save(c *schema.Cache) error {
	return writeAtomic(s.CachePath(), c)
}

// SaveLibrary writes the APEX library cache document.
func (s *Store) SaveLibrary(c *schema.Cache) error {
	return writeAtomic(s.LibraryCachePath(), c)
}

// Clear removes both documents. Missing files are not an error.
func (s *Store) Clear() error {
	for _, path := range []string{s.CachePath(), s.LibraryCachePath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func loadDocument(path string) *schema.Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.New()
	}
	var c schema.Cache
	if err := yaml.Unmarshal(data, &c); err != nil {
		return schema.New()
	}
	c.Reindex()
	return &c
}

// writeAtomic serializes the cache next to its destination and renames
// it into place so readers only ever observe complete documents.
func writeAtomic(path string, c *schema.Cache) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ais-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
