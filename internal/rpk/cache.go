// Package rpk caches resolve maps of rule packages, keyed by package path
// and invalidated when the package file changes.
package rpk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/prt"
)

// ErrInvalidTimestamp is returned when a package path is not a regular file.
var ErrInvalidTimestamp = errors.New("rule package has no valid modification time")

// CacheStatus tells whether a lookup was served from the cache.
type CacheStatus int

const (
	Hit CacheStatus = iota
	Miss
)

func (s CacheStatus) String() string {
	if s == Hit {
		return "hit"
	}
	return "miss"
}

// LookupResult is the outcome of Cache.Get. ResolveMap is nil on failure.
type LookupResult struct {
	ResolveMap prt.ResolveMap
	Status     CacheStatus
}

type entry struct {
	resolveMap prt.ResolveMap
	modTime    time.Time
}

// Cache maps rule package paths to resolve maps. Packages are unpacked below
// unpackDir. It is safe for concurrent use.
type Cache struct {
	engine    prt.Engine
	unpackDir string

	mu      sync.Mutex
	entries map[string]entry
}

// NewCache creates an empty cache.
func NewCache(engine prt.Engine, unpackDir string) *Cache {
	return &Cache{engine: engine, unpackDir: unpackDir, entries: make(map[string]entry)}
}

// UnpackDir returns the directory packages are unpacked to.
func (c *Cache) UnpackDir() string { return c.unpackDir }

// Len returns the number of cached packages.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Get returns the resolve map of the package at path. A package whose
// modification time changed since it was cached is dropped together with
// its unpacked files and loaded again.
func (c *Cache) Get(ctx context.Context, path string) (LookupResult, error) {
	logger := ctxlog.FromContext(ctx)
	failure := LookupResult{Status: Miss}

	modTime, err := modificationTime(path)
	if err != nil {
		return failure, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if ok && e.modTime.Equal(modTime) {
		return LookupResult{ResolveMap: e.resolveMap, Status: Hit}, nil
	}
	if ok {
		delete(c.entries, path)
		unpacked := filepath.Join(c.unpackDir, filepath.Base(path))
		if err := os.RemoveAll(unpacked); err != nil {
			logger.Warn("Could not remove unpacked rule package.", "dir", unpacked, "error", err)
		}
		logger.Info("Rule package change detected, reloading.", "path", path)
	}

	uri, err := prt.FileURI(path)
	if err != nil {
		return failure, err
	}
	rm, err := c.engine.CreateResolveMap(uri, c.unpackDir)
	if err != nil {
		return failure, fmt.Errorf("resolve map for %s: %w", path, err)
	}
	c.entries[path] = entry{resolveMap: rm, modTime: modTime}
	logger.Debug("Unpacked rule package.", "path", path, "dir", c.unpackDir)
	return LookupResult{ResolveMap: rm, Status: Miss}, nil
}

// Close removes the unpack directory.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	if c.unpackDir == "" {
		return nil
	}
	return os.RemoveAll(c.unpackDir)
}

func modificationTime(path string) (time.Time, error) {
	if path == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidTimestamp, err)
	}
	if !fi.Mode().IsRegular() {
		return time.Time{}, fmt.Errorf("%w: %s is not a regular file", ErrInvalidTimestamp, path)
	}
	return fi.ModTime(), nil
}
