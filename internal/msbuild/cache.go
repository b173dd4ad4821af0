package msbuild

import (
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Cache is a process-wide cache of loaded project handles, keyed by project
// path. Entries are evicted when the watcher reports a change to the project
// file, so the next Get reloads the description from disk.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Handle
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCache creates a project cache. The fsnotify watcher is optional: when
// it cannot be created the cache still works, it just never self-evicts.
func NewCache() *Cache {
	c := &Cache{
		entries: make(map[string]*Handle),
		done:    make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("Project cache running without file watcher", "error", err)
		return c
	}
	c.watcher = watcher
	go c.watch()

	return c
}

// Get returns the cached handle for the project path, loading it on a miss
func (c *Cache) Get(path string) (*Handle, error) {
	c.mu.RLock()
	h, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return h, nil
	}

	h, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Another loader may have raced us; keep the first entry so all
	// borrowers share one handle
	if existing, ok := c.entries[h.Path()]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.entries[h.Path()] = h
	c.mu.Unlock()

	if c.watcher != nil {
		if err := c.watcher.Add(h.Path()); err != nil {
			slog.Warn("Failed to watch project file", "path", h.Path(), "error", err)
		}
	}

	return h, nil
}

// Invalidate drops the cached handle for the project path
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

func (c *Cache) watch() {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				slog.Debug("Project file changed, evicting cache entry", "path", event.Name, "op", event.Op.String())
				c.Invalidate(event.Name)
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Project watcher error", "error", err)
		}
	}
}

// Close stops the watcher
func (c *Cache) Close() error {
	close(c.done)
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}
