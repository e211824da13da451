package imaging

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Murmeldyret/DUNK/internal/mosaic"
)

// ErrNotLoaded is returned by MosaicCache.Get for unknown names.
var ErrNotLoaded = errors.New("mosaic not loaded")

// MosaicCache keeps open mosaics keyed by a caller-chosen name so that band
// statistics survive between tool calls.
//
// A mosaic replaced by Put, or removed by Evict or Clear, is closed.
type MosaicCache struct {
	mu      sync.RWMutex
	mosaics map[string]*mosaic.Mosaic
}

// NewMosaicCache creates an empty cache.
func NewMosaicCache() *MosaicCache {
	return &MosaicCache{mosaics: make(map[string]*mosaic.Mosaic)}
}

// Put stores m under name, closing any mosaic previously stored there.
func (c *MosaicCache) Put(name string, m *mosaic.Mosaic) error {
	c.mu.Lock()
	old, ok := c.mosaics[name]
	c.mosaics[name] = m
	c.mu.Unlock()

	if ok && old != m {
		if err := old.Close(); err != nil {
			return fmt.Errorf("failed to close replaced mosaic %q: %w", name, err)
		}
	}
	return nil
}

// Get returns the mosaic stored under name.
func (c *MosaicCache) Get(name string) (*mosaic.Mosaic, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.mosaics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotLoaded, name)
	}
	return m, nil
}

// Names returns the stored names in sorted order.
func (c *MosaicCache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.mosaics))
	for n := range c.mosaics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Evict closes and removes the mosaic stored under name. Unknown names are
// ignored.
func (c *MosaicCache) Evict(name string) error {
	c.mu.Lock()
	m, ok := c.mosaics[name]
	delete(c.mosaics, name)
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return m.Close()
}

// Clear closes and removes every mosaic.
func (c *MosaicCache) Clear() error {
	c.mu.Lock()
	old := c.mosaics
	c.mosaics = make(map[string]*mosaic.Mosaic)
	c.mu.Unlock()

	var errs []error
	for _, m := range old {
		errs = append(errs, m.Close())
	}
	return errors.Join(errs...)
}
