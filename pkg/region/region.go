// Package region isolates the header and content boxes of a tip dialogue screenshot.
package region

import (
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"
)

// DefaultThreshold is the binarization cut used when none is configured.
const DefaultThreshold uint8 = 200

// Locator splits a screenshot into its header and content regions. Both outputs have the
// input's dimensions and are black outside the selected contour.
type Locator interface {
	Locate(img image.Image) (header, content image.Image, err error)
}

// Factory builds a locator for a binarization threshold.
type Factory func(threshold uint8) Locator

var (
	backendsMu sync.RWMutex
	backends   = map[string]Factory{
		"contour": func(threshold uint8) Locator { return NewContourLocator(threshold) },
	}
)

// Register makes a locator backend selectable by name.
func Register(name string, f Factory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[strings.ToLower(name)] = f
}

// Backends lists the registered backend names.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	out := make([]string, 0, len(backends))
	for k := range backends {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New returns the named backend. An empty name selects the pure-Go contour locator.
func New(backend string, threshold uint8) (Locator, error) {
	if backend == "" {
		backend = "contour"
	}
	backendsMu.RLock()
	f, ok := backends[strings.ToLower(backend)]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown locator backend %q (available: %s)", backend, strings.Join(Backends(), ", "))
	}
	return f(threshold), nil
}
