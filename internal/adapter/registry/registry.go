// Package registry resolves a store adapter from a product URL or store handle.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/awardrobe/pricetracker/internal/adapter"
	"github.com/awardrobe/pricetracker/internal/apperr"
)

type prefixEntry struct {
	prefix  string
	adapter adapter.Adapter
}

// Registry is an immutable table of adapters.
type Registry struct {
	adapters []adapter.Adapter
	byHandle map[string]adapter.Adapter
	// prefixes is sorted longest first.
	prefixes []prefixEntry
}

// New builds the table. It panics on a duplicate handle or URL prefix, both of
// which are programming errors.
func New(adapters ...adapter.Adapter) *Registry {
	r := &Registry{
		adapters: make([]adapter.Adapter, 0, len(adapters)),
		byHandle: make(map[string]adapter.Adapter, len(adapters)),
	}

	seenPrefix := map[string]string{}
	for _, a := range adapters {
		handle := a.Handle()
		if _, exists := r.byHandle[handle]; exists {
			panic(fmt.Sprintf("registry: duplicate store handle %q", handle))
		}
		r.byHandle[handle] = a
		r.adapters = append(r.adapters, a)

		for _, prefix := range a.URLPrefixes() {
			if owner, exists := seenPrefix[prefix]; exists {
				panic(fmt.Sprintf("registry: url prefix %q claimed by %q and %q", prefix, owner, handle))
			}
			seenPrefix[prefix] = handle
			r.prefixes = append(r.prefixes, prefixEntry{prefix: prefix, adapter: a})
		}
	}

	sort.SliceStable(r.prefixes, func(i, j int) bool {
		return len(r.prefixes[i].prefix) > len(r.prefixes[j].prefix)
	})

	return r
}

// Resolve matches an exact handle first, then the longest URL prefix.
func (r *Registry) Resolve(urlOrHandle string) (adapter.Adapter, error) {
	if a, ok := r.byHandle[urlOrHandle]; ok {
		return a, nil
	}

	for _, entry := range r.prefixes {
		if strings.HasPrefix(urlOrHandle, entry.prefix) {
			return entry.adapter, nil
		}
	}

	return nil, &apperr.UnsupportedStoreError{Input: urlOrHandle}
}

// Adapters returns every registered adapter in registration order.
func (r *Registry) Adapters() []adapter.Adapter {
	out := make([]adapter.Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}
