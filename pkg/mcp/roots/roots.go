// Package roots owns the client-side roots set: the file-or-namespace
// anchors the client authorizes the server to address. The client is the
// side that owns this set, so mutation happens locally and is reported to
// the server via a change callback rather than any request/response.
package roots

import (
	"sync"

	// Packages
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
)

////////////////////////////////////////////////////////////////////////////
// TYPES

// ChangeFunc is invoked, outside any lock, after the registry's contents
// change as a result of Add or Remove. It is never called for the initial
// seed passed to New.
type ChangeFunc func()

// Registry is a thread-safe, insertion-ordered set of roots keyed by uri.
// Registering the same uri twice overwrites the earlier entry in place
// (last write wins) without disturbing its position in iteration order.
type Registry struct {
	mu      sync.Mutex
	byURI   map[string]schema.Root
	order   []string
	onChange ChangeFunc
}

////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a Registry seeded with initial, in the order given.
// Duplicate URIs in initial keep only the last occurrence's Name, in its
// first-seen position.
func New(onChange ChangeFunc, initial ...schema.Root) *Registry {
	r := &Registry{
		byURI:    make(map[string]schema.Root, len(initial)),
		onChange: onChange,
	}
	for _, root := range initial {
		if _, exists := r.byURI[root.URI]; !exists {
			r.order = append(r.order, root.URI)
		}
		r.byURI[root.URI] = root
	}
	return r
}

////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Add registers root, overwriting any existing entry for the same uri in
// place, and reports the change.
func (r *Registry) Add(root schema.Root) {
	r.mu.Lock()
	if _, exists := r.byURI[root.URI]; !exists {
		r.order = append(r.order, root.URI)
	}
	r.byURI[root.URI] = root
	r.mu.Unlock()

	if r.onChange != nil {
		r.onChange()
	}
}

// Remove drops the root at uri, if present, and reports the change. It
// reports whether a root was actually removed.
func (r *Registry) Remove(uri string) bool {
	r.mu.Lock()
	_, existed := r.byURI[uri]
	if existed {
		delete(r.byURI, uri)
		for i, u := range r.order {
			if u == uri {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if existed && r.onChange != nil {
		r.onChange()
	}
	return existed
}

// List returns the current roots in stable insertion order.
func (r *Registry) List() []schema.Root {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]schema.Root, 0, len(r.order))
	for _, uri := range r.order {
		out = append(out, r.byURI[uri])
	}
	return out
}

// Len reports the number of registered roots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
