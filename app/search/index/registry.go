package index

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Registry keeps descriptors by index name, for callers which know only the name
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
}

// NewRegistry makes registry with given descriptors
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{descriptors: map[string]Descriptor{}}
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds descriptor, a second descriptor for the same index rejected
func (r *Registry) Register(d Descriptor) error {
	if err := Validate(d); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, has := r.descriptors[d.IndexName()]; has {
		return errors.Wrapf(ErrInvalid, "index %q already registered", d.IndexName())
	}
	r.descriptors[d.IndexName()] = d
	return nil
}

// Lookup returns descriptor of the index
func (r *Registry) Lookup(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, has := r.descriptors[name]
	if !has {
		return nil, errors.Wrapf(ErrInvalid, "index %q not registered", name)
	}
	return d, nil
}

// Names returns sorted names of registered indices
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}
