package scheme

import (
	"fmt"
	"sync"
)

// NotFoundError is returned by Registry.Get for scheme names that were
// never registered. It indicates a configuration problem in the caller,
// not a transport failure.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("scheme %q is not registered", e.Name)
}

// Registry maps scheme names to Schemes. The zero value is not usable;
// construct with NewRegistry. Safe for concurrent use.
type Registry struct {
	schemes map[string]Scheme
	lock    sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{schemes: make(map[string]Scheme)}
}

// Register inserts the scheme under its name, replacing any previous
// entry for that name.
func (r *Registry) Register(s Scheme) {
	r.lock.Lock()
	r.schemes[s.Name] = s
	r.lock.Unlock()
}

// Get returns the scheme registered under the given name, or a
// *NotFoundError if there is none.
func (r *Registry) Get(name string) (Scheme, error) {
	r.lock.Lock()
	s, ok := r.schemes[name]
	r.lock.Unlock()
	if !ok {
		return Scheme{}, &NotFoundError{Name: name}
	}
	return s, nil
}

// Names returns the registered scheme names in no particular order.
func (r *Registry) Names() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	var ret []string
	for name := range r.schemes {
		ret = append(ret, name)
	}
	return ret
}
