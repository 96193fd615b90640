package compute

import (
	"fmt"
	"sort"

	"github.com/san-kum/barneshut/internal/barneshut"
)

// Backend computes the net force on every body of a snapshot. Implementations
// must not modify the bodies.
type Backend interface {
	Name() string
	Forces(bodies []*barneshut.Body, p barneshut.Params) []barneshut.Vector
}

var backends = map[string]func(workers int) Backend{
	"direct": func(workers int) Backend { return NewCPUBackend(workers) },
	"tree":   func(workers int) Backend { return NewTreeBackend(workers) },
}

// Get returns the named backend configured with the given worker count.
func Get(name string, workers int) (Backend, error) {
	ctor, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("compute: unknown backend %q", name)
	}
	return ctor(workers), nil
}

// Names lists the registered backends in sorted order.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
