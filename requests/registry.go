package requests

import (
	"context"
	"fmt"
	"sort"
)

// Handler serves one JSON-RPC method. Its result is encoded to JSON as is.
type Handler func(ctx context.Context, b *Backend, params Params) (interface{}, error)

type Method struct {
	Name    string
	Handler Handler
}

// Registry maps method names to handlers. It is immutable once built.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry merges method lists, rejecting names registered twice.
func NewRegistry(lists ...[]Method) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler)}
	for _, list := range lists {
		for _, method := range list {
			if method.Handler == nil {
				return nil, fmt.Errorf("method %s has no handler", method.Name)
			}
			if _, ok := r.handlers[method.Name]; ok {
				return nil, fmt.Errorf("method %s registered twice", method.Name)
			}
			r.handlers[method.Name] = method.Handler
		}
	}
	return r, nil
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered method names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int { return len(r.handlers) }
