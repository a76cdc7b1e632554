package effect

import "sort"

// Registry maps effect names to implementations.
type Registry struct{ m map[string]Effect }

func NewRegistry() *Registry { return &Registry{m: map[string]Effect{}} }

func (r *Registry) Register(e Effect) {
	if e == nil {
		return
	}
	r.m[e.Name()] = e
}

func (r *Registry) Get(name string) (Effect, bool) { e, ok := r.m[name]; return e, ok }

func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Builtin returns a registry pre-loaded with every shipped effect.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(Fade{})
	r.Register(Solid{})
	r.Register(Rainbow{})
	r.Register(Breathe{})
	return r
}
