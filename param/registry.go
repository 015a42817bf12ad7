package param

// Registry collects the parameter handles of one plugin instance and
// preserves registration order for host enumeration.
type Registry struct {
	floats map[string]*Float
	bools  map[string]*Bool
	order  []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		floats: make(map[string]*Float),
		bools:  make(map[string]*Bool),
	}
}

// AddFloat registers f and returns it. A duplicate name replaces the
// previous handle.
func (r *Registry) AddFloat(f *Float) *Float {
	if _, seen := r.floats[f.Name()]; !seen {
		r.order = append(r.order, f.Name())
	}
	r.floats[f.Name()] = f
	return f
}

// AddBool registers b and returns it.
func (r *Registry) AddBool(b *Bool) *Bool {
	if _, seen := r.bools[b.Name()]; !seen {
		r.order = append(r.order, b.Name())
	}
	r.bools[b.Name()] = b
	return b
}

// Float returns the float parameter with the given name, or nil.
func (r *Registry) Float(name string) *Float { return r.floats[name] }

// Bool returns the bool parameter with the given name, or nil.
func (r *Registry) Bool(name string) *Bool { return r.bools[name] }

// Names returns parameter names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
