package runtime

// Environment is an ordered symbol table. The global environment has no
// parent; lambda calls run in child frames.
type Environment struct {
	names  []string
	values []Value
	index  map[string]int
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		index:  make(map[string]int),
		parent: parent,
	}
}

// Parent exposes the enclosing frame (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Root returns the outermost frame.
func (e *Environment) Root() *Environment {
	for e.parent != nil {
		e = e.parent
	}
	return e
}

// Get returns a copy of the value bound to name, searching outward. An absent
// name yields an UnboundSymbol error value.
func (e *Environment) Get(name string) Value {
	for env := e; env != nil; env = env.parent {
		if i, ok := env.index[name]; ok {
			return Copy(env.values[i])
		}
	}
	return Errorf(ErrUnboundSymbol, "Unbound symbol '%s'", name)
}

// Lookup is Get with a found flag and without the error value.
func (e *Environment) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if i, ok := env.index[name]; ok {
			return Copy(env.values[i]), true
		}
	}
	return nil, false
}

// Put binds a copy of v to name in this frame, replacing an existing binding
// in place so insertion order is kept.
func (e *Environment) Put(name string, v Value) {
	if i, ok := e.index[name]; ok {
		e.values[i] = Copy(v)
		return
	}
	e.index[name] = len(e.names)
	e.names = append(e.names, name)
	e.values = append(e.values, Copy(v))
}

// Def binds a copy of v in the global frame.
func (e *Environment) Def(name string, v Value) {
	e.Root().Put(name, v)
}

// Names returns the names bound in this frame in insertion order.
func (e *Environment) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Len returns the number of bindings in this frame.
func (e *Environment) Len() int {
	return len(e.names)
}

// Capture returns the environment a lambda closes over. The global frame is
// shared live so later `def`s (recursion included) stay visible; local frames
// are flattened into one copied frame under the global one.
func (e *Environment) Capture() *Environment {
	if e.parent == nil {
		return e
	}
	var frames []*Environment
	env := e
	for ; env.parent != nil; env = env.parent {
		frames = append(frames, env)
	}
	snapshot := NewEnvironment(env)
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		for j, name := range f.names {
			snapshot.Put(name, f.values[j])
		}
	}
	return snapshot
}

// Extend creates a child frame.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
