package model

// Scope is a persistent chain of loop-variable bindings. Binding a name
// returns a new link and leaves the receiver untouched, so entering a loop
// body costs one allocation regardless of how many outer bindings exist.
// A nil *Scope is the empty scope.
type Scope struct {
	parent *Scope
	name   string
	value  Value
}

// Bind returns a scope in which name is bound to v, shadowing any outer
// binding of the same name.
func (s *Scope) Bind(name string, v Value) *Scope {
	return &Scope{parent: s, name: name, value: v}
}

// Lookup finds the innermost binding of name. Names are case-sensitive.
func (s *Scope) Lookup(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.value, true
		}
	}
	return Null(), false
}

// Depth returns the number of bindings in the chain.
func (s *Scope) Depth() int {
	n := 0
	for cur := s; cur != nil; cur = cur.parent {
		n++
	}
	return n
}

// Names returns the bound names, innermost first.
func (s *Scope) Names() []string {
	var names []string
	for cur := s; cur != nil; cur = cur.parent {
		names = append(names, cur.name)
	}
	return names
}
