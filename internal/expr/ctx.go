package expr

import "strings"

// Ctx is an ordered substitution context: a mapping from PARAM (or,
// for the preliminary matcher, VARIABLE) leaves to the Expr they are
// bound to. The empty Ctx denotes the identity substitution. Order is
// insertion order, kept only so diagnostics print deterministically.
type Ctx struct {
	keys []*Expr
	m    map[*Expr]*Expr
}

// NewCtx returns an empty substitution context.
func NewCtx() *Ctx {
	return &Ctx{m: make(map[*Expr]*Expr)}
}

// Get looks up e's binding.
func (c *Ctx) Get(e *Expr) (*Expr, bool) {
	v, ok := c.m[e]
	return v, ok
}

// Set records a new binding. Callers (the matcher) never call Set twice
// for the same key without an intervening Clear.
func (c *Ctx) Set(k, v *Expr) {
	if _, exists := c.m[k]; !exists {
		c.keys = append(c.keys, k)
	}
	c.m[k] = v
}

// Clear empties the context in place, reusing its backing map.
func (c *Ctx) Clear() {
	c.keys = c.keys[:0]
	for k := range c.m {
		delete(c.m, k)
	}
}

// Empty reports whether the context has no bindings.
func (c *Ctx) Empty() bool { return len(c.m) == 0 }

// Clone returns an independent copy with the same bindings.
func (c *Ctx) Clone() *Ctx {
	out := NewCtx()
	for _, k := range c.keys {
		out.Set(k, c.m[k])
	}
	return out
}

func (c *Ctx) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, k := range c.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k.Kind.String())
		sb.WriteString(" -> ")
		sb.WriteString(c.m[k].Kind.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
