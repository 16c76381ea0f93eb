// Package expr implements the hash-consed expression DAG node: the
// single data structure the matcher, evaluator, and type checker all
// traverse. See internal/state for the factory that owns construction.
package expr

import (
	"github.com/alfc-run/alfc/internal/kind"
)

// Expr is an immutable DAG node, except for the lazily-set Type field
// (write-once cache filled in by the type checker) — mirrors the
// original's "interior-mutable cell guarded by write-once" design note.
// Two nodes built by the factory in internal/state's MkExpr with the
// same Kind and identical child *Expr references are always the same
// *Expr, since MkExpr hash-conses on (Kind, children). Leaves made by
// the other factory methods are not keyed that way: literals are
// deduplicated by (kind, spelling), named constants by (kind, name),
// and every PARAM/VARIABLE leaf is fresh.
type Expr struct {
	Kind kind.Kind
	Ch   []*Expr

	typ *Expr

	// ground and evaluatable are computed bottom-up once at construction
	// time (every child already exists by then), so both are O(1) to read.
	ground      bool
	evaluatable bool
}

// New is called only by the factory (internal/state), after it has
// confirmed this (Kind, Ch) combination is not already hash-consed.
func New(k kind.Kind, ch []*Expr, headEvaluatable bool) *Expr {
	e := &Expr{Kind: k, Ch: ch}
	e.ground = k != kind.PARAM
	// FAIL must never take the "shortcut" path in evaluate (it short-circuits
	// the whole evaluation), so it counts as evaluatable even though it
	// carries no literal-operator payload.
	e.evaluatable = kind.IsLiteralOp(k) || k == kind.FAIL || (k == kind.APPLY && headEvaluatable)
	for _, c := range ch {
		if !c.ground {
			e.ground = false
		}
		if c.evaluatable {
			e.evaluatable = true
		}
	}
	return e
}

func (e *Expr) NumChildren() int { return len(e.Ch) }

func (e *Expr) Child(i int) *Expr { return e.Ch[i] }

// IsGround reports whether e contains no PARAM subterm.
func (e *Expr) IsGround() bool { return e.ground }

// IsEvaluatable reports whether e's kind is a literal operator, e is an
// APPLY whose head is a program/oracle constant, or e contains such a
// subterm.
func (e *Expr) IsEvaluatable() bool { return e.evaluatable }

// Type returns the cached synthesized type, or nil if getType has not
// yet succeeded for this node.
func (e *Expr) Type() *Expr { return e.typ }

// SetType writes the type cache. Only the type checker calls this; it is
// a write-once operation except that resetting to nil on failure (the
// fail-fast path in getType) is explicitly permitted.
func (e *Expr) SetType(t *Expr) { e.typ = t }

// IsNull reports whether e is nil (the type checker's failure result)
// or the sentinel NONE node.
func (e *Expr) IsNull() bool { return e == nil || e.Kind == kind.NONE }

// Assoc is the associativity attribute an AppInfo may carry for an
// operator used with the list primitives (EVAL_CONS/APPEND/TO_LIST/FROM_LIST).
type Assoc int

const (
	NoAssoc Assoc = iota
	RightAssocNil
	LeftAssocNil
)

// AppInfo holds the per-operator attributes the state registry tracks:
// an operator's associativity and its designated nil (identity) term.
type AppInfo struct {
	Assoc   Assoc
	NilTerm *Expr
}
