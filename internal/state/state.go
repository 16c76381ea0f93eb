// Package state implements the expression factory: hash-consing,
// the symbol table, and the attribute/literal/oracle registries every
// other core component consults (spec.md §4.1).
package state

import (
	"fmt"

	"github.com/alfc-run/alfc/internal/expr"
	"github.com/alfc-run/alfc/internal/kind"
	"github.com/alfc-run/alfc/internal/literal"
	"github.com/alfc-run/alfc/internal/trie"
)

// ExprInfo carries the registered surface spelling of a named leaf
// (CONST, PROGRAM_CONST, ORACLE, PARAM, VARIABLE), consulted by the
// debug printer so leaves print as their declared name rather than a
// bare kind tag.
type ExprInfo struct {
	Name string
}

// State is the expression factory. It owns every Expr ever constructed
// through it; all other holders (matcher, evaluator, type checker) keep
// only non-owning *expr.Expr references.
type State struct {
	// hashCons structurally hash-conses every non-leaf, non-literal node
	// (APPLY, LAMBDA, FUNCTION_TYPE, PROOF_TYPE, QUOTE_TYPE, TUPLE,
	// VARIABLE_LIST, EVAL_* operator applications, and the 0-arity
	// structural singletons TYPE/BOOL_TYPE/ABSTRACT_TYPE/NIL/FAIL).
	hashCons map[kind.Kind]*trie.Trie[*expr.Expr, *expr.Expr]

	// literals caches leaves by (kind, spelling): two literals with the
	// same kind and spelling are always the same node.
	literals map[kind.Kind]map[string]*expr.Expr
	litData  map[*expr.Expr]literal.Literal

	// symbols caches CONST/PROGRAM_CONST/ORACLE leaves by (kind, name): unlike
	// PARAM/VARIABLE (fresh per binding occurrence), these are genuinely
	// global symbols and a second mkConst("foo") must return the same node.
	symbols map[string]*expr.Expr

	info      map[*expr.Expr]ExprInfo
	appInfo   map[*expr.Expr]*expr.AppInfo
	oracleCmd map[*expr.Expr]string

	// programs holds each PROGRAM_CONST's registered rewrite arms, set by
	// the type checker's defineProgram and consulted by the evaluator's
	// program dispatch.
	programs map[*expr.Expr][]ProgramArm

	// literalTypeRules holds the configured type for each literal kind,
	// set by the type checker's setLiteralTypeRule.
	literalTypeRules map[kind.Kind]*expr.Expr

	selfParam *expr.Expr
}

// ProgramArm is one (pattern, rhs) rewrite rule of a defined program: the
// pattern is the full APPLY node (head, pattern-args...), and only the
// argument positions are matched — the pattern's head is not compared;
// arms are looked up by the call site's head symbol.
type ProgramArm struct {
	Pattern *expr.Expr
	Rhs     *expr.Expr
}

// New returns an empty factory.
func New() *State {
	return &State{
		hashCons:  make(map[kind.Kind]*trie.Trie[*expr.Expr, *expr.Expr]),
		literals:  make(map[kind.Kind]map[string]*expr.Expr),
		litData:   make(map[*expr.Expr]literal.Literal),
		symbols:   make(map[string]*expr.Expr),
		info:      make(map[*expr.Expr]ExprInfo),
		appInfo:   make(map[*expr.Expr]*expr.AppInfo),
		oracleCmd: make(map[*expr.Expr]string),
	}
}

// MkExpr hash-conses a structural node: equal (kind, children) always
// returns the identical *expr.Expr.
func (s *State) MkExpr(k kind.Kind, children []*expr.Expr) *expr.Expr {
	root, ok := s.hashCons[k]
	if !ok {
		root = trie.New[*expr.Expr, *expr.Expr]()
		s.hashCons[k] = root
	}
	node := root.Descend(children...)
	if v, ok := node.Get(); ok {
		return v
	}
	headEvaluatable := k == kind.APPLY && len(children) > 0 &&
		(children[0].Kind == kind.PROGRAM_CONST || children[0].Kind == kind.ORACLE)
	e := expr.New(k, children, headEvaluatable)
	node.Set(e)
	return e
}

// MkApplyInternal builds an APPLY node from (head, args...) already
// assembled into one slice.
func (s *State) MkApplyInternal(children []*expr.Expr) *expr.Expr {
	return s.MkExpr(kind.APPLY, children)
}

// MkType, MkBoolType, MkAbstractType are the nullary structural type
// singletons.
func (s *State) MkType() *expr.Expr         { return s.MkExpr(kind.TYPE, nil) }
func (s *State) MkBoolType() *expr.Expr     { return s.MkExpr(kind.BOOL_TYPE, nil) }
func (s *State) MkAbstractType() *expr.Expr { return s.MkExpr(kind.ABSTRACT_TYPE, nil) }

// MkFunctionType builds Π(args) -> ret as a FUNCTION_TYPE node.
func (s *State) MkFunctionType(args []*expr.Expr, ret *expr.Expr) *expr.Expr {
	children := make([]*expr.Expr, 0, len(args)+1)
	children = append(children, args...)
	children = append(children, ret)
	return s.MkExpr(kind.FUNCTION_TYPE, children)
}

// MkBuiltinType returns the stable builtin type for a literal kind
// (used as the default literal type rule, spec.md §4.3's literal row).
func (s *State) MkBuiltinType(litKind kind.Kind) *expr.Expr {
	return s.mkConstLike(kind.CONST, "<builtin:"+litKind.String()+">")
}

// MkSelf returns the distinguished self parameter substituted into a
// literal type rule when synthesizing a literal's own type.
func (s *State) MkSelf() *expr.Expr {
	if s.selfParam == nil {
		s.selfParam = s.newParam("self")
	}
	return s.selfParam
}

// MkTrue, MkFalse are the two BOOLEAN literal leaves.
func (s *State) MkTrue() *expr.Expr  { e, _ := s.MkLiteral(kind.BOOLEAN, "true"); return e }
func (s *State) MkFalse() *expr.Expr { e, _ := s.MkLiteral(kind.BOOLEAN, "false"); return e }

// MkLiteral builds (or returns the cached) literal leaf for (kind,
// spelling), and registers its parsed literal.Literal value.
func (s *State) MkLiteral(k kind.Kind, spelling string) (*expr.Expr, error) {
	cache, ok := s.literals[k]
	if !ok {
		cache = make(map[string]*expr.Expr)
		s.literals[k] = cache
	}
	if e, ok := cache[spelling]; ok {
		return e, nil
	}
	lit, err := literal.Parse(k, spelling)
	if err != nil {
		return nil, err
	}
	e := expr.New(k, nil, false)
	cache[spelling] = e
	s.litData[e] = lit
	return e, nil
}

// mkConstLike is the shared name-deduplication path for CONST,
// PROGRAM_CONST, and ORACLE leaves: distinct from structural
// hash-consing because a zero-arity leaf has no children to key on.
func (s *State) mkConstLike(k kind.Kind, name string) *expr.Expr {
	key := fmt.Sprintf("%s:%s", k, name)
	if e, ok := s.symbols[key]; ok {
		return e
	}
	e := expr.New(k, nil, false)
	s.symbols[key] = e
	s.info[e] = ExprInfo{Name: name}
	return e
}

// MkConst returns the (unique, name-deduplicated) CONST leaf for name.
func (s *State) MkConst(name string) *expr.Expr { return s.mkConstLike(kind.CONST, name) }

// MkProgramConst returns the (unique) PROGRAM_CONST leaf for name. The
// type checker's defineProgram registers the arms for this same node.
func (s *State) MkProgramConst(name string) *expr.Expr {
	return s.mkConstLike(kind.PROGRAM_CONST, name)
}

// MkOracle returns the (unique) ORACLE leaf for name, and records cmd
// as its shell command (read back with GetOracleCmd).
func (s *State) MkOracle(name, cmd string) *expr.Expr {
	e := s.mkConstLike(kind.ORACLE, name)
	s.oracleCmd[e] = cmd
	return e
}

// newParam/newVariable are intentionally NOT deduplicated by name: each
// call returns a fresh metavariable, since two program arms' same-named
// "x" are independent binders. Callers hold onto the returned node and
// reuse that reference across a pattern and its right-hand side.
func (s *State) newParam(name string) *expr.Expr {
	e := expr.New(kind.PARAM, nil, false)
	s.info[e] = ExprInfo{Name: name}
	return e
}

// MkParam creates a fresh PARAM metavariable leaf named name.
func (s *State) MkParam(name string) *expr.Expr { return s.newParam(name) }

// MkVariable creates a fresh VARIABLE metavariable leaf named name, for
// the preliminary (non-type-checker) matcher role.
func (s *State) MkVariable(name string) *expr.Expr {
	e := expr.New(kind.VARIABLE, nil, false)
	s.info[e] = ExprInfo{Name: name}
	return e
}

// GetLiteral returns e's registered Literal payload, if e is a literal leaf.
func (s *State) GetLiteral(e *expr.Expr) (literal.Literal, bool) {
	l, ok := s.litData[e]
	return l, ok
}

// GetAppInfo returns e's registered associativity/nil-term attribute, if any.
func (s *State) GetAppInfo(e *expr.Expr) *expr.AppInfo { return s.appInfo[e] }

// SetAppInfo registers an operator's associativity and nil term.
func (s *State) SetAppInfo(e *expr.Expr, info *expr.AppInfo) { s.appInfo[e] = info }

// GetInfo returns e's registered symbol spelling, if any.
func (s *State) GetInfo(e *expr.Expr) (ExprInfo, bool) {
	i, ok := s.info[e]
	return i, ok
}

// GetOracleCmd returns the shell command registered for an ORACLE leaf.
func (s *State) GetOracleCmd(e *expr.Expr) (string, bool) {
	c, ok := s.oracleCmd[e]
	return c, ok
}

// DefineProgram registers sym's (a PROGRAM_CONST leaf) rewrite arms, in
// declaration order. Re-defining a symbol replaces its arms outright.
func (s *State) DefineProgram(sym *expr.Expr, arms []ProgramArm) {
	if s.programs == nil {
		s.programs = make(map[*expr.Expr][]ProgramArm)
	}
	s.programs[sym] = arms
}

// HasProgram reports whether sym has registered arms.
func (s *State) HasProgram(sym *expr.Expr) bool {
	_, ok := s.programs[sym]
	return ok
}

// GetProgramArms returns sym's registered arms.
func (s *State) GetProgramArms(sym *expr.Expr) ([]ProgramArm, bool) {
	arms, ok := s.programs[sym]
	return arms, ok
}

// SetLiteralTypeRule configures the type synthesized for kind k's literals.
func (s *State) SetLiteralTypeRule(k kind.Kind, t *expr.Expr) {
	if s.literalTypeRules == nil {
		s.literalTypeRules = make(map[kind.Kind]*expr.Expr)
	}
	s.literalTypeRules[k] = t
}

// GetOrSetLiteralTypeRule returns k's configured literal type rule,
// defaulting to (and caching) the builtin type for k if none was set.
func (s *State) GetOrSetLiteralTypeRule(k kind.Kind) *expr.Expr {
	if t, ok := s.literalTypeRules[k]; ok {
		return t
	}
	t := s.MkBuiltinType(k)
	s.SetLiteralTypeRule(k, t)
	return t
}
