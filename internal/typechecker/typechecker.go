// Package typechecker implements bottom-up type synthesis over the
// expression DAG (spec.md §4.3): an explicit two-visit work stack caches
// each subterm's type once, dispatches on Kind for the synthesis rule,
// and fails fast on the first subterm that has none.
package typechecker

import (
	"github.com/alfc-run/alfc/internal/evaluator"
	"github.com/alfc-run/alfc/internal/expr"
	"github.com/alfc-run/alfc/internal/kind"
	"github.com/alfc-run/alfc/internal/matcher"
	"github.com/alfc-run/alfc/internal/state"
	"github.com/alfc-run/alfc/internal/trace"
)

// TypeChecker synthesizes and caches expression types against one State,
// using ev to evaluate dependent return types and literal type rules
// under the substitutions application typing accumulates.
type TypeChecker struct {
	st *state.State
	ev *evaluator.Evaluator
}

// New returns a TypeChecker over st, using ev to evaluate dependent
// types.
func New(st *state.State, ev *evaluator.Evaluator) *TypeChecker {
	return &TypeChecker{st: st, ev: ev}
}

// DefineProgram registers a program's rewrite arms for later dispatch by
// the evaluator.
func (tc *TypeChecker) DefineProgram(sym *expr.Expr, arms []state.ProgramArm) {
	tc.st.DefineProgram(sym, arms)
}

// SetLiteralTypeRule configures the type of kind k's literals.
func (tc *TypeChecker) SetLiteralTypeRule(k kind.Kind, t *expr.Expr) {
	tc.st.SetLiteralTypeRule(k, t)
}

// GetOrSetLiteralTypeRule returns (defaulting and caching) kind k's
// literal type rule.
func (tc *TypeChecker) GetOrSetLiteralTypeRule(k kind.Kind) *expr.Expr {
	return tc.st.GetOrSetLiteralTypeRule(k)
}

// GetType synthesizes and caches e's type, returning the cached value on
// re-entry. A nil result signals a type error; if diag is non-nil, a
// human-readable diagnostic is written to it. diag may be nil.
func (tc *TypeChecker) GetType(e *expr.Expr, diag *trace.Sink) *expr.Expr {
	if t := e.Type(); t != nil {
		return t
	}
	visited := make(map[*expr.Expr]bool)
	stack := []*expr.Expr{e}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		if cur.Type() != nil {
			stack = stack[:len(stack)-1]
			continue
		}
		if !visited[cur] {
			visited[cur] = true
			for i := 0; i < cur.NumChildren(); i++ {
				if cur.Child(i).Type() == nil {
					stack = append(stack, cur.Child(i))
				}
			}
			continue
		}
		t := tc.getTypeInternal(cur, diag)
		if t == nil {
			e.SetType(nil)
			return nil
		}
		cur.SetType(t)
		diag.Trace("type_checker", "getType", cur, "=", t)
		stack = stack[:len(stack)-1]
	}
	return e.Type()
}

func (tc *TypeChecker) getTypeInternal(cur *expr.Expr, diag *trace.Sink) *expr.Expr {
	if !kind.CheckArity(cur.Kind, cur.NumChildren()) {
		diag.Warning("bad arity for", cur.Kind, cur)
		return nil
	}
	switch cur.Kind {
	case kind.TYPE, kind.ABSTRACT_TYPE, kind.BOOL_TYPE, kind.FUNCTION_TYPE, kind.QUOTE_TYPE:
		return tc.st.MkType()
	case kind.PROOF_TYPE:
		c := cur.Child(0).Type()
		if c == nil || c.Kind != kind.BOOL_TYPE {
			diag.Warning("proof type argument is not Bool:", cur.Child(0))
			return nil
		}
		return tc.st.MkType()
	case kind.NIL, kind.FAIL:
		return cur
	case kind.TUPLE, kind.VARIABLE_LIST:
		// A var-list is never itself matched or evaluated against — only
		// its individual VARIABLE children's types feed getTypeLambda —
		// so it gets the same nondescript type as TUPLE rather than no
		// synthesis rule at all, which would fail the whole LAMBDA.
		return tc.st.MkAbstractType()
	case kind.BOOLEAN:
		return tc.st.MkBoolType()
	case kind.NUMERAL, kind.DECIMAL, kind.HEXADECIMAL, kind.BINARY, kind.STRING:
		return tc.getTypeLiteral(cur)
	case kind.LAMBDA:
		return tc.getTypeLambda(cur, diag)
	case kind.APPLY:
		return tc.getTypeApp(cur, diag)
	}
	if kind.IsLiteralOp(cur.Kind) {
		return tc.getLiteralOpType(cur)
	}
	diag.Warning("no type synthesis rule for", cur.Kind, cur)
	return nil
}

// getTypeLiteral synthesizes a literal's type from its configured rule.
// If the rule references the distinguished self parameter, substituting
// self -> cur and evaluating picks out the literal's own dependent type;
// a ground (self-free) rule evaluates to itself via the shortcut rule, so
// this call is correct either way.
func (tc *TypeChecker) getTypeLiteral(cur *expr.Expr) *expr.Expr {
	rule := tc.st.GetOrSetLiteralTypeRule(cur.Kind)
	ctx := expr.NewCtx()
	ctx.Set(tc.st.MkSelf(), cur)
	return tc.ev.Evaluate(rule, ctx)
}

func (tc *TypeChecker) getTypeLambda(cur *expr.Expr, diag *trace.Sink) *expr.Expr {
	varList := cur.Child(0)
	body := cur.Child(1)
	vartypes := make([]*expr.Expr, varList.NumChildren())
	for i := 0; i < varList.NumChildren(); i++ {
		vt := varList.Child(i).Type()
		if vt == nil {
			diag.Warning("lambda-bound variable has no type:", varList.Child(i))
			return nil
		}
		vartypes[i] = vt
	}
	bt := body.Type()
	if bt == nil {
		diag.Warning("lambda body has no type:", body)
		return nil
	}
	return tc.st.MkFunctionType(vartypes, bt)
}

// getTypeApp implements application typing (spec.md §4.3.1): f's type
// must be a FUNCTION_TYPE of matching arity. Each argument position is
// matched against its declared parameter type (or, under an implicit
// QUOTE_TYPE upcast, against the evaluated argument term itself),
// accumulating bindings into one shared ctx; the return type is then
// evaluated under that ctx.
func (tc *TypeChecker) getTypeApp(cur *expr.Expr, diag *trace.Sink) *expr.Expr {
	f := cur.Child(0)
	ft := f.Type()
	if ft == nil || ft.Kind != kind.FUNCTION_TYPE {
		diag.Warning("application head does not have function type:", f)
		return nil
	}
	nargs := cur.NumChildren() - 1
	if ft.NumChildren()-1 != nargs {
		diag.Warning("arity mismatch applying", f, "to", nargs, "arguments")
		return nil
	}
	ctx := expr.NewCtx()
	for i := 0; i < nargs; i++ {
		// hdt is the declared parameter type as written; declaredForMatch
		// unwraps a QUOTE_TYPE so the argument term itself (not its type)
		// is what gets matched — the implicit quotation upcast.
		hdt := ft.Child(i)
		declaredForMatch := hdt
		var rhs *expr.Expr
		if hdt.Kind == kind.QUOTE_TYPE {
			declaredForMatch = hdt.Child(0)
			rhs = tc.ev.Evaluate(cur.Child(i+1), expr.NewCtx())
		} else {
			argType := cur.Child(i + 1).Type()
			if argType == nil {
				diag.Warning("argument has no type:", cur.Child(i+1))
				return nil
			}
			rhs = argType
		}
		if !matcher.MatchParam(declaredForMatch, rhs, ctx) {
			diag.Warning("unexpected argument type", i, "of", f)
			diag.Warning("  LHS", tc.ev.Evaluate(hdt, ctx), ", from", hdt)
			diag.Warning("  RHS", rhs)
			return nil
		}
	}
	retType := ft.Child(ft.NumChildren() - 1)
	return tc.ev.Evaluate(retType, ctx)
}

// getLiteralOpType is the fixed synthesis table of spec.md §4.3.2.
func (tc *TypeChecker) getLiteralOpType(cur *expr.Expr) *expr.Expr {
	switch cur.Kind {
	case kind.EVAL_ADD, kind.EVAL_MUL, kind.EVAL_CONCAT, kind.EVAL_NEG:
		return cur.Child(0).Type()
	case kind.EVAL_REQUIRES:
		return cur.Child(2).Type()
	case kind.EVAL_IF_THEN_ELSE, kind.EVAL_CONS, kind.EVAL_APPEND, kind.EVAL_TO_LIST, kind.EVAL_FROM_LIST:
		return cur.Child(1).Type()
	case kind.EVAL_IS_EQ, kind.EVAL_NOT, kind.EVAL_AND, kind.EVAL_OR, kind.EVAL_IS_NEG, kind.EVAL_IS_ZERO:
		return tc.st.MkBoolType()
	case kind.EVAL_INT_DIV, kind.EVAL_TO_INT, kind.EVAL_LENGTH:
		return tc.st.GetOrSetLiteralTypeRule(kind.NUMERAL)
	case kind.EVAL_RAT_DIV, kind.EVAL_TO_RAT:
		return tc.st.GetOrSetLiteralTypeRule(kind.DECIMAL)
	case kind.EVAL_TO_STRING:
		return tc.st.GetOrSetLiteralTypeRule(kind.STRING)
	case kind.EVAL_TO_BV, kind.EVAL_EXTRACT:
		return tc.st.GetOrSetLiteralTypeRule(kind.HEXADECIMAL)
	}
	return nil
}
