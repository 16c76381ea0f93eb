package evaluator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alfc-run/alfc/internal/expr"
	"github.com/alfc-run/alfc/internal/kind"
	"github.com/alfc-run/alfc/internal/miniparser"
	"github.com/alfc-run/alfc/internal/oracle"
	"github.com/alfc-run/alfc/internal/state"
)

func newTestEvaluator(st *state.State) *Evaluator {
	return New(st, nil, nil, nil)
}

// Scenario A (spec.md §8): a Boolean-condition if-then-else reduces to
// the selected branch.
func TestEvaluateIfThenElseBoolean(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)
	one, _ := st.MkLiteral(kind.NUMERAL, "1")
	two, _ := st.MkLiteral(kind.NUMERAL, "2")
	ite := st.MkExpr(kind.EVAL_IF_THEN_ELSE, []*expr.Expr{st.MkTrue(), one, two})
	if got := ev.Evaluate(ite, nil); got != one {
		t.Errorf("if true then 1 else 2 = %v, want NUMERAL 1", got)
	}
	iteFalse := st.MkExpr(kind.EVAL_IF_THEN_ELSE, []*expr.Expr{st.MkFalse(), one, two})
	if got := ev.Evaluate(iteFalse, nil); got != two {
		t.Errorf("if false then 1 else 2 = %v, want NUMERAL 2", got)
	}
}

// Scenario B (spec.md §8): arithmetic reduction.
func TestEvaluateArithmetic(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)
	two, _ := st.MkLiteral(kind.NUMERAL, "2")
	three, _ := st.MkLiteral(kind.NUMERAL, "3")
	add := st.MkExpr(kind.EVAL_ADD, []*expr.Expr{two, three})
	got := ev.Evaluate(add, nil)
	lit, ok := st.GetLiteral(got)
	if !ok || lit.Int.String() != "5" {
		t.Errorf("2 + 3 = %v, want NUMERAL 5", got)
	}
}

// Scenario C (spec.md §8): EVAL_REQUIRES passes through its third
// argument on equality, and is left irreducible otherwise.
func TestEvaluateRequires(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)
	one, _ := st.MkLiteral(kind.NUMERAL, "1")
	one2, _ := st.MkLiteral(kind.NUMERAL, "1")
	two, _ := st.MkLiteral(kind.NUMERAL, "2")
	ok, _ := st.MkLiteral(kind.STRING, "ok")

	pass := st.MkExpr(kind.EVAL_REQUIRES, []*expr.Expr{one, one2, ok})
	if got := ev.Evaluate(pass, nil); got != ok {
		t.Errorf("requires(1, 1, ok) = %v, want STRING ok", got)
	}

	fail := st.MkExpr(kind.EVAL_REQUIRES, []*expr.Expr{one, two, ok})
	got := ev.Evaluate(fail, nil)
	if got != fail {
		t.Errorf("requires(1, 2, ok) should be returned irreducible, got %v", got)
	}
}

// Scenario D (spec.md §8): program dispatch picks the first matching arm.
func TestEvaluateProgramDispatch(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)

	p := st.MkProgramConst("P")
	x := st.MkParam("x")
	y := st.MkParam("y")
	zero, _ := st.MkLiteral(kind.NUMERAL, "0")

	arm1 := state.ProgramArm{
		Pattern: st.MkApplyInternal([]*expr.Expr{p, x, zero}),
		Rhs:     x,
	}
	arm2 := state.ProgramArm{
		Pattern: st.MkApplyInternal([]*expr.Expr{p, x, y}),
		Rhs:     st.MkExpr(kind.EVAL_ADD, []*expr.Expr{x, y}),
	}
	st.DefineProgram(p, []state.ProgramArm{arm1, arm2})

	five, _ := st.MkLiteral(kind.NUMERAL, "5")
	two, _ := st.MkLiteral(kind.NUMERAL, "2")

	callZero := st.MkApplyInternal([]*expr.Expr{p, five, zero})
	if got := ev.Evaluate(callZero, nil); got != five {
		t.Errorf("P(5, 0) = %v, want NUMERAL 5 (first arm)", got)
	}

	callTwo := st.MkApplyInternal([]*expr.Expr{p, five, two})
	got := ev.Evaluate(callTwo, nil)
	lit, ok := st.GetLiteral(got)
	if !ok || lit.Int.String() != "7" {
		t.Errorf("P(5, 2) = %v, want NUMERAL 7 (second arm)", got)
	}
}

// EvaluateProgram is the exposed counterpart of evaluateProgramInternal
// (spec.md §6): a matching arm's rhs is returned as-is, without being
// reduced further by the caller.
func TestEvaluateProgramExposedMatch(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)

	p := st.MkProgramConst("P")
	x := st.MkParam("x")
	zero, _ := st.MkLiteral(kind.NUMERAL, "0")
	st.DefineProgram(p, []state.ProgramArm{{
		Pattern: st.MkApplyInternal([]*expr.Expr{p, x, zero}),
		Rhs:     x,
	}})

	five, _ := st.MkLiteral(kind.NUMERAL, "5")
	children := []*expr.Expr{p, five, zero}
	ctx := expr.NewCtx()
	if got := ev.EvaluateProgram(children, ctx); got != x {
		t.Errorf("EvaluateProgram(P(5, 0)) = %v, want the arm's rhs x", got)
	}
	if bound, ok := ctx.Get(x); !ok || bound != five {
		t.Errorf("EvaluateProgram(P(5, 0)) ctx[x] = (%v, %v), want (NUMERAL 5, true)", bound, ok)
	}
}

// When no arm matches, EvaluateProgram rebuilds the original application
// instead of returning nil.
func TestEvaluateProgramExposedNoMatchRebuildsApplication(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)

	p := st.MkProgramConst("P")
	x := st.MkParam("x")
	zero, _ := st.MkLiteral(kind.NUMERAL, "0")
	st.DefineProgram(p, []state.ProgramArm{{
		Pattern: st.MkApplyInternal([]*expr.Expr{p, x, zero}),
		Rhs:     x,
	}})

	one, _ := st.MkLiteral(kind.NUMERAL, "1")
	children := []*expr.Expr{p, one, one}
	got := ev.EvaluateProgram(children, nil)
	want := st.MkApplyInternal(children)
	if got != want {
		t.Errorf("EvaluateProgram with no matching arm = %v, want rebuilt application %v", got, want)
	}
}

// EvaluateLiteralOp is the exposed counterpart of
// evaluateLiteralOpInternal: a reducing operator returns its literal
// result.
func TestEvaluateLiteralOpExposedReduces(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)
	two, _ := st.MkLiteral(kind.NUMERAL, "2")
	three, _ := st.MkLiteral(kind.NUMERAL, "3")

	got := ev.EvaluateLiteralOp(kind.EVAL_ADD, []*expr.Expr{two, three})
	lit, ok := st.GetLiteral(got)
	if !ok || lit.Int.String() != "5" {
		t.Errorf("EvaluateLiteralOp(EVAL_ADD, 2, 3) = %v, want NUMERAL 5", got)
	}
}

// A non-reducing operator (here EVAL_IS_EQ over non-ground params) is
// rebuilt from (k, args) rather than returning nil.
func TestEvaluateLiteralOpExposedRebuildsOnFailure(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)
	x := st.MkParam("x")
	y := st.MkParam("y")

	args := []*expr.Expr{x, y}
	got := ev.EvaluateLiteralOp(kind.EVAL_IS_EQ, args)
	want := st.MkExpr(kind.EVAL_IS_EQ, args)
	if got != want {
		t.Errorf("EvaluateLiteralOp(EVAL_IS_EQ, x, y) = %v, want rebuilt %v", got, want)
	}
}

// spec.md §8 invariant 9: evaluating a program application twice with
// identical ground arguments yields the same (reference-equal) result.
func TestEvaluateProgramMemoization(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)

	p := st.MkProgramConst("Id")
	x := st.MkParam("x")
	st.DefineProgram(p, []state.ProgramArm{{
		Pattern: st.MkApplyInternal([]*expr.Expr{p, x}),
		Rhs:     x,
	}})

	five, _ := st.MkLiteral(kind.NUMERAL, "5")
	call := st.MkApplyInternal([]*expr.Expr{p, five})

	r1 := ev.Evaluate(call, nil)
	r2 := ev.Evaluate(call, nil)
	if r1 != r2 {
		t.Errorf("repeated evaluation of the same ground program call should be reference-equal: %v != %v", r1, r2)
	}
}

// Scenario E (spec.md §8): list construction/append for a right-assoc
// operator with a designated nil term.
func TestEvaluateListOps(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)

	or := st.MkConst("or")
	falseLit := st.MkFalse()
	st.SetAppInfo(or, &expr.AppInfo{Assoc: expr.RightAssocNil, NilTerm: falseLit})

	x := st.MkConst("x")
	toList := st.MkExpr(kind.EVAL_TO_LIST, []*expr.Expr{or, x})
	want := st.MkApplyInternal([]*expr.Expr{or, x, falseLit})
	if got := ev.Evaluate(toList, nil); got != want {
		t.Errorf("to_list(or, x) = %v, want (or x false)", got)
	}

	a := st.MkConst("a")
	b := st.MkConst("b")
	c := st.MkConst("c")
	listB := st.MkApplyInternal([]*expr.Expr{or, b, falseLit})
	xs := st.MkApplyInternal([]*expr.Expr{or, a, listB})
	ys := st.MkApplyInternal([]*expr.Expr{or, c, falseLit})
	appendExpr := st.MkExpr(kind.EVAL_APPEND, []*expr.Expr{or, xs, ys})

	wantAppend := st.MkApplyInternal([]*expr.Expr{or, a, st.MkApplyInternal([]*expr.Expr{or, b, ys})})
	if got := ev.Evaluate(appendExpr, nil); got != wantAppend {
		t.Errorf("append(or, xs, ys) = %v, want (or a (or b (or c false)))", got)
	}
}

// spec.md §8 invariant 7: from_list(to_list(x)) == x.
func TestListRoundTrip(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)

	or := st.MkConst("or")
	falseLit := st.MkFalse()
	st.SetAppInfo(or, &expr.AppInfo{Assoc: expr.RightAssocNil, NilTerm: falseLit})

	x := st.MkConst("x")
	toList := ev.Evaluate(st.MkExpr(kind.EVAL_TO_LIST, []*expr.Expr{or, x}), nil)
	fromList := ev.Evaluate(st.MkExpr(kind.EVAL_FROM_LIST, []*expr.Expr{or, toList}), nil)
	if fromList != x {
		t.Errorf("from_list(to_list(x)) = %v, want x", fromList)
	}
}

// spec.md §8 invariant 5: evaluate is a fixpoint on ground
// non-evaluatable terms.
func TestGroundNonEvaluatableFixpoint(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)
	a, _ := st.MkLiteral(kind.NUMERAL, "1")
	b, _ := st.MkLiteral(kind.NUMERAL, "2")
	tup := st.MkExpr(kind.TUPLE, []*expr.Expr{a, b})
	if tup.IsEvaluatable() {
		t.Fatalf("a TUPLE of ground literals should not be evaluatable")
	}
	if got := ev.Evaluate(tup, nil); got != tup {
		t.Errorf("evaluate should be a no-op on a ground non-evaluatable term, got %v", got)
	}
}

// spec.md §8 invariant 6: the substitution law.
func TestSubstitutionLaw(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)
	p := st.MkParam("p")
	v, _ := st.MkLiteral(kind.NUMERAL, "9")
	ctx := expr.NewCtx()
	ctx.Set(p, v)
	if got := ev.Evaluate(p, ctx); got != v {
		t.Errorf("evaluate(PARAM p, {p -> v}) = %v, want v", got)
	}
}

// FAIL propagation short-circuits the whole evaluation.
func TestFailShortCircuits(t *testing.T) {
	st := state.New()
	ev := newTestEvaluator(st)
	fail := st.MkExpr(kind.FAIL, nil)
	one, _ := st.MkLiteral(kind.NUMERAL, "1")
	wrap := st.MkExpr(kind.EVAL_ADD, []*expr.Expr{fail, one})
	if got := ev.Evaluate(wrap, nil); got != fail {
		t.Errorf("a FAIL subterm should short-circuit evaluation, got %v", got)
	}
}

type fakeRunner struct {
	stdout       string
	exitCode     int
	capturedArgs string
}

func (f *fakeRunner) Run(_ context.Context, _ string, workDir string) (string, int) {
	data, err := os.ReadFile(filepath.Join(workDir, "input.txt"))
	if err == nil {
		f.capturedArgs = string(data)
	}
	return f.stdout, f.exitCode
}

// Oracle dispatch: a ground APPLY of an ORACLE leaf invokes the runner,
// writes one serialized argument per line, and re-parses stdout.
func TestEvaluateOracleDispatch(t *testing.T) {
	st := state.New()
	runner := &fakeRunner{stdout: "42", exitCode: 0}
	caller := &oracle.Caller{Runner: runner, ScratchRoot: t.TempDir()}
	parser := miniparser.New(st)
	ev := New(st, caller, parser, nil)

	o := st.MkOracle("double", "./double.sh")
	in, _ := st.MkLiteral(kind.NUMERAL, "21")
	call := st.MkApplyInternal([]*expr.Expr{o, in})

	got := ev.Evaluate(call, nil)
	lit, ok := st.GetLiteral(got)
	if !ok || lit.Int.String() != "42" {
		t.Errorf("oracle dispatch result = %v, want NUMERAL 42", got)
	}
	if runner.capturedArgs != "21\n" {
		t.Errorf("input.txt contents = %q, want \"21\\n\"", runner.capturedArgs)
	}
}

// A nonzero exit code leaves the oracle application irreducible.
func TestEvaluateOracleFailureIsIrreducible(t *testing.T) {
	st := state.New()
	runner := &fakeRunner{stdout: "", exitCode: 1}
	caller := &oracle.Caller{Runner: runner, ScratchRoot: t.TempDir()}
	parser := miniparser.New(st)
	ev := New(st, caller, parser, nil)

	o := st.MkOracle("fails", "./fails.sh")
	in, _ := st.MkLiteral(kind.NUMERAL, "1")
	call := st.MkApplyInternal([]*expr.Expr{o, in})

	got := ev.Evaluate(call, nil)
	if got != call {
		t.Errorf("a failing oracle call should be returned irreducible, got %v", got)
	}
}
