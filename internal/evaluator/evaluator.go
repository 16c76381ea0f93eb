// Package evaluator implements call-by-value reduction of expressions
// under a substitution (spec.md §4.4): program rewrite-rule dispatch,
// oracle subprocess dispatch, and the literal-operator back-end,
// memoized across the whole evaluator's lifetime by argument identity.
//
// An EVAL_IF_THEN_ELSE whose condition does not reduce to a Boolean
// literal has both branches reduced under the current ctx, so a
// diverging branch makes the whole evaluation diverge even if it would
// never be selected.
package evaluator

import (
	"github.com/alfc-run/alfc/internal/expr"
	"github.com/alfc-run/alfc/internal/kind"
	"github.com/alfc-run/alfc/internal/literal"
	"github.com/alfc-run/alfc/internal/matcher"
	"github.com/alfc-run/alfc/internal/oracle"
	"github.com/alfc-run/alfc/internal/printer"
	"github.com/alfc-run/alfc/internal/state"
	"github.com/alfc-run/alfc/internal/trace"
	"github.com/alfc-run/alfc/internal/trie"
)

// ResponseParser re-parses an oracle's stdout into a single expression.
// internal/evaluator depends only on this seam, not on a concrete parser,
// so the oracle path is testable without a full surface grammar.
type ResponseParser interface {
	ParseNextExpr(s string) (*expr.Expr, error)
}

// Evaluator reduces expressions under a substitution. One Evaluator's
// eval trie persists across calls to Evaluate, so repeated program/oracle
// applications across separate top-level calls still memoize.
type Evaluator struct {
	st     *state.State
	oracle *oracle.Caller
	parser ResponseParser
	tr     *trace.Sink

	evalTrie *trie.Trie[*expr.Expr, *expr.Expr]
}

// New returns an Evaluator backed by st. oracleCaller and parser may be
// nil if the program under evaluation never dispatches to an ORACLE leaf.
func New(st *state.State, oracleCaller *oracle.Caller, parser ResponseParser, tr *trace.Sink) *Evaluator {
	if tr == nil {
		tr = trace.Default()
	}
	return &Evaluator{
		st:       st,
		oracle:   oracleCaller,
		parser:   parser,
		tr:       tr,
		evalTrie: trie.New[*expr.Expr, *expr.Expr](),
	}
}

// evalFrame is one entry of the frame stack: a local substitution, a
// work stack of pending subterms, and the memo for this frame. visited
// marks subterms whose children have been pushed; memo entries only
// exist once a subterm's result has actually been computed.
type evalFrame struct {
	ctx     *expr.Ctx
	stack   []*expr.Expr
	visited map[*expr.Expr]bool
	memo    map[*expr.Expr]*expr.Expr
	init    *expr.Expr
	// trieSlot is where this frame's final result is stored once this
	// frame finishes (nil for the outermost, caller-supplied frame).
	trieSlot *trie.Trie[*expr.Expr, *expr.Expr]
}

func newFrame(ctx *expr.Ctx, init *expr.Expr, trieSlot *trie.Trie[*expr.Expr, *expr.Expr]) *evalFrame {
	return &evalFrame{
		ctx:      ctx,
		stack:    []*expr.Expr{init},
		visited:  make(map[*expr.Expr]bool),
		memo:     make(map[*expr.Expr]*expr.Expr),
		init:     init,
		trieSlot: trieSlot,
	}
}

// Evaluate reduces e under ctx, running until a fixpoint (or until a
// FAIL term forces an early return). Termination is not guaranteed in
// general — the language is Turing-complete via programs.
func (ev *Evaluator) Evaluate(e *expr.Expr, ctx *expr.Ctx) *expr.Expr {
	if ctx == nil {
		ctx = expr.NewCtx()
	}
	frames := []*evalFrame{newFrame(ctx, e, nil)}

	for len(frames) > 0 {
		fr := frames[len(frames)-1]

		for len(fr.stack) > 0 {
			cur := fr.stack[len(fr.stack)-1]

			if res, ok := fr.memo[cur]; ok {
				_ = res
				fr.stack = fr.stack[:len(fr.stack)-1]
				continue
			}

			if !cur.IsEvaluatable() && (cur.IsGround() || fr.ctx.Empty()) {
				fr.memo[cur] = cur
				fr.stack = fr.stack[:len(fr.stack)-1]
				continue
			}

			if cur.Kind == kind.PARAM {
				if bound, ok := fr.ctx.Get(cur); ok {
					fr.memo[cur] = bound
				} else {
					fr.memo[cur] = cur
				}
				fr.stack = fr.stack[:len(fr.stack)-1]
				continue
			}

			if !fr.visited[cur] {
				fr.visited[cur] = true
				if cur.Kind == kind.EVAL_IF_THEN_ELSE {
					fr.stack = append(fr.stack, cur.Child(0))
				} else {
					for i := 0; i < cur.NumChildren(); i++ {
						fr.stack = append(fr.stack, cur.Child(i))
					}
				}
				continue
			}

			// Revisit: gather whatever children have been reduced so far.
			cchildren := make([]*expr.Expr, cur.NumChildren())
			for i := range cchildren {
				if v, ok := fr.memo[cur.Child(i)]; ok {
					cchildren[i] = v
				}
			}

			var result *expr.Expr
			finished := true
			pushedFrame := false

			switch {
			case cur.Kind == kind.FAIL:
				return cur
			case cur.Kind == kind.APPLY && len(cchildren) > 0 && cchildren[0] != nil &&
				(cchildren[0].Kind == kind.PROGRAM_CONST || cchildren[0].Kind == kind.ORACLE):
				if !allReady(cchildren) {
					finished = false
					break
				}
				node := ev.evalTrie.Descend(cchildren...)
				if v, ok := node.Get(); ok {
					result = v
				} else {
					newCtx := expr.NewCtx()
					rhs := ev.evaluateProgramInternal(cchildren, newCtx)
					if rhs == nil || newCtx.Empty() {
						node.Set(rhs)
						result = rhs
					} else {
						pushedFrame = true
						frames = append(frames, newFrame(newCtx, rhs, node))
					}
				}
			case cur.Kind == kind.EVAL_IF_THEN_ELSE:
				if lit, ok := ev.st.GetLiteral(cchildren[0]); ok && lit.Tag == literal.BOOL {
					idx := 2
					if lit.Bool {
						idx = 1
					}
					if cchildren[idx] == nil {
						fr.stack = append(fr.stack, cur.Child(idx))
						finished = false
					} else {
						result = cchildren[idx]
					}
				} else {
					for _, i := range [2]int{1, 2} {
						if cchildren[i] == nil {
							fr.stack = append(fr.stack, cur.Child(i))
							finished = false
						}
					}
				}
			default:
				if kind.IsLiteralOp(cur.Kind) {
					result = ev.evaluateLiteralOpInternal(cur.Kind, cchildren)
				}
			}

			if pushedFrame || !finished {
				continue
			}
			if result == nil {
				result = ev.st.MkExpr(cur.Kind, cchildren)
			}
			fr.memo[cur] = result
			fr.stack = fr.stack[:len(fr.stack)-1]
		}

		result := fr.memo[fr.init]
		frames = frames[:len(frames)-1]
		if len(frames) > 0 {
			parent := frames[len(frames)-1]
			parent.memo[parent.stack[len(parent.stack)-1]] = result
			parent.stack = parent.stack[:len(parent.stack)-1]
			if fr.trieSlot != nil {
				fr.trieSlot.Set(result)
			}
		} else {
			return result
		}
	}
	return nil
}

func allReady(cchildren []*expr.Expr) bool {
	for _, c := range cchildren {
		if c == nil {
			return false
		}
	}
	return true
}

func isGround(args []*expr.Expr) bool {
	for _, a := range args {
		if !a.IsGround() {
			return false
		}
	}
	return true
}

// EvaluateProgram is the exposed counterpart of evaluateProgramInternal
// (spec.md §6): it dispatches children's head (a PROGRAM_CONST or
// ORACLE leaf) and returns the matching arm's rhs (binding its
// parameters in ctx) or the oracle's parsed answer, or the original application
// rebuilt from children when no arm matches / the oracle fails. Unlike
// Evaluate, it does not itself reduce the rhs under the returned ctx —
// callers that need the fully-reduced result should feed the rhs back
// through Evaluate with ctx.
func (ev *Evaluator) EvaluateProgram(children []*expr.Expr, ctx *expr.Ctx) *expr.Expr {
	if ctx == nil {
		ctx = expr.NewCtx()
	}
	if rhs := ev.evaluateProgramInternal(children, ctx); rhs != nil {
		return rhs
	}
	return ev.st.MkApplyInternal(children)
}

// EvaluateLiteralOp is the exposed counterpart of
// evaluateLiteralOpInternal (spec.md §6): it dispatches the EVAL_* op
// kind over args and returns the original operator application rebuilt
// from (k, args) when the operator does not reduce.
func (ev *Evaluator) EvaluateLiteralOp(k kind.Kind, args []*expr.Expr) *expr.Expr {
	if result := ev.evaluateLiteralOpInternal(k, args); result != nil {
		return result
	}
	return ev.st.MkExpr(k, args)
}

// evaluateProgramInternal dispatches a ground-argument APPLY whose head
// is a PROGRAM_CONST or ORACLE leaf (spec.md §4.4.1). Returns nil when no
// reduction applies; a non-nil result with an empty newCtx means the
// reduction is already complete (no further frame needed), a non-nil
// result with populated newCtx means the caller must evaluate it under
// that substitution.
func (ev *Evaluator) evaluateProgramInternal(children []*expr.Expr, newCtx *expr.Ctx) *expr.Expr {
	if !isGround(children) {
		return nil
	}
	hd := children[0]
	switch hd.Kind {
	case kind.PROGRAM_CONST:
		arms, ok := ev.st.GetProgramArms(hd)
		if !ok {
			return nil
		}
		nargs := len(children)
		for _, arm := range arms {
			newCtx.Clear()
			hchildren := arm.Pattern
			if hchildren.NumChildren() != nargs {
				ev.tr.Warning("bad number of arguments provided in function call to", hchildren)
				return nil
			}
			matched := true
			for i := 1; i < nargs; i++ {
				if !matcher.MatchParam(hchildren.Child(i), children[i], newCtx) {
					matched = false
					break
				}
			}
			if matched {
				ev.tr.Trace("type_checker", "matches", hchildren, "ctx", newCtx)
				return arm.Rhs
			}
		}
		ev.tr.Trace("type_checker", "failed to match")
		return nil
	case kind.ORACLE:
		cmd, ok := ev.st.GetOracleCmd(hd)
		if !ok || ev.oracle == nil || ev.parser == nil {
			return nil
		}
		argLines := make([]string, 0, len(children)-1)
		for _, c := range children[1:] {
			argLines = append(argLines, printer.Debug(c, ev.st))
		}
		ev.tr.Trace("oracles", "call oracle", cmd, "with arguments", argLines)
		stdout, exitCode := ev.oracle.Call(cmd, argLines)
		if exitCode != 0 {
			ev.tr.Trace("oracles", "...failed to run")
			return nil
		}
		ev.tr.Trace("oracles", "...got response", stdout)
		ret, err := ev.parser.ParseNextExpr(stdout)
		if err != nil {
			return nil
		}
		return ret
	}
	return nil
}

// evaluateLiteralOpInternal implements spec.md §4.4.2: the operators
// special-cased directly (equality, if-then-else, requires, the list
// primitives), falling through to the literal arithmetic back-end for
// everything else.
func (ev *Evaluator) evaluateLiteralOpInternal(k kind.Kind, args []*expr.Expr) *expr.Expr {
	switch k {
	case kind.EVAL_IS_EQ:
		if args[0] == args[1] {
			return ev.st.MkTrue()
		}
		if isGround(args) {
			return ev.st.MkFalse()
		}
		return nil
	case kind.EVAL_IF_THEN_ELSE:
		if lit, ok := ev.st.GetLiteral(args[0]); ok && lit.Tag == literal.BOOL {
			if lit.Bool {
				return args[1]
			}
			return args[2]
		}
		return nil
	case kind.EVAL_REQUIRES:
		if args[0] == args[1] {
			return args[2]
		}
		ev.tr.Trace("type_checker", "REQUIRES: failed", args[0], "==", args[1])
		return nil
	case kind.EVAL_CONS, kind.EVAL_APPEND, kind.EVAL_TO_LIST, kind.EVAL_FROM_LIST:
		return ev.evaluateListOp(k, args)
	}

	if !isGround(args) {
		return nil
	}
	lits := make([]literal.Literal, len(args))
	for i, a := range args {
		l, ok := ev.st.GetLiteral(a)
		if !ok || l.Tag == literal.SYMBOL {
			return nil
		}
		lits[i] = l
	}
	result := literal.Evaluate(k, lits)
	if result.Tag == literal.INVALID {
		return nil
	}
	e, err := ev.st.MkLiteral(result.ToKind(), result.Spelling())
	if err != nil {
		return nil
	}
	return e
}

// evaluateListOp implements the list normal form (spec.md §4.5): op's
// list terms are a chain of flat ternary APPLY(op, a, b) cons-nodes,
// direction-appropriate per op's registered associativity, ending in its
// registered nil term.
func (ev *Evaluator) evaluateListOp(k kind.Kind, args []*expr.Expr) *expr.Expr {
	op := args[0]
	info := ev.st.GetAppInfo(op)
	if info == nil || (info.Assoc != expr.LeftAssocNil && info.Assoc != expr.RightAssocNil) {
		return nil
	}
	isLeft := info.Assoc == expr.LeftAssocNil
	tailIdx, headIdx := 2, 1
	if isLeft {
		tailIdx, headIdx = 1, 2
	}

	var harg *expr.Expr
	if len(args) == 2 {
		harg = args[1]
	} else {
		harg = args[headIdx]
	}
	if !harg.IsGround() {
		return nil
	}

	var result *expr.Expr
	var hargs []*expr.Expr

	switch k {
	case kind.EVAL_TO_LIST:
		if harg == info.NilTerm {
			return harg
		}
		tail, elems := getNAryChildren(harg, op, headIdx, tailIdx, false)
		if len(elems) != 0 {
			// already a list
			return harg
		}
		result = info.NilTerm
		hargs = []*expr.Expr{tail}
	case kind.EVAL_FROM_LIST:
		tail, elems := getNAryChildren(harg, op, headIdx, tailIdx, false)
		if len(elems) == 1 {
			if tail != info.NilTerm {
				ev.tr.Warning("failed to decompose", harg, "in from_list")
				return nil
			}
			return elems[0]
		}
		return harg
	case kind.EVAL_CONS:
		result = args[tailIdx]
		hargs = []*expr.Expr{harg}
	case kind.EVAL_APPEND:
		result = args[tailIdx]
		tail, elems := getNAryChildren(harg, op, headIdx, tailIdx, true)
		if tail != info.NilTerm {
			ev.tr.Warning("failed to decompose", harg, "in append")
			return nil
		}
		hargs = elems
	}

	n := len(hargs)
	for i := 0; i < n; i++ {
		idx := i
		if !isLeft {
			idx = n - 1 - i
		}
		children := make([]*expr.Expr, 3)
		children[0] = op
		children[tailIdx] = result
		children[headIdx] = hargs[idx]
		result = ev.st.MkApplyInternal(children)
	}
	return result
}

// getNAryChildren peels cons-nodes APPLY(op, headIdx-child, tailIdx-child)
// off the front of e, collecting the extracted elements in traversal
// order, until e no longer matches that shape or (when !extractAll) two
// elements have been collected. Returns the remaining tail and the
// elements extracted so far.
func getNAryChildren(e *expr.Expr, op *expr.Expr, headIdx, tailIdx int, extractAll bool) (*expr.Expr, []*expr.Expr) {
	var elems []*expr.Expr
	for e.Kind == kind.APPLY && e.NumChildren() == 3 && e.Child(0) == op {
		elems = append(elems, e.Child(headIdx))
		e = e.Child(tailIdx)
		if !extractAll && len(elems) == 2 {
			return e, elems
		}
	}
	return e, elems
}
