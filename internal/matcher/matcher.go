// Package matcher implements first-order structural matching with
// substitution capture (spec.md §4.2). The same algorithm serves two
// distinct metavariable roles — PARAM for the type checker and program
// arms, VARIABLE for the preliminary expression matcher — selected by
// which Kind is passed in, so the two roles can never be conflated.
package matcher

import (
	"github.com/alfc-run/alfc/internal/expr"
	"github.com/alfc-run/alfc/internal/kind"
)

type pair struct{ a, b *expr.Expr }

// Match attempts to match pattern against term, binding metaKind leaves
// of pattern in ctx as it goes. Returns false on failure; on failure,
// any bindings already written into ctx are NOT rolled back — callers
// (program-arm dispatch) must Clear ctx before trying the next arm.
func Match(metaKind kind.Kind, pattern, term *expr.Expr, ctx *expr.Ctx) bool {
	visited := make(map[pair]bool)
	stack := []pair{{pattern, term}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.a == cur.b {
			// holds trivially
			continue
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if cur.a.NumChildren() == 0 {
			if cur.a.Kind != metaKind {
				// a is a leaf but not a metavariable: the two subterms differ
				return false
			}
			if bound, ok := ctx.Get(cur.a); ok {
				// seen this metavariable before: re-check it maps to the same subterm
				stack = append(stack, pair{bound, cur.b})
			} else {
				ctx.Set(cur.a, cur.b)
			}
			continue
		}
		if cur.a.NumChildren() != cur.b.NumChildren() || cur.a.Kind != cur.b.Kind {
			return false
		}
		for i := 0; i < cur.a.NumChildren(); i++ {
			stack = append(stack, pair{cur.a.Child(i), cur.b.Child(i)})
		}
	}
	return true
}

// MatchParam matches using PARAM as the metavariable kind — the role
// the type checker and program-arm dispatch use.
func MatchParam(pattern, term *expr.Expr, ctx *expr.Ctx) bool {
	return Match(kind.PARAM, pattern, term, ctx)
}

// MatchVariable matches using VARIABLE as the metavariable kind — the
// preliminary expression-level matcher role (spec.md §9's third
// ambiguity note: this must stay a distinct role from PARAM).
func MatchVariable(pattern, term *expr.Expr, ctx *expr.Ctx) bool {
	return Match(kind.VARIABLE, pattern, term, ctx)
}
