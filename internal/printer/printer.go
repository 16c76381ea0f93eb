// Package printer implements the debug S-expression serializer
// (spec.md §6): "(KIND child ...)" for non-APPLY inner nodes, "(child0
// child1 ...)" for APPLY, and for leaves either the registered symbol
// name or the literal's own spelling / the kind's canonical name.
package printer

import (
	"strings"

	"github.com/alfc-run/alfc/internal/expr"
	"github.com/alfc-run/alfc/internal/kind"
	"github.com/alfc-run/alfc/internal/state"
)

type frame struct {
	node *expr.Expr
	idx  int
}

// Debug renders e as an S-expression. Uses an explicit work stack
// (never recursion), so deeply right-nested list terms print without
// growing the native call stack.
func Debug(e *expr.Expr, st *state.State) string {
	var sb strings.Builder
	stack := []frame{{e, 0}}
	for len(stack) > 0 {
		i := len(stack) - 1
		cur := stack[i]
		if cur.idx == 0 {
			if cur.node.NumChildren() == 0 {
				sb.WriteString(leafSpelling(cur.node, st))
				stack = stack[:i]
				continue
			}
			sb.WriteByte('(')
			if cur.node.Kind != kind.APPLY {
				sb.WriteString(cur.node.Kind.String())
				sb.WriteByte(' ')
			}
			stack[i].idx = 1
			stack = append(stack, frame{cur.node.Child(0), 0})
			continue
		}
		if cur.idx == cur.node.NumChildren() {
			sb.WriteByte(')')
			stack = stack[:i]
			continue
		}
		sb.WriteByte(' ')
		child := cur.node.Child(cur.idx)
		stack[i].idx = cur.idx + 1
		stack = append(stack, frame{child, 0})
	}
	return sb.String()
}

func leafSpelling(e *expr.Expr, st *state.State) string {
	if info, ok := st.GetInfo(e); ok {
		return info.Name
	}
	if lit, ok := st.GetLiteral(e); ok {
		return lit.Spelling()
	}
	return e.Kind.String()
}
