package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// complexity computes cyclomatic and cognitive complexity plus maximum
// nesting depth in one traversal.
//
// Cyclomatic starts at 1 and increments once per conditional, switch case,
// loop, logical and/or, and catch clause. Cognitive adds 1 for conditionals
// and 2 for loops, each scaled by (nesting depth + 1); this weighting is an
// internal heuristic preserved for behavioral compatibility, not a published
// formula. Nesting depth is tracked with an enter/exit counter over block
// scopes.
//
// When the snippet was re-parsed inside a synthetic wrapper function, the
// traversal starts at depth -1 so the wrapper's own block restores the
// snippet's original depths.
func (a *analyzer) complexity(root *sitter.Node, src []byte, wrapped bool) types.ComplexityMetrics {
	m := types.ComplexityMetrics{Cyclomatic: 1}

	depth := 0
	if wrapped {
		depth = -1
	}

	var rec func(n *sitter.Node)
	rec = func(n *sitter.Node) {
		nt := n.Type()

		switch {
		case a.grammar.conditionalNodes[nt]:
			m.Cyclomatic++
			m.Cognitive += 1 * (clampDepth(depth) + 1)
		case a.grammar.caseNodes[nt]:
			m.Cyclomatic++
			m.Cognitive += 1 * (clampDepth(depth) + 1)
		case a.grammar.loopNodes[nt]:
			m.Cyclomatic++
			m.Cognitive += 2 * (clampDepth(depth) + 1)
		case a.grammar.catchNodes[nt]:
			m.Cyclomatic++
		case a.isLogicalOp(n, src):
			m.Cyclomatic++
		}

		entered := a.grammar.blockNodes[nt]
		if entered {
			depth++
			if depth > m.MaxDepth {
				m.MaxDepth = depth
			}
		}

		for i := 0; i < int(n.NamedChildCount()); i++ {
			rec(n.NamedChild(i))
		}

		if entered {
			depth--
		}
	}
	rec(root)

	return m
}

// clampDepth floors negative depths from the synthetic wrapper adjustment.
func clampDepth(d int) int {
	if d < 0 {
		return 0
	}
	return d
}
