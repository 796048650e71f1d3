package extractor

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// grammar holds per-language node-type tables shared by the generic passes.
type grammar struct {
	functionNodes    map[string]bool // nodes that open a function scope
	blockNodes       map[string]bool // nodes that open a nesting level
	conditionalNodes map[string]bool // if/elif/ternary forms
	caseNodes        map[string]bool // switch/match case clauses
	loopNodes        map[string]bool
	catchNodes       map[string]bool // catch/except clauses
}

// visitFunc inspects one node and adds any tags it implies to the set.
type visitFunc func(n *sitter.Node, src []byte, acc types.TagSet)

// analyzer is the per-language feature analyzer. The JavaScript analyzer
// also serves TypeScript with an extended node table; Python has its own.
type analyzer struct {
	lang       types.Language
	sitterLang *sitter.Language
	grammar    grammar

	// wrap embeds a bare statement list in a synthetic enclosing function
	// for the resilient re-parse path.
	wrap func(code string) string

	syntaxVisit  visitFunc
	patternVisit visitFunc
	apiVisit     visitFunc
	conceptPass  func(ctx context.Context, root *sitter.Node, src []byte, synthetic *sitter.Node) (types.TagSet, error)

	// isLogicalOp reports whether the node is a logical and/or expression.
	isLogicalOp func(n *sitter.Node, src []byte) bool
}

// collectSyntax runs the single-pass syntax-dimension traversal.
func (a *analyzer) collectSyntax(ctx context.Context, root *sitter.Node, src []byte, synthetic *sitter.Node) (types.TagSet, error) {
	return a.collect(ctx, root, src, synthetic, a.syntaxVisit)
}

// collectPatterns runs the single-pass pattern-dimension traversal.
func (a *analyzer) collectPatterns(ctx context.Context, root *sitter.Node, src []byte, synthetic *sitter.Node) (types.TagSet, error) {
	return a.collect(ctx, root, src, synthetic, a.patternVisit)
}

// collectAPIs runs the single-pass API-signature traversal.
func (a *analyzer) collectAPIs(ctx context.Context, root *sitter.Node, src []byte) (types.TagSet, error) {
	return a.collect(ctx, root, src, nil, a.apiVisit)
}

// collectConcepts runs the best-effort concept-inference pass. It is kept
// separate from the structural passes because its heuristics are inexact.
func (a *analyzer) collectConcepts(ctx context.Context, root *sitter.Node, src []byte, synthetic *sitter.Node) (types.TagSet, error) {
	return a.conceptPass(ctx, root, src, synthetic)
}

func (a *analyzer) collect(ctx context.Context, root *sitter.Node, src []byte, synthetic *sitter.Node, visit visitFunc) (types.TagSet, error) {
	acc := types.NewTagSet()
	err := walkNodes(ctx, root, func(n *sitter.Node) {
		if synthetic != nil && sameNode(n, synthetic) {
			return // skip wrapper artifacts, but still descend into it
		}
		visit(n, src, acc)
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// walkNodes traverses named nodes depth-first, checking for cancellation
// periodically so a pathological tree cannot exceed the time budget.
func walkNodes(ctx context.Context, root *sitter.Node, visit func(n *sitter.Node)) error {
	count := 0
	var rec func(n *sitter.Node) error
	rec = func(n *sitter.Node) error {
		count++
		if count%512 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		visit(n)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if err := rec(n.NamedChild(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return rec(root)
}

// sameNode compares nodes by span and type; tree-sitter node wrappers are
// not pointer-comparable across traversals.
func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// hasChildToken reports whether n has a direct anonymous child token of the
// given type, e.g. the "async" keyword on a function node.
func hasChildToken(n *sitter.Node, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() && c.Type() == token {
			return true
		}
	}
	return false
}

// nodeText returns the source text of a node.
func nodeText(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

// operatorText returns the operator field text of a binary-style node.
func operatorText(n *sitter.Node, src []byte) string {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return ""
	}
	return nodeText(op, src)
}

// Language auto-detection heuristics. Ordered, first match wins:
// Python markers, then TypeScript markers, then the JavaScript default.
var (
	pythonMarker     = regexp.MustCompile(`(?m)^\s*(def |import |from \w+ import |print\()`)
	typescriptMarker = regexp.MustCompile(`(?m)\b(interface \w+|type \w+ =)|:\s*(string|number|boolean|void|any|unknown)\b`)
	javascriptMarker = regexp.MustCompile(`\b(function|const|let)\b|=>`)
)

// DetectLanguage guesses the snippet language. It falls back to JavaScript,
// the default variant, when no heuristic matches.
func DetectLanguage(code string) types.Language {
	switch {
	case pythonMarker.MatchString(code):
		return types.LangPython
	case typescriptMarker.MatchString(code):
		return types.LangTypeScript
	case javascriptMarker.MatchString(code):
		return types.LangJavaScript
	default:
		return types.LangJavaScript
	}
}

// indentBlock indents every line of the snippet for the Python wrapper.
func indentBlock(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}
