package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// collectContext gathers optional structural hints: the first declared
// function name, return usage, this/self references, and module forms.
func (a *analyzer) collectContext(root *sitter.Node, src []byte, synthetic *sitter.Node) types.CodeContext {
	ctx := types.CodeContext{Hints: make(map[string]bool)}

	var rec func(n *sitter.Node)
	rec = func(n *sitter.Node) {
		nt := n.Type()

		if ctx.FunctionName == "" && a.grammar.functionNodes[nt] &&
			!(synthetic != nil && sameNode(n, synthetic)) {
			if name := n.ChildByFieldName("name"); name != nil {
				ctx.FunctionName = nodeText(name, src)
			}
		}

		switch nt {
		case "return_statement":
			ctx.HasReturn = true
		case "this":
			ctx.UsesThis = true
		case "identifier":
			if a.lang == types.LangPython && nodeText(n, src) == "self" {
				ctx.UsesThis = true
			}
		case "import_statement", "import_from_statement", "export_statement":
			ctx.IsModule = true
		}

		for i := 0; i < int(n.NamedChildCount()); i++ {
			rec(n.NamedChild(i))
		}
	}
	rec(root)

	ctx.Hints["hasReturn"] = ctx.HasReturn
	ctx.Hints["usesThis"] = ctx.UsesThis
	ctx.Hints["isModule"] = ctx.IsModule
	return ctx
}
