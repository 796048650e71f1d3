package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

func pyGrammar() grammar {
	return grammar{
		functionNodes: map[string]bool{
			"function_definition": true, "lambda": true,
		},
		blockNodes: map[string]bool{
			"block": true,
		},
		conditionalNodes: map[string]bool{
			"if_statement": true, "elif_clause": true, "conditional_expression": true,
		},
		caseNodes: map[string]bool{
			"case_clause": true,
		},
		loopNodes: map[string]bool{
			"for_statement": true, "while_statement": true,
		},
		catchNodes: map[string]bool{
			"except_clause": true,
		},
	}
}

func newPythonAnalyzer() *analyzer {
	a := &analyzer{
		lang:       types.LangPython,
		sitterLang: python.GetLanguage(),
		grammar:    pyGrammar(),
		wrap: func(code string) string {
			return "def __snippet__():\n" + indentBlock(code) + "\n"
		},
		isLogicalOp: func(n *sitter.Node, src []byte) bool {
			return n.Type() == "boolean_operator"
		},
	}
	a.syntaxVisit = pySyntaxVisit
	a.patternVisit = pyPatternVisit
	a.apiVisit = pyAPIVisit
	a.conceptPass = pyConceptPass(a.grammar)
	return a
}

func pySyntaxVisit(n *sitter.Node, src []byte, acc types.TagSet) {
	switch n.Type() {
	case "assignment":
		acc.Add(types.SynAssignment.String())
		if n.ChildByFieldName("type") != nil {
			acc.Add(types.SynTypeAnnotation.String())
		}
	case "augmented_assignment":
		acc.Add(types.SynAugmentedAssignment.String())
	case "function_definition":
		acc.Add(types.SynFunctionDeclaration.String())
		if hasChildToken(n, "async") {
			acc.Add(types.SynAsyncFunction.String())
		}
	case "lambda":
		acc.Add(types.SynLambda.String())
	case "class_definition":
		acc.Add(types.SynClassDeclaration.String())
	case "if_statement":
		acc.Add(types.SynIfStatement.String())
	case "conditional_expression":
		acc.Add(types.SynTernaryExpression.String())
	case "match_statement":
		acc.Add(types.SynSwitchStatement.String())
	case "for_statement":
		acc.Add(types.SynForLoop.String())
	case "while_statement":
		acc.Add(types.SynWhileLoop.String())
	case "try_statement":
		acc.Add(types.SynTryExcept.String())
	case "raise_statement":
		acc.Add(types.SynRaiseStatement.String())
	case "finally_clause":
		acc.Add(types.SynFinallyClause.String())
	case "import_statement":
		acc.Add(types.SynImportStatement.String())
	case "import_from_statement":
		acc.Add(types.SynImportFromStatement.String())
	case "boolean_operator":
		acc.Add(types.SynLogicalOperator.String())
	case "with_statement":
		acc.Add(types.SynWithStatement.String())
	case "await":
		acc.Add(types.SynAwaitExpression.String())
	case "yield":
		acc.Add(types.SynYieldExpression.String())
	case "list_splat", "dictionary_splat":
		acc.Add(types.SynSpreadOperator.String())
	}
}

func pyPatternVisit(n *sitter.Node, src []byte, acc types.TagSet) {
	switch n.Type() {
	case "await":
		acc.Add(types.PatAsyncAwait.String())
	case "function_definition":
		if hasChildToken(n, "async") {
			acc.Add(types.PatAsyncAwait.String())
		}
	case "class_definition":
		acc.Add(types.PatClass.String())
		// A non-empty superclass list marks inheritance.
		if args := n.ChildByFieldName("superclasses"); args != nil && args.NamedChildCount() > 0 {
			acc.Add(types.PatInheritance.String())
		}
	case "decorator":
		acc.Add(types.PatDecorator.String())
	case "list_comprehension", "dictionary_comprehension",
		"set_comprehension", "generator_expression":
		acc.Add(types.PatComprehension.String())
	case "with_statement":
		acc.Add(types.PatContextManager.String())
	case "yield":
		acc.Add(types.PatGenerator.String())
	case "try_statement", "except_clause":
		acc.Add(types.PatErrorHandling.String())
	case "pattern_list", "tuple_pattern":
		acc.Add(types.PatDestructuring.String())
	case "call":
		if args := n.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				if args.NamedChild(i).Type() == "lambda" {
					acc.Add(types.PatCallback.String())
					acc.Add(types.PatHigherOrderFunction.String())
					break
				}
			}
		}
	}
}

func pyAPIVisit(n *sitter.Node, src []byte, acc types.TagSet) {
	if n.Type() != "call" {
		return
	}
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	switch fn.Type() {
	case "identifier":
		acc.Add(nodeText(fn, src))
	case "attribute":
		attr := fn.ChildByFieldName("attribute")
		obj := fn.ChildByFieldName("object")
		if attr == nil {
			return
		}
		attrName := nodeText(attr, src)
		if obj != nil && obj.Type() == "identifier" {
			acc.Add(nodeText(obj, src) + "." + attrName)
		} else {
			acc.Add(attrName)
		}
	}
}
