package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	tstypescript "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// arrayTransformMethods are Array methods that mark a transform chain.
var arrayTransformMethods = map[string]bool{
	"map": true, "filter": true, "reduce": true, "foreach": true,
	"flatmap": true, "some": true, "every": true, "find": true, "sort": true,
}

// promiseChainMethods mark promise-style chaining.
var promiseChainMethods = map[string]bool{
	"then": true, "catch": true, "finally": true,
}

func jsGrammar() grammar {
	return grammar{
		functionNodes: map[string]bool{
			"function_declaration": true, "function_expression": true,
			"function": true, // pre-0.21 grammar name for function expressions
			"arrow_function": true, "method_definition": true,
			"generator_function": true, "generator_function_declaration": true,
		},
		blockNodes: map[string]bool{
			"statement_block": true, "class_body": true, "switch_body": true,
		},
		conditionalNodes: map[string]bool{
			"if_statement": true, "ternary_expression": true,
		},
		caseNodes: map[string]bool{
			"switch_case": true,
		},
		loopNodes: map[string]bool{
			"for_statement": true, "for_in_statement": true,
			"while_statement": true, "do_statement": true,
		},
		catchNodes: map[string]bool{
			"catch_clause": true,
		},
	}
}

func newJavaScriptAnalyzer() *analyzer {
	a := &analyzer{
		lang:       types.LangJavaScript,
		sitterLang: javascript.GetLanguage(),
		grammar:    jsGrammar(),
		wrap: func(code string) string {
			return "function __snippet__() {\n" + code + "\n}"
		},
		isLogicalOp: jsIsLogicalOp,
	}
	a.syntaxVisit = jsSyntaxVisit(false)
	a.patternVisit = jsPatternVisit
	a.apiVisit = jsAPIVisit
	a.conceptPass = jsConceptPass(a.grammar)
	return a
}

func newTypeScriptAnalyzer() *analyzer {
	g := jsGrammar()
	// TypeScript-only constructs that open nesting or function scopes.
	g.blockNodes["enum_body"] = true
	g.blockNodes["interface_body"] = true

	a := &analyzer{
		lang:       types.LangTypeScript,
		sitterLang: tstypescript.GetLanguage(),
		grammar:    g,
		wrap: func(code string) string {
			return "function __snippet__() {\n" + code + "\n}"
		},
		isLogicalOp: jsIsLogicalOp,
	}
	a.syntaxVisit = jsSyntaxVisit(true)
	a.patternVisit = jsPatternVisit
	a.apiVisit = jsAPIVisit
	a.conceptPass = jsConceptPass(a.grammar)
	return a
}

func jsIsLogicalOp(n *sitter.Node, src []byte) bool {
	if n.Type() != "binary_expression" {
		return false
	}
	op := operatorText(n, src)
	return op == "&&" || op == "||"
}

// jsSyntaxVisit tags syntax constructs for JavaScript; withTypes adds the
// TypeScript-only forms.
func jsSyntaxVisit(withTypes bool) visitFunc {
	return func(n *sitter.Node, src []byte, acc types.TagSet) {
		switch n.Type() {
		case "lexical_declaration":
			if hasChildToken(n, "const") {
				acc.Add(types.SynConstDeclaration.String())
			} else {
				acc.Add(types.SynLetDeclaration.String())
			}
		case "variable_declaration":
			acc.Add(types.SynVarDeclaration.String())
		case "assignment_expression":
			acc.Add(types.SynAssignment.String())
		case "augmented_assignment_expression":
			acc.Add(types.SynAugmentedAssignment.String())
		case "function_declaration":
			acc.Add(types.SynFunctionDeclaration.String())
			if hasChildToken(n, "async") {
				acc.Add(types.SynAsyncFunction.String())
			}
		case "function_expression", "function":
			acc.Add(types.SynFunctionExpression.String())
			if hasChildToken(n, "async") {
				acc.Add(types.SynAsyncFunction.String())
			}
		case "arrow_function":
			acc.Add(types.SynArrowFunction.String())
			if hasChildToken(n, "async") {
				acc.Add(types.SynAsyncFunction.String())
			}
		case "method_definition":
			acc.Add(types.SynMethodDefinition.String())
			if hasChildToken(n, "async") {
				acc.Add(types.SynAsyncFunction.String())
			}
		case "generator_function", "generator_function_declaration":
			acc.Add(types.SynGeneratorFunction.String())
		case "class_declaration", "class":
			acc.Add(types.SynClassDeclaration.String())
		case "if_statement":
			acc.Add(types.SynIfStatement.String())
		case "ternary_expression":
			acc.Add(types.SynTernaryExpression.String())
		case "switch_statement":
			acc.Add(types.SynSwitchStatement.String())
		case "for_statement":
			acc.Add(types.SynForLoop.String())
		case "for_in_statement":
			if hasChildToken(n, "of") {
				acc.Add(types.SynForOfLoop.String())
			} else {
				acc.Add(types.SynForInLoop.String())
			}
		case "while_statement":
			acc.Add(types.SynWhileLoop.String())
		case "do_statement":
			acc.Add(types.SynDoWhileLoop.String())
		case "try_statement":
			acc.Add(types.SynTryCatch.String())
		case "throw_statement":
			acc.Add(types.SynThrowStatement.String())
		case "finally_clause":
			acc.Add(types.SynFinallyClause.String())
		case "import_statement":
			acc.Add(types.SynImportStatement.String())
		case "export_statement":
			acc.Add(types.SynExportStatement.String())
		case "binary_expression":
			switch operatorText(n, src) {
			case "&&", "||":
				acc.Add(types.SynLogicalOperator.String())
			case "??":
				acc.Add(types.SynNullishCoalescing.String())
			}
		case "spread_element", "rest_pattern":
			acc.Add(types.SynSpreadOperator.String())
		case "member_expression", "call_expression":
			if hasChildToken(n, "?.") {
				acc.Add(types.SynOptionalChaining.String())
			}
		case "template_string":
			acc.Add(types.SynTemplateLiteral.String())
		case "new_expression":
			acc.Add(types.SynNewExpression.String())
		case "await_expression":
			acc.Add(types.SynAwaitExpression.String())
		case "yield_expression":
			acc.Add(types.SynYieldExpression.String())
		}

		if !withTypes {
			return
		}
		switch n.Type() {
		case "type_annotation":
			acc.Add(types.SynTypeAnnotation.String())
		case "interface_declaration":
			acc.Add(types.SynInterfaceDeclaration.String())
		case "type_alias_declaration":
			acc.Add(types.SynTypeAlias.String())
		case "enum_declaration":
			acc.Add(types.SynEnumDeclaration.String())
		}
	}
}

// jsPatternVisit tags idiomatic patterns for JavaScript and TypeScript.
func jsPatternVisit(n *sitter.Node, src []byte, acc types.TagSet) {
	switch n.Type() {
	case "await_expression":
		acc.Add(types.PatAsyncAwait.String())
	case "function_declaration", "function_expression", "function",
		"arrow_function", "method_definition":
		if hasChildToken(n, "async") {
			acc.Add(types.PatAsyncAwait.String())
		}
		if jsReturnsFunction(n) {
			acc.Add(types.PatHigherOrderFunction.String())
		}
	case "generator_function", "generator_function_declaration", "yield_expression":
		acc.Add(types.PatGenerator.String())
	case "class_declaration", "class":
		acc.Add(types.PatClass.String())
	case "class_heritage":
		acc.Add(types.PatInheritance.String())
	case "decorator":
		acc.Add(types.PatDecorator.String())
	case "object_pattern", "array_pattern":
		acc.Add(types.PatDestructuring.String())
	case "try_statement", "catch_clause":
		acc.Add(types.PatErrorHandling.String())
	case "call_expression":
		jsCallPatterns(n, src, acc)
	}
}

// jsCallPatterns inspects a call expression for promise chains, array
// transform chains, and callback usage.
func jsCallPatterns(n *sitter.Node, src []byte, acc types.TagSet) {
	if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "member_expression" {
		prop := fn.ChildByFieldName("property")
		obj := fn.ChildByFieldName("object")
		if prop != nil {
			name := strings.ToLower(nodeText(prop, src))
			if promiseChainMethods[name] {
				acc.Add(types.PatPromiseChain.String())
				if name == "catch" || name == "finally" {
					acc.Add(types.PatErrorHandling.String())
				}
			}
			if arrayTransformMethods[name] && obj != nil && jsIsTransformCall(obj, src) {
				acc.Add(types.PatArrayTransformChain.String())
			}
		}
	}

	// A function literal passed as an argument is a callback, and the callee
	// accepting it is a higher-order function.
	if args := n.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			t := args.NamedChild(i).Type()
			if t == "arrow_function" || t == "function_expression" || t == "function" {
				acc.Add(types.PatCallback.String())
				acc.Add(types.PatHigherOrderFunction.String())
				break
			}
		}
	}
}

// jsIsTransformCall reports whether the node is itself a call to an array
// transform method, which makes the enclosing call a chain of length >= 2.
func jsIsTransformCall(n *sitter.Node, src []byte) bool {
	if n.Type() != "call_expression" {
		return false
	}
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Type() != "member_expression" {
		return false
	}
	prop := fn.ChildByFieldName("property")
	return prop != nil && arrayTransformMethods[strings.ToLower(nodeText(prop, src))]
}

// jsReturnsFunction reports whether a function body returns a function
// literal (a higher-order-function signal). Only the function's own return
// statements count, not those of nested functions.
func jsReturnsFunction(fn *sitter.Node) bool {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return false
	}
	// Arrow function with an expression body.
	switch body.Type() {
	case "arrow_function", "function_expression", "function":
		return true
	}

	var found bool
	var rec func(n *sitter.Node, insideNested bool)
	rec = func(n *sitter.Node, insideNested bool) {
		if found {
			return
		}
		if n.Type() == "return_statement" && !insideNested {
			for i := 0; i < int(n.NamedChildCount()); i++ {
				switch n.NamedChild(i).Type() {
				case "arrow_function", "function_expression", "function":
					found = true
					return
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			nested := insideNested
			switch child.Type() {
			case "function_declaration", "function_expression", "function",
				"arrow_function", "method_definition":
				nested = true
			}
			rec(child, nested)
		}
	}
	rec(body, false)
	return found
}

// jsAPIVisit records normalized call signatures such as "fetch",
// "console.log", and "numbers.map".
func jsAPIVisit(n *sitter.Node, src []byte, acc types.TagSet) {
	if n.Type() != "call_expression" && n.Type() != "new_expression" {
		return
	}
	fn := n.ChildByFieldName("function")
	if fn == nil {
		fn = n.ChildByFieldName("constructor")
	}
	if fn == nil {
		return
	}

	switch fn.Type() {
	case "identifier":
		acc.Add(nodeText(fn, src))
	case "member_expression":
		prop := fn.ChildByFieldName("property")
		obj := fn.ChildByFieldName("object")
		if prop == nil {
			return
		}
		propName := nodeText(prop, src)
		if obj != nil && obj.Type() == "identifier" {
			acc.Add(nodeText(obj, src) + "." + propName)
		} else {
			// Chained or computed receiver: keep the method name only.
			acc.Add(propName)
		}
	}
}
