package extractor

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// Concept inference is heuristic and best-effort by design: it flags likely
// closures, recursion, hoisting, type coercion, and deeply nested callbacks
// from structural cues alone, without symbol resolution or type checking.
// It runs as its own pass so its accuracy limits never contaminate the
// exact structural dimensions.

// callbackHellDepth is the function-argument nesting depth at which code is
// flagged as callback hell.
const callbackHellDepth = 3

// conceptHooks supplies the language-specific pieces of the concept walk.
type conceptHooks struct {
	callNode      string // node type of a call expression
	argumentsNode string // node type of a call argument list

	// functionName returns the declared name of a function node, or "".
	functionName func(n *sitter.Node, src []byte) string
	// declaredNames collects names bound directly in a function scope
	// (parameters plus local declarations), without descending into
	// nested functions.
	declaredNames func(fn *sitter.Node, src []byte, g grammar) map[string]bool
	// extraVisit collects language-only concepts (hoisting, type coercion).
	extraVisit visitFunc
}

// conceptScope tracks one function scope on the walk stack.
type conceptScope struct {
	name     string
	declared map[string]bool
}

// runConceptPass drives the shared concept walk for one language.
func runConceptPass(ctx context.Context, root *sitter.Node, src []byte, synthetic *sitter.Node, g grammar, hooks conceptHooks) (types.TagSet, error) {
	acc := types.NewTagSet()

	var scopes []conceptScope
	cbDepth := 0
	count := 0

	var rec func(n *sitter.Node) error
	rec = func(n *sitter.Node) error {
		count++
		if count%512 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		nt := n.Type()
		isFunction := g.functionNodes[nt] && !(synthetic != nil && sameNode(n, synthetic))

		if isFunction {
			scopes = append(scopes, conceptScope{
				name:     hooks.functionName(n, src),
				declared: hooks.declaredNames(n, src, g),
			})
			if isCallArgument(n, hooks.argumentsNode, hooks.callNode) {
				cbDepth++
				if cbDepth >= callbackHellDepth {
					acc.Add(types.ConCallbackHell.String())
				}
			}
		}

		if nt == "identifier" && len(scopes) >= 2 {
			name := nodeText(n, src)
			current := scopes[len(scopes)-1]
			if !current.declared[name] && declaredInOuterScope(scopes, name) {
				acc.Add(types.ConClosure.String())
			}
		}

		if nt == hooks.callNode {
			if callee := directCallee(n, src); callee != "" && onFunctionStack(scopes, callee) {
				acc.Add(types.ConRecursion.String())
			}
		}

		if hooks.extraVisit != nil {
			hooks.extraVisit(n, src, acc)
		}

		for i := 0; i < int(n.NamedChildCount()); i++ {
			if err := rec(n.NamedChild(i)); err != nil {
				return err
			}
		}

		if isFunction {
			if isCallArgument(n, hooks.argumentsNode, hooks.callNode) {
				cbDepth--
			}
			scopes = scopes[:len(scopes)-1]
		}
		return nil
	}

	if err := rec(root); err != nil {
		return nil, err
	}
	return acc, nil
}

// isCallArgument reports whether the function node appears directly in a
// call's argument list.
func isCallArgument(n *sitter.Node, argumentsNode, callNode string) bool {
	p := n.Parent()
	if p == nil || p.Type() != argumentsNode {
		return false
	}
	gp := p.Parent()
	return gp != nil && gp.Type() == callNode
}

// directCallee returns the identifier name of a plain-identifier call.
func directCallee(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" {
		return ""
	}
	return nodeText(fn, src)
}

func declaredInOuterScope(scopes []conceptScope, name string) bool {
	for i := 0; i < len(scopes)-1; i++ {
		if scopes[i].declared[name] {
			return true
		}
	}
	return false
}

func onFunctionStack(scopes []conceptScope, name string) bool {
	for _, s := range scopes {
		if s.name != "" && s.name == name {
			return true
		}
	}
	return false
}

// shallowScan visits the subtree of fn without descending into nested
// function scopes.
func shallowScan(fn *sitter.Node, g grammar, visit func(n *sitter.Node)) {
	var rec func(n *sitter.Node)
	rec = func(n *sitter.Node) {
		visit(n)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if g.functionNodes[child.Type()] {
				continue
			}
			rec(child)
		}
	}
	for i := 0; i < int(fn.NamedChildCount()); i++ {
		rec(fn.NamedChild(i))
	}
}

// --- JavaScript / TypeScript hooks ---

func jsConceptPass(g grammar) func(context.Context, *sitter.Node, []byte, *sitter.Node) (types.TagSet, error) {
	hooks := conceptHooks{
		callNode:      "call_expression",
		argumentsNode: "arguments",
		functionName:  jsFunctionName,
		declaredNames: jsDeclaredNames,
	}
	return func(ctx context.Context, root *sitter.Node, src []byte, synthetic *sitter.Node) (types.TagSet, error) {
		// Each invocation gets its own hooks copy: the tracker is per-call
		// state and concurrent extractions share this closure.
		hoist := newJSHoistTracker()
		h := hooks
		h.extraVisit = func(n *sitter.Node, src []byte, acc types.TagSet) {
			jsCoercionVisit(n, src, acc)
			hoist.visit(n, src)
		}
		acc, err := runConceptPass(ctx, root, src, synthetic, g, h)
		if err != nil {
			return nil, err
		}
		if hoist.detected() {
			acc.Add(types.ConHoisting.String())
		}
		return acc, nil
	}
}

func jsFunctionName(n *sitter.Node, src []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return nodeText(name, src)
	}
	// const f = function() {...} / const f = () => {...}
	if p := n.Parent(); p != nil && p.Type() == "variable_declarator" {
		if name := p.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
			return nodeText(name, src)
		}
	}
	return ""
}

func jsDeclaredNames(fn *sitter.Node, src []byte, g grammar) map[string]bool {
	declared := make(map[string]bool)

	collectParams := func(params *sitter.Node) {
		var rec func(n *sitter.Node)
		rec = func(n *sitter.Node) {
			if n.Type() == "identifier" {
				declared[nodeText(n, src)] = true
				return
			}
			for i := 0; i < int(n.NamedChildCount()); i++ {
				rec(n.NamedChild(i))
			}
		}
		rec(params)
	}
	if params := fn.ChildByFieldName("parameters"); params != nil {
		collectParams(params)
	}
	if param := fn.ChildByFieldName("parameter"); param != nil {
		collectParams(param)
	}

	body := fn.ChildByFieldName("body")
	if body == nil {
		return declared
	}
	shallowScan(body, g, func(n *sitter.Node) {
		if n.Type() == "variable_declarator" {
			if name := n.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				declared[nodeText(name, src)] = true
			}
		}
	})
	return declared
}

// jsCoercionVisit flags loose equality and implicit string/number mixing.
func jsCoercionVisit(n *sitter.Node, src []byte, acc types.TagSet) {
	if n.Type() != "binary_expression" {
		return
	}
	switch operatorText(n, src) {
	case "==", "!=":
		acc.Add(types.ConTypeCoercion.String())
	case "+":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left != nil && right != nil && jsIsStringy(left) != jsIsStringy(right) &&
			(jsIsNumeric(left) || jsIsNumeric(right)) {
			acc.Add(types.ConTypeCoercion.String())
		}
	}
}

func jsIsStringy(n *sitter.Node) bool {
	return n.Type() == "string" || n.Type() == "template_string"
}

func jsIsNumeric(n *sitter.Node) bool {
	return n.Type() == "number"
}

// jsHoistTracker flags var and function declarations referenced before the
// point of declaration, the classic hoisting signal.
type jsHoistTracker struct {
	declAt   map[string]uint32 // earliest declaration byte offset
	earlyRef map[string]uint32 // earliest reference byte offset
}

func newJSHoistTracker() *jsHoistTracker {
	return &jsHoistTracker{
		declAt:   make(map[string]uint32),
		earlyRef: make(map[string]uint32),
	}
}

func (h *jsHoistTracker) visit(n *sitter.Node, src []byte) {
	switch n.Type() {
	case "variable_declaration":
		// var only; let/const are lexical_declaration nodes.
		for i := 0; i < int(n.NamedChildCount()); i++ {
			d := n.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			if name := d.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				h.recordDecl(nodeText(name, src), d.StartByte())
			}
		}
	case "function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			h.recordDecl(nodeText(name, src), n.StartByte())
		}
	case "identifier":
		name := nodeText(n, src)
		if prev, ok := h.earlyRef[name]; !ok || n.StartByte() < prev {
			h.earlyRef[name] = n.StartByte()
		}
	}
}

func (h *jsHoistTracker) recordDecl(name string, at uint32) {
	if prev, ok := h.declAt[name]; !ok || at < prev {
		h.declAt[name] = at
	}
}

func (h *jsHoistTracker) detected() bool {
	for name, declAt := range h.declAt {
		if refAt, ok := h.earlyRef[name]; ok && refAt < declAt {
			return true
		}
	}
	return false
}

// --- Python hooks ---

func pyConceptPass(g grammar) func(context.Context, *sitter.Node, []byte, *sitter.Node) (types.TagSet, error) {
	hooks := conceptHooks{
		callNode:      "call",
		argumentsNode: "argument_list",
		functionName:  pyFunctionName,
		declaredNames: pyDeclaredNames,
	}
	return func(ctx context.Context, root *sitter.Node, src []byte, synthetic *sitter.Node) (types.TagSet, error) {
		return runConceptPass(ctx, root, src, synthetic, g, hooks)
	}
}

func pyFunctionName(n *sitter.Node, src []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return nodeText(name, src)
	}
	return ""
}

func pyDeclaredNames(fn *sitter.Node, src []byte, g grammar) map[string]bool {
	declared := make(map[string]bool)

	if params := fn.ChildByFieldName("parameters"); params != nil {
		var rec func(n *sitter.Node)
		rec = func(n *sitter.Node) {
			if n.Type() == "identifier" {
				declared[nodeText(n, src)] = true
				return
			}
			for i := 0; i < int(n.NamedChildCount()); i++ {
				rec(n.NamedChild(i))
			}
		}
		rec(params)
	}

	body := fn.ChildByFieldName("body")
	if body == nil {
		return declared
	}
	shallowScan(body, g, func(n *sitter.Node) {
		if n.Type() != "assignment" {
			return
		}
		left := n.ChildByFieldName("left")
		if left == nil {
			return
		}
		if left.Type() == "identifier" {
			declared[nodeText(left, src)] = true
			return
		}
		// Tuple unpacking binds each identifier.
		if left.Type() == "pattern_list" || left.Type() == "tuple_pattern" {
			for i := 0; i < int(left.NamedChildCount()); i++ {
				if c := left.NamedChild(i); c.Type() == "identifier" {
					declared[nodeText(c, src)] = true
				}
			}
		}
	})
	return declared
}
