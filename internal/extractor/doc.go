// Package extractor converts raw source snippets into normalized
// CodeFeatures records using tree-sitter parsers.
//
// # Supported Languages
//
// JavaScript, TypeScript, and Python are supported, each with its own
// analyzer. When no language is declared, ordered heuristics pick one:
// Python markers (def/import/print) win first, then TypeScript markers
// (interface declarations, primitive type annotations), then the
// JavaScript default.
//
//	ex := extractor.New()
//	features, err := ex.Extract(ctx, code, "javascript", extractor.DefaultOptions())
//
// # Resilient Parsing
//
// Snippets are rarely complete programs. A bare statement list that fails
// to parse is retried inside a synthetic enclosing function; if both
// attempts fail, Extract returns an empty-but-valid CodeFeatures carrying a
// diagnostic instead of an error. Callers never receive a hard failure for
// malformed input, only degraded output.
//
// # Dimensions
//
// Four tag dimensions are extracted, each in a single pass over the shared
// read-only parse tree. The passes are independent and run concurrently:
//
//   - syntax: declaration kinds, function kinds, control flow, error
//     handling, module forms, operator forms
//   - patterns: async/await, promise chains, callbacks, array transform
//     chains, destructuring, classes, decorators, generators,
//     comprehensions, context managers
//   - apis: normalized call signatures ("console.log", "fetch", "json.loads")
//   - concepts: heuristic inference of closures, hoisting, recursion, type
//     coercion, and callback hell — best-effort only
//
// # Complexity
//
// Cyclomatic complexity starts at 1 and increments per branch, loop,
// logical operator, and catch clause. Cognitive complexity weights loops
// and nested branches more heavily than flat conditionals, scaled by
// nesting depth.
//
// # Time Budget
//
// The whole parse plus traversal is bounded by Options.Timeout (default
// 5s). On timeout the extractor returns empty features rather than a
// partial tag set: partial features are more misleading than none.
//
// Extraction is a pure function of (code, language, options); results are
// cached by content hash with LRU eviction.
package extractor
