package types

import (
	"sort"
	"strings"
)

// Dimension identifies one of the independent tag taxonomies used to
// describe both code features and knowledge entries.
type Dimension string

const (
	DimSyntax   Dimension = "syntax"
	DimPatterns Dimension = "patterns"
	DimAPIs     Dimension = "apis"
	DimConcepts Dimension = "concepts"
)

// Dimensions lists all tag dimensions in scoring order.
var Dimensions = []Dimension{DimSyntax, DimPatterns, DimAPIs, DimConcepts}

// SyntaxTag is a structural construct observed in source code.
type SyntaxTag string

const (
	SynConstDeclaration     SyntaxTag = "const-declaration"
	SynLetDeclaration       SyntaxTag = "let-declaration"
	SynVarDeclaration       SyntaxTag = "var-declaration"
	SynAssignment           SyntaxTag = "assignment"
	SynAugmentedAssignment  SyntaxTag = "augmented-assignment"
	SynFunctionDeclaration  SyntaxTag = "function-declaration"
	SynFunctionExpression   SyntaxTag = "function-expression"
	SynArrowFunction        SyntaxTag = "arrow-function"
	SynMethodDefinition     SyntaxTag = "method-definition"
	SynAsyncFunction        SyntaxTag = "async-function"
	SynGeneratorFunction    SyntaxTag = "generator-function"
	SynLambda               SyntaxTag = "lambda"
	SynClassDeclaration     SyntaxTag = "class-declaration"
	SynIfStatement          SyntaxTag = "if-statement"
	SynTernaryExpression    SyntaxTag = "ternary-expression"
	SynSwitchStatement      SyntaxTag = "switch-statement"
	SynForLoop              SyntaxTag = "for-loop"
	SynForInLoop            SyntaxTag = "for-in-loop"
	SynForOfLoop            SyntaxTag = "for-of-loop"
	SynWhileLoop            SyntaxTag = "while-loop"
	SynDoWhileLoop          SyntaxTag = "do-while-loop"
	SynTryCatch             SyntaxTag = "try-catch"
	SynTryExcept            SyntaxTag = "try-except"
	SynThrowStatement       SyntaxTag = "throw-statement"
	SynRaiseStatement       SyntaxTag = "raise-statement"
	SynFinallyClause        SyntaxTag = "finally-clause"
	SynImportStatement      SyntaxTag = "import-statement"
	SynImportFromStatement  SyntaxTag = "import-from-statement"
	SynExportStatement      SyntaxTag = "export-statement"
	SynLogicalOperator      SyntaxTag = "logical-operator"
	SynSpreadOperator       SyntaxTag = "spread-operator"
	SynOptionalChaining     SyntaxTag = "optional-chaining"
	SynNullishCoalescing    SyntaxTag = "nullish-coalescing"
	SynTemplateLiteral      SyntaxTag = "template-literal"
	SynTypeAnnotation       SyntaxTag = "type-annotation"
	SynInterfaceDeclaration SyntaxTag = "interface-declaration"
	SynTypeAlias            SyntaxTag = "type-alias"
	SynEnumDeclaration      SyntaxTag = "enum-declaration"
	SynWithStatement        SyntaxTag = "with-statement"
	SynYieldExpression      SyntaxTag = "yield-expression"
	SynAwaitExpression      SyntaxTag = "await-expression"
	SynNewExpression        SyntaxTag = "new-expression"
)

func (t SyntaxTag) String() string { return string(t) }

// PatternTag is an idiomatic usage pattern inferred from code structure.
type PatternTag string

const (
	PatAsyncAwait          PatternTag = "async-await"
	PatPromiseChain        PatternTag = "promise-chain"
	PatCallback            PatternTag = "callback"
	PatArrayTransformChain PatternTag = "array-transform-chain"
	PatDestructuring       PatternTag = "destructuring"
	PatClass               PatternTag = "class"
	PatInheritance         PatternTag = "inheritance"
	PatDecorator           PatternTag = "decorator"
	PatGenerator           PatternTag = "generator"
	PatComprehension       PatternTag = "comprehension"
	PatContextManager      PatternTag = "context-manager"
	PatHigherOrderFunction PatternTag = "higher-order-function"
	PatErrorHandling       PatternTag = "error-handling"
)

func (t PatternTag) String() string { return string(t) }

// ConceptTag is an abstract programming concept inferred heuristically.
// Concept detection is best-effort; consumers must not treat concept tags
// as exact structural facts.
type ConceptTag string

const (
	ConClosure      ConceptTag = "closure"
	ConHoisting     ConceptTag = "hoisting"
	ConRecursion    ConceptTag = "recursion"
	ConTypeCoercion ConceptTag = "type-coercion"
	ConCallbackHell ConceptTag = "callback-hell"
)

func (t ConceptTag) String() string { return string(t) }

// syntaxTags enumerates the closed syntax taxonomy for normalization.
var syntaxTags = map[string]SyntaxTag{}

// patternTags enumerates the closed pattern taxonomy for normalization.
var patternTags = map[string]PatternTag{}

// conceptTags enumerates the closed concept taxonomy for normalization.
var conceptTags = map[string]ConceptTag{}

func init() {
	for _, t := range []SyntaxTag{
		SynConstDeclaration, SynLetDeclaration, SynVarDeclaration,
		SynAssignment, SynAugmentedAssignment,
		SynFunctionDeclaration, SynFunctionExpression, SynArrowFunction,
		SynMethodDefinition, SynAsyncFunction, SynGeneratorFunction, SynLambda,
		SynClassDeclaration,
		SynIfStatement, SynTernaryExpression, SynSwitchStatement,
		SynForLoop, SynForInLoop, SynForOfLoop, SynWhileLoop, SynDoWhileLoop,
		SynTryCatch, SynTryExcept, SynThrowStatement, SynRaiseStatement, SynFinallyClause,
		SynImportStatement, SynImportFromStatement, SynExportStatement,
		SynLogicalOperator, SynSpreadOperator, SynOptionalChaining,
		SynNullishCoalescing, SynTemplateLiteral,
		SynTypeAnnotation, SynInterfaceDeclaration, SynTypeAlias, SynEnumDeclaration,
		SynWithStatement, SynYieldExpression, SynAwaitExpression, SynNewExpression,
	} {
		syntaxTags[string(t)] = t
	}
	for _, t := range []PatternTag{
		PatAsyncAwait, PatPromiseChain, PatCallback, PatArrayTransformChain,
		PatDestructuring, PatClass, PatInheritance, PatDecorator, PatGenerator,
		PatComprehension, PatContextManager, PatHigherOrderFunction, PatErrorHandling,
	} {
		patternTags[string(t)] = t
	}
	for _, t := range []ConceptTag{
		ConClosure, ConHoisting, ConRecursion, ConTypeCoercion, ConCallbackHell,
	} {
		conceptTags[string(t)] = t
	}
}

// NormalizeSyntaxTag maps a raw string to its canonical syntax tag.
// Matching is case-insensitive. Returns false for tags outside the taxonomy.
func NormalizeSyntaxTag(raw string) (SyntaxTag, bool) {
	t, ok := syntaxTags[strings.ToLower(strings.TrimSpace(raw))]
	return t, ok
}

// NormalizePatternTag maps a raw string to its canonical pattern tag.
func NormalizePatternTag(raw string) (PatternTag, bool) {
	t, ok := patternTags[strings.ToLower(strings.TrimSpace(raw))]
	return t, ok
}

// NormalizeConceptTag maps a raw string to its canonical concept tag.
func NormalizeConceptTag(raw string) (ConceptTag, bool) {
	t, ok := conceptTags[strings.ToLower(strings.TrimSpace(raw))]
	return t, ok
}

// NormalizeAPITag reduces a dotted call signature to its lower-cased final
// segment, so "Array.map" and "numbers.map" both normalize to "map".
// This deliberately trades precision for recall: receiver names are
// unreliable in snippets.
func NormalizeAPITag(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// TagSet is an unordered set of normalized tag strings for one dimension.
type TagSet map[string]struct{}

// NewTagSet builds a set from the given tags, lower-casing each.
func NewTagSet(tags ...string) TagSet {
	ts := make(TagSet, len(tags))
	for _, t := range tags {
		ts.Add(t)
	}
	return ts
}

// Add inserts a tag, lower-cased. Empty strings are ignored.
func (ts TagSet) Add(tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return
	}
	ts[tag] = struct{}{}
}

// Has reports whether the set contains the tag (case-insensitive).
func (ts TagSet) Has(tag string) bool {
	_, ok := ts[strings.ToLower(tag)]
	return ok
}

// Len returns the number of tags in the set.
func (ts TagSet) Len() int { return len(ts) }

// Values returns the tags in sorted order for deterministic output.
func (ts TagSet) Values() []string {
	out := make([]string, 0, len(ts))
	for t := range ts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (ts TagSet) Clone() TagSet {
	out := make(TagSet, len(ts))
	for t := range ts {
		out[t] = struct{}{}
	}
	return out
}

// Equal reports whether two sets contain exactly the same tags.
func (ts TagSet) Equal(other TagSet) bool {
	if len(ts) != len(other) {
		return false
	}
	for t := range ts {
		if _, ok := other[t]; !ok {
			return false
		}
	}
	return true
}
