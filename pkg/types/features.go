package types

import "errors"

// ComplexityBand buckets a complexity measurement for wire-level requests.
type ComplexityBand string

const (
	ComplexityLow    ComplexityBand = "low"
	ComplexityMedium ComplexityBand = "medium"
	ComplexityHigh   ComplexityBand = "high"
)

// ComplexityMetrics holds structural complexity measurements for a snippet.
type ComplexityMetrics struct {
	// Cyclomatic starts at 1 (the base path) and increments once per
	// branch, loop, logical operator, and catch clause.
	Cyclomatic int
	// Cognitive weights loops and nested branches more heavily than flat
	// conditionals. This is an internal heuristic, not a published formula.
	Cognitive int
	LineCount int
	MaxDepth  int
}

// Band maps cyclomatic complexity to a coarse low/medium/high bucket.
func (m ComplexityMetrics) Band() ComplexityBand {
	switch {
	case m.Cyclomatic >= 10:
		return ComplexityHigh
	case m.Cyclomatic >= 5:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

// Validate checks metric invariants.
func (m ComplexityMetrics) Validate() error {
	if m.Cyclomatic < 1 {
		return errors.New("cyclomatic complexity must be >= 1")
	}
	if m.Cognitive < 0 || m.LineCount < 0 || m.MaxDepth < 0 {
		return errors.New("complexity metrics cannot be negative")
	}
	return nil
}

// CodeContext carries optional structural hints about the analyzed snippet.
type CodeContext struct {
	FunctionName string          // Name of the first enclosing/top-level function, if any
	HasReturn    bool            // Snippet contains a return statement
	UsesThis     bool            // Snippet references this/self
	IsModule     bool            // Snippet contains import/export forms
	Hints        map[string]bool // Free-form boolean hints for the wire shape
}

// DiagnosticKind classifies a non-fatal extraction diagnostic.
type DiagnosticKind string

const (
	DiagParseFailure  DiagnosticKind = "parse_failure"
	DiagParseTimeout  DiagnosticKind = "parse_timeout"
	DiagWrappedParse  DiagnosticKind = "wrapped_parse"
	DiagUnsupported   DiagnosticKind = "unsupported_language"
	DiagEmptySnippet  DiagnosticKind = "empty_snippet"
	DiagConceptSkew   DiagnosticKind = "concept_inference_best_effort"
	DiagInternalError DiagnosticKind = "internal_error"
)

// Diagnostic records a recoverable problem encountered during extraction.
// Diagnostics never escalate to errors past the extractor boundary.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

// CodeFeatures is the normalized feature record extracted from a snippet.
// A CodeFeatures value is produced fresh per analysis call and must be
// treated as immutable once returned.
type CodeFeatures struct {
	Language Language

	Syntax   TagSet
	Patterns TagSet
	APIs     TagSet
	Concepts TagSet

	Complexity ComplexityMetrics
	Context    CodeContext

	// Diagnostics records degraded-output causes (parse failures, timeouts).
	Diagnostics []Diagnostic
}

// EmptyFeatures returns a valid zero-baseline feature record for a language.
// Used when parsing fails or times out: callers receive degraded output,
// never a hard failure.
func EmptyFeatures(lang Language) *CodeFeatures {
	return &CodeFeatures{
		Language:   lang,
		Syntax:     NewTagSet(),
		Patterns:   NewTagSet(),
		APIs:       NewTagSet(),
		Concepts:   NewTagSet(),
		Complexity: ComplexityMetrics{Cyclomatic: 1},
	}
}

// Degraded reports whether extraction recorded any parse failure or timeout.
func (f *CodeFeatures) Degraded() bool {
	for _, d := range f.Diagnostics {
		if d.Kind == DiagParseFailure || d.Kind == DiagParseTimeout || d.Kind == DiagUnsupported {
			return true
		}
	}
	return false
}

// TagCount returns the total number of tags across all four dimensions.
func (f *CodeFeatures) TagCount() int {
	return f.Syntax.Len() + f.Patterns.Len() + f.APIs.Len() + f.Concepts.Len()
}

// Dimension returns the tag set for the given dimension.
func (f *CodeFeatures) Dimension(d Dimension) TagSet {
	switch d {
	case DimSyntax:
		return f.Syntax
	case DimPatterns:
		return f.Patterns
	case DimAPIs:
		return f.APIs
	case DimConcepts:
		return f.Concepts
	default:
		return nil
	}
}
