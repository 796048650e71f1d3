// Package matcher scores knowledge entries against extracted code features.
//
// # Scoring
//
// Language is a hard filter. For each of the four tag dimensions the engine
// computes Jaccard similarity between the query's tag set and the entry's,
// then combines the four similarities with fixed per-dimension weights
// (defaults: syntax 0.25, patterns 0.35, apis 0.30, concepts 0.10).
// Candidates below the minimum score (default 0.3) are discarded; the rest
// are stably sorted descending — equal scores retain catalog insertion
// order — and cut to top-K (default 5).
//
// Confidence bands: score >= 0.7 is high, >= 0.4 medium, else low. With
// IncludeDependencies set, each result's unresolved prerequisites join the
// result set as zero-score, low-confidence entries.
//
// Every result carries a deterministic explanation string built from the
// matched tag sets, e.g.:
//
//	72% match: patterns [async-await]; apis [fetch]
//
// The weights and thresholds are empirical defaults with no derivation;
// they are configuration, not constants.
//
// # Fallback
//
// KeywordMatcher implements the degraded strategy used when feature-based
// matching fails: raw token overlap between the code text and entry
// titles/tags, no parse tree required.
package matcher
