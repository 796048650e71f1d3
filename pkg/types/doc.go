// Package types provides shared type definitions for the LearnLink MCP server.
//
// This package defines domain types used across multiple components of
// LearnLink, including extracted code features, tag taxonomies, knowledge
// entries, and match results.
//
// # Tag Dimensions
//
// Code and knowledge entries are both described across four independent
// taxonomies: syntax constructs, idiomatic patterns, API call signatures,
// and abstract concepts. Syntax, pattern, and concept tags are closed
// enumerations with normalization functions at the parser boundary:
//
//	tag, ok := types.NormalizePatternTag("Async-Await")
//	// tag == types.PatAsyncAwait
//
// API tags are open-ended call signatures normalized to their final dotted
// segment so that "Array.map" and "numbers.map" index identically:
//
//	types.NormalizeAPITag("Array.map") // "map"
//
// # Code Features
//
// CodeFeatures is the extractor's output: one TagSet per dimension plus
// complexity metrics and optional context hints:
//
//	features := &types.CodeFeatures{
//	    Language: types.LangJavaScript,
//	    Patterns: types.NewTagSet("async-await", "error-handling"),
//	    APIs:     types.NewTagSet("fetch", "console.log"),
//	}
//
// A CodeFeatures value is a pure function of its input and is immutable
// once returned. Extraction failures surface as Diagnostics on an
// empty-but-valid record, never as errors.
//
// # Knowledge Entries
//
// KnowledgeEntry is one indexed unit of the curriculum catalog, tagged
// across all four dimensions and read-only after load:
//
//	entry := &types.KnowledgeEntry{
//	    ID:       "js-async-1",
//	    Title:    "Async/Await Basics",
//	    Language: types.LangJavaScript,
//	    Tags:     types.EntryTags{Patterns: types.NewTagSet("async-await")},
//	}
//
// # Match Results
//
// MatchResult combines an entry with its weighted similarity score,
// per-dimension matched tags, and a coarse confidence band derived from
// fixed thresholds. Scores are normalized to [0, 1].
package types
