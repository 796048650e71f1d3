// Package catalog loads the curriculum knowledge base and builds the
// inverted indexes that serve tag lookups.
//
// # Loading
//
// Catalogs are YAML documents of knowledge entries:
//
//	entries:
//	  - id: js-async-1
//	    title: Async/Await Basics
//	    chapterId: ch-async
//	    chapterTitle: Asynchronous JavaScript
//	    language: javascript
//	    difficulty: intermediate
//	    tags:
//	      patterns: [async-await, error-handling]
//	      apis: [fetch, Promise.all]
//
// Load validates each entry and normalizes its tag sets (lower-casing,
// canonical taxonomy tags, API signatures reduced to their final dotted
// segment). Malformed entries are skipped and recorded as ValidationErrors;
// a bad entry never aborts the load.
//
// # Indexing
//
// Build constructs by-id, by-syntax-tag, by-pattern-tag, by-api-tag,
// by-concept-tag, by-language, and by-difficulty maps in one pass. Dangling
// dependency or related references are load-time validation errors, not
// runtime failures. The index is read-only after Build and rebuilt
// wholesale on catalog reload — the catalog is small and rebuilds are cheap,
// so incremental updates are deliberately unsupported.
package catalog
