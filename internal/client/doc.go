// Package client provides the resilient retrieval layer between callers
// and the matching engine.
//
// A Client wraps a primary Matcher (local engine or remote HTTP service)
// with the operational behavior interactive callers need:
//
//   - Caching: responses are cached by query identity (code prefix,
//     language, feature sets, topK) with a TTL. Eviction under capacity
//     pressure blends recency and hit count, so repeatedly useful entries
//     outlive one-shot ones.
//   - Retry: transient failures are retried with exponential backoff.
//     Client errors (bad requests, HTTP 4xx) abort immediately.
//   - Fallback: when the primary path is exhausted and raw code is
//     available, a single keyword-based attempt runs against the catalog
//     and the response is marked keyword-based.
//   - Debounce: FetchDebounced coalesces bursts of calls so only the last
//     query in a window executes; superseded calls are discarded.
//
// Fetch never surfaces retrieval failures as errors. A query that
// exhausts every path returns Success=false with an empty Data slice, so
// callers can always render a response. Only invalid requests (missing
// language, or neither code nor features) return an error.
package client
