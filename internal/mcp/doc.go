// Package mcp implements the MCP (Model Context Protocol) server surface
// for knowledge retrieval.
//
// The server exposes four tools over stdio:
//
//   - find_knowledge: match a code snippet against the curriculum catalog
//     and return ranked knowledge links
//   - analyze_code: extract syntax, pattern, API, and concept features from
//     a snippet without matching
//   - reload_catalog: replace the active catalog index from disk
//   - get_status: report catalog, cache, and extractor statistics
//
// NewServer composes the full pipeline from the environment: the catalog
// index from LEARNLINK_CATALOG_PATH, an optional remote matching service
// from LEARNLINK_REMOTE_URL, and the retrieval client tying them together.
// All diagnostics go to stderr via the standard logger; stdout carries
// only MCP protocol messages.
package mcp
