package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Zehui-sudo/learnlink-mcp/internal/client"
	"github.com/Zehui-sudo/learnlink-mcp/internal/extractor"
	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeCatalogFailure = -32001 // Catalog could not be loaded
)

const maxTopK = 20

// handleFindKnowledge handles the find_knowledge tool invocation
func (s *Server) handleFindKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	language, ok := args["language"].(string)
	if !ok || language == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "language parameter is required", map[string]interface{}{
			"param":  "language",
			"reason": "missing or empty",
		})
	}

	features, err := parseFeatures(args["features"], language)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid features", map[string]interface{}{
			"param":  "features",
			"reason": err.Error(),
		})
	}

	code := getStringDefault(args, "code", "")
	if code == "" && features == nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "code or features is required", map[string]interface{}{
			"reason": "request must include a code snippet or pre-extracted features",
		})
	}

	// Caller-supplied features keep an unknown language usable: the query
	// proceeds and simply matches nothing in the catalog.
	if features == nil {
		if _, err := types.ParseLanguage(language); err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "unsupported language", map[string]interface{}{
				"param":   "language",
				"value":   language,
				"allowed": []string{"javascript", "typescript", "python"},
			})
		}
	}

	topK := getIntDefault(args, "top_k", 5)
	if topK < 1 || topK > maxTopK {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("top_k must be between 1 and %d", maxTopK), map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}

	minConfidence := getStringDefault(args, "min_confidence", "")
	switch types.Confidence(minConfidence) {
	case "", types.ConfidenceLow, types.ConfidenceMedium, types.ConfidenceHigh:
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid min_confidence", map[string]interface{}{
			"param":   "min_confidence",
			"value":   minConfidence,
			"allowed": []string{"low", "medium", "high"},
		})
	}

	filePath := getStringDefault(args, "file_path", "")

	resp, err := s.client.Fetch(ctx, client.Request{
		Code:     code,
		Language: language,
		Features: features,
		FilePath: filePath,
		TopK:     topK,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid request", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	if minConfidence != "" {
		kept := resp.Data[:0:0]
		for _, link := range resp.Data {
			if link.Confidence.AtLeast(types.Confidence(minConfidence)) {
				kept = append(kept, link)
			}
		}
		resp.Data = kept
	}

	return mcp.NewToolResultText(marshalJSON(resp)), nil
}

// handleAnalyzeCode handles the analyze_code tool invocation
func (s *Server) handleAnalyzeCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	code, ok := args["code"].(string)
	if !ok || code == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "code parameter is required", map[string]interface{}{
			"param":  "code",
			"reason": "missing or empty",
		})
	}

	language := getStringDefault(args, "language", "")
	if language != "" {
		if _, err := types.ParseLanguage(language); err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "unsupported language", map[string]interface{}{
				"param":   "language",
				"value":   language,
				"allowed": []string{"javascript", "typescript", "python"},
			})
		}
	}

	opts := extractor.DefaultOptions()
	opts.IncludeContext = getBoolDefault(args, "include_context", true)

	features, err := s.extractor.Extract(ctx, code, language, opts)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	diagnostics := make([]map[string]interface{}, 0, len(features.Diagnostics))
	for _, d := range features.Diagnostics {
		diagnostics = append(diagnostics, map[string]interface{}{
			"kind":    string(d.Kind),
			"message": d.Message,
		})
	}

	response := map[string]interface{}{
		"language": string(features.Language),
		"syntax":   features.Syntax.Values(),
		"patterns": features.Patterns.Values(),
		"apis":     features.APIs.Values(),
		"concepts": features.Concepts.Values(),
		"complexity": map[string]interface{}{
			"cyclomatic": features.Complexity.Cyclomatic,
			"cognitive":  features.Complexity.Cognitive,
			"line_count": features.Complexity.LineCount,
			"max_depth":  features.Complexity.MaxDepth,
			"band":       string(features.Complexity.Band()),
		},
		"degraded": features.Degraded(),
	}
	if len(diagnostics) > 0 {
		response["diagnostics"] = diagnostics
	}
	if opts.IncludeContext {
		response["context"] = map[string]interface{}{
			"function_name": features.Context.FunctionName,
			"has_return":    features.Context.HasReturn,
			"uses_this":     features.Context.UsesThis,
			"is_module":     features.Context.IsModule,
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleReloadCatalog handles the reload_catalog tool invocation
func (s *Server) handleReloadCatalog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	s.mu.RLock()
	path := s.catalogPath
	s.mu.RUnlock()
	if override := getStringDefault(args, "path", ""); override != "" {
		path = override
	}

	index, errs, err := s.reload(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeCatalogFailure, "catalog reload failed", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"reloaded": true,
		"path":     path,
		"entries":  index.Len(),
	}
	if len(errs) > 0 {
		skipped := make([]string, 0, len(errs))
		for _, ve := range errs {
			skipped = append(skipped, ve.Error())
		}
		if len(skipped) > 5 {
			response["skipped_count"] = len(skipped)
			skipped = skipped[:5]
		}
		response["skipped"] = skipped
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.RLock()
	index := s.index
	path := s.catalogPath
	skipped := len(s.loadErrs)
	s.mu.RUnlock()

	stats := index.Stats()
	byLanguage := map[string]int{}
	for lang, n := range stats.ByLanguage {
		byLanguage[string(lang)] = n
	}
	byDifficulty := map[string]int{}
	for diff, n := range stats.ByDifficulty {
		byDifficulty[string(diff)] = n
	}

	cacheEntries, cacheHits := s.client.CacheStats()

	response := map[string]interface{}{
		"catalog": map[string]interface{}{
			"path":          path,
			"entries":       stats.Entries,
			"by_language":   byLanguage,
			"by_difficulty": byDifficulty,
			"skipped":       skipped,
		},
		"cache": map[string]interface{}{
			"entries": cacheEntries,
			"hits":    cacheHits,
		},
		"extractor": map[string]interface{}{
			"cached_features": s.extractor.CacheSize(),
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// parseFeatures converts the optional features argument into a feature
// record used in place of extraction. Tags are lower-cased at this
// boundary; API signatures are normalized downstream by the engine.
func parseFeatures(raw interface{}, language string) (*types.CodeFeatures, error) {
	if raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("features must be an object")
	}

	features := types.EmptyFeatures(types.Language(language))
	fill := func(key string, dst types.TagSet) error {
		vals, ok := obj[key]
		if !ok {
			return nil
		}
		list, ok := vals.([]interface{})
		if !ok {
			return fmt.Errorf("%s must be an array of strings", key)
		}
		for _, v := range list {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%s must contain only strings", key)
			}
			dst.Add(strings.ToLower(s))
		}
		return nil
	}

	if err := fill("syntaxFlags", features.Syntax); err != nil {
		return nil, err
	}
	if err := fill("patterns", features.Patterns); err != nil {
		return nil, err
	}
	if err := fill("apiSignatures", features.APIs); err != nil {
		return nil, err
	}
	if err := fill("concepts", features.Concepts); err != nil {
		return nil, err
	}
	return features, nil
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// marshalJSON formats any value as indented JSON
func marshalJSON(v interface{}) string {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
