package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// findKnowledgeTool returns the tool definition for find_knowledge
func findKnowledgeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_knowledge",
		Description: "Find curriculum sections relevant to a code snippet",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "Code snippet to match against the knowledge catalog; required unless features are supplied",
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Snippet language (javascript, typescript, or python)",
					"enum":        []string{"javascript", "typescript", "python"},
				},
				"features": map[string]interface{}{
					"type":        "object",
					"description": "Pre-extracted features; matched as-is, skipping extraction",
					"properties": map[string]interface{}{
						"syntaxFlags": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
						"patterns": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
						"apiSignatures": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
						"concepts": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
					},
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-20)",
					"default":     5,
					"minimum":     1,
					"maximum":     20,
				},
				"min_confidence": map[string]interface{}{
					"type":        "string",
					"description": "Drop results below this confidence band",
					"enum":        []string{"low", "medium", "high"},
				},
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Optional source file path, used as a language hint",
				},
			},
			Required: []string{"language"},
		},
	}
}

// analyzeCodeTool returns the tool definition for analyze_code
func analyzeCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "analyze_code",
		Description: "Extract syntax, pattern, API, and concept features from a code snippet without matching",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "Code snippet to analyze",
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Snippet language; omit to auto-detect",
					"enum":        []string{"javascript", "typescript", "python"},
				},
				"include_context": map[string]interface{}{
					"type":        "boolean",
					"description": "Include contextual hints (function name, this/self usage, module form)",
					"default":     true,
				},
			},
			Required: []string{"code"},
		},
	}
}

// reloadCatalogTool returns the tool definition for reload_catalog
func reloadCatalogTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reload_catalog",
		Description: "Reload the knowledge catalog from disk, replacing the active index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Catalog file or directory; defaults to the currently loaded path",
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report catalog, cache, and extractor statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
