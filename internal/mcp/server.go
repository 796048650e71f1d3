package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Zehui-sudo/learnlink-mcp/internal/catalog"
	"github.com/Zehui-sudo/learnlink-mcp/internal/client"
	"github.com/Zehui-sudo/learnlink-mcp/internal/extractor"
	"github.com/Zehui-sudo/learnlink-mcp/internal/matcher"
)

const (
	// ServerName is the MCP server name
	ServerName = "learnlink-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"

	// EnvCatalogPath points at the knowledge catalog YAML file or directory
	EnvCatalogPath = "LEARNLINK_CATALOG_PATH"
	// EnvRemoteURL, when set, routes retrieval through a remote matching
	// service instead of the in-process engine
	EnvRemoteURL = "LEARNLINK_REMOTE_URL"
	// EnvCacheSize overrides the retrieval cache capacity
	EnvCacheSize = "LEARNLINK_CACHE_SIZE"
)

// Server wraps the MCP server with application dependencies.
type Server struct {
	mcp       *server.MCPServer
	extractor *extractor.Extractor
	engine    *matcher.Engine
	keyword   *matcher.KeywordMatcher
	client    *client.Client

	mu          sync.RWMutex
	index       *catalog.Index
	catalogPath string
	loadErrs    []catalog.ValidationError
}

// NewServer creates a new MCP server instance configured from the
// environment.
func NewServer() (*Server, error) {
	catalogPath := os.Getenv(EnvCatalogPath)
	if catalogPath == "" {
		return nil, fmt.Errorf("%s not set", EnvCatalogPath)
	}

	loaded, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	index, buildErrs := catalog.Build(loaded.Entries)
	loadErrs := append(loaded.Skipped, buildErrs...)
	for _, ve := range loadErrs {
		log.Printf("catalog: skipped entry %s: %s", ve.EntryID, ve.Message)
	}

	ex := extractor.New()
	engine := matcher.NewEngine(index)
	keyword := matcher.NewKeywordMatcher(index)

	clientCfg := client.DefaultConfig()
	if raw := os.Getenv(EnvCacheSize); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", EnvCacheSize, raw)
		}
		clientCfg.CacheSize = size
	}

	var primary client.Matcher
	if remoteURL := os.Getenv(EnvRemoteURL); remoteURL != "" {
		primary = client.NewRemoteMatcher(remoteURL)
		log.Printf("retrieval: using remote matcher at %s", remoteURL)
	} else {
		matchCfg := matcher.DefaultConfig()
		matchCfg.IncludeDependencies = true
		primary = client.NewLocalMatcher(ex, engine, matchCfg)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:         mcpServer,
		extractor:   ex,
		engine:      engine,
		keyword:     keyword,
		client:      client.New(primary, keyword, clientCfg),
		index:       index,
		catalogPath: catalogPath,
		loadErrs:    loadErrs,
	}

	s.registerTools()

	log.Printf("catalog: loaded %d entries from %s", index.Len(), catalogPath)
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer s.client.Close()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	s.mcp.AddTool(findKnowledgeTool(), s.handleFindKnowledge)
	s.mcp.AddTool(analyzeCodeTool(), s.handleAnalyzeCode)
	s.mcp.AddTool(reloadCatalogTool(), s.handleReloadCatalog)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

// reload replaces the active index with one built from path and repoints
// the engine and keyword matcher at it.
func (s *Server) reload(path string) (*catalog.Index, []catalog.ValidationError, error) {
	loaded, err := catalog.Load(path)
	if err != nil {
		return nil, nil, err
	}
	index, buildErrs := catalog.Build(loaded.Entries)
	errs := append(loaded.Skipped, buildErrs...)

	s.mu.Lock()
	s.index = index
	s.catalogPath = path
	s.loadErrs = errs
	s.engine.SetIndex(index)
	s.keyword.SetIndex(index)
	s.mu.Unlock()

	return index, errs, nil
}

func (s *Server) currentIndex() *catalog.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}
