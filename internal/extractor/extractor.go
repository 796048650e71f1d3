package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

const (
	// DefaultTimeout bounds the whole parse+traversal for one snippet.
	DefaultTimeout = 5 * time.Second

	// DefaultCacheSize is the number of feature records kept by content hash.
	DefaultCacheSize = 1000
)

// Options controls a single extraction call.
type Options struct {
	// IncludeContext enables the context-hint pass (function name,
	// this/self usage, module forms).
	IncludeContext bool
	// Timeout bounds parse plus traversal. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultOptions returns the options used when the caller passes none.
func DefaultOptions() Options {
	return Options{
		IncludeContext: true,
		Timeout:        DefaultTimeout,
	}
}

// Extractor converts raw source text into a normalized CodeFeatures record.
// An Extractor is safe for concurrent use; construct one at the composition
// root and inject it where needed.
type Extractor struct {
	analyzers map[types.Language]*analyzer
	cache     *lru.Cache[string, *types.CodeFeatures]
}

// New creates an Extractor with analyzers for all supported languages.
func New() *Extractor {
	cache, err := lru.New[string, *types.CodeFeatures](DefaultCacheSize)
	if err != nil {
		// Only possible with a non-positive size.
		panic(fmt.Sprintf("failed to create feature cache: %v", err))
	}

	return &Extractor{
		analyzers: map[types.Language]*analyzer{
			types.LangJavaScript: newJavaScriptAnalyzer(),
			types.LangTypeScript: newTypeScriptAnalyzer(),
			types.LangPython:     newPythonAnalyzer(),
		},
		cache: cache,
	}
}

// Extract analyzes a snippet and returns its feature record. The language
// is auto-detected when empty. Extraction never fails for malformed input:
// parse failures and timeouts degrade to an empty-but-valid record carrying
// a diagnostic. The returned error is reserved for caller bugs (an
// explicitly requested language outside the supported set).
func (e *Extractor) Extract(ctx context.Context, code string, language string, opts Options) (*types.CodeFeatures, error) {
	lang, err := e.resolveLanguage(code, language)
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if strings.TrimSpace(code) == "" {
		features := types.EmptyFeatures(lang)
		features.Diagnostics = append(features.Diagnostics, types.Diagnostic{
			Kind:    types.DiagEmptySnippet,
			Message: "empty code snippet",
		})
		return features, nil
	}

	key := cacheKey(code, lang, opts)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	features := e.extract(ctx, code, lang, opts)
	e.cache.Add(key, features)
	return features, nil
}

// resolveLanguage parses an explicit language or falls back to detection.
func (e *Extractor) resolveLanguage(code, language string) (types.Language, error) {
	if language == "" {
		return DetectLanguage(code), nil
	}
	return types.ParseLanguage(language)
}

// extract runs the parse and the four dimension passes. All failures are
// converted to diagnostics on a zero-baseline record.
func (e *Extractor) extract(ctx context.Context, code string, lang types.Language, opts Options) *types.CodeFeatures {
	an := e.analyzers[lang]

	source, tree, synthetic, diags := an.parseResilient(ctx, code)
	if tree == nil {
		features := types.EmptyFeatures(lang)
		features.Diagnostics = append(features.Diagnostics, diags...)
		return features
	}
	defer tree.Close()

	root := tree.RootNode()
	wrapped := synthetic != nil

	features := &types.CodeFeatures{
		Language:    lang,
		Diagnostics: diags,
	}

	// The parse tree is shared read-only; each pass owns its accumulator,
	// so the dimensions can run concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		features.Syntax, err = an.collectSyntax(gctx, root, source, synthetic)
		return err
	})
	g.Go(func() error {
		var err error
		features.Patterns, err = an.collectPatterns(gctx, root, source, synthetic)
		return err
	})
	g.Go(func() error {
		var err error
		features.APIs, err = an.collectAPIs(gctx, root, source)
		return err
	})
	g.Go(func() error {
		var err error
		features.Concepts, err = an.collectConcepts(gctx, root, source, synthetic)
		return err
	})

	if err := g.Wait(); err != nil {
		// Timeout mid-traversal: partial tag sets are more misleading than
		// none, so the whole record degrades to the empty baseline.
		features := types.EmptyFeatures(lang)
		features.Diagnostics = append(features.Diagnostics, types.Diagnostic{
			Kind:    types.DiagParseTimeout,
			Message: fmt.Sprintf("traversal aborted: %v", err),
		})
		return features
	}

	features.Complexity = an.complexity(root, source, wrapped)
	features.Complexity.LineCount = countLines(code)

	if opts.IncludeContext {
		features.Context = an.collectContext(root, source, synthetic)
	}

	return features
}

// CacheSize returns the number of cached feature records.
func (e *Extractor) CacheSize() int { return e.cache.Len() }

// cacheKey derives the feature-cache key from the extraction inputs.
func cacheKey(code string, lang types.Language, opts Options) string {
	h := sha256.New()
	h.Write([]byte(code))
	h.Write([]byte{0})
	h.Write([]byte(lang))
	if opts.IncludeContext {
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func countLines(code string) int {
	if strings.TrimSpace(code) == "" {
		return 0
	}
	return strings.Count(strings.TrimRight(code, "\n"), "\n") + 1
}

// parseResilient parses the snippet, retrying once with a synthetic
// enclosing function when the bare snippet fails. Returns the effective
// source, the tree (nil when both attempts fail), and the synthetic wrapper
// node used to exclude wrapper artifacts from tagging.
func (a *analyzer) parseResilient(ctx context.Context, code string) ([]byte, *sitter.Tree, *sitter.Node, []types.Diagnostic) {
	var diags []types.Diagnostic

	parser := sitter.NewParser()
	parser.SetLanguage(a.sitterLang)

	source := []byte(code)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err == nil && tree != nil && !tree.RootNode().HasError() {
		return source, tree, nil, diags
	}
	if tree != nil {
		tree.Close()
	}
	if ctx.Err() != nil {
		return nil, nil, nil, append(diags, types.Diagnostic{
			Kind:    types.DiagParseTimeout,
			Message: "parse exceeded time budget",
		})
	}

	// The grammars are fault-tolerant and accept most fragments at top
	// level, so this retry fires only when the bare parse leaves error
	// nodes; a snippet that fails both ways degrades to empty features.
	wrappedSource := []byte(a.wrap(code))
	tree, err = parser.ParseCtx(ctx, nil, wrappedSource)
	if err != nil || tree == nil || tree.RootNode().HasError() {
		if tree != nil {
			tree.Close()
		}
		kind := types.DiagParseFailure
		msg := "snippet is not parseable, returning empty features"
		if ctx.Err() != nil {
			kind = types.DiagParseTimeout
			msg = "parse exceeded time budget"
		}
		return nil, nil, nil, append(diags, types.Diagnostic{Kind: kind, Message: msg})
	}

	diags = append(diags, types.Diagnostic{
		Kind:    types.DiagWrappedParse,
		Message: "snippet parsed inside a synthetic enclosing function",
	})

	synthetic := a.findWrapperNode(tree.RootNode())
	return wrappedSource, tree, synthetic, diags
}

// findWrapperNode locates the synthetic function the wrapper template added,
// so traversals can skip its artifacts. The wrapper encloses the whole
// snippet, so it is the first function node reached top-down.
func (a *analyzer) findWrapperNode(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	var search func(n *sitter.Node)
	search = func(n *sitter.Node) {
		if found != nil || n == nil {
			return
		}
		if a.grammar.functionNodes[n.Type()] {
			found = n
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			search(n.NamedChild(i))
		}
	}
	search(root)
	return found
}
