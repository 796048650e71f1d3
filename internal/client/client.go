package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// MatchingMethod names the strategy that produced a response.
type MatchingMethod string

const (
	MethodFeatureBased MatchingMethod = "feature-based"
	MethodKeywordBased MatchingMethod = "keyword-based"
	MethodNone         MatchingMethod = "none"
)

// Request is one retrieval query.
type Request struct {
	Code     string
	Language string
	Features *types.CodeFeatures // optional pre-extracted features
	FilePath string
	TopK     int
}

// Validate enforces the request contract: language is required, and at
// least one of code or features must be present. Violations are
// 400-equivalent client errors.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Language) == "" {
		return fmt.Errorf("%w: %w", types.ErrClient, types.ErrMissingLanguage)
	}
	if strings.TrimSpace(r.Code) == "" && r.Features == nil {
		return fmt.Errorf("%w: %w", types.ErrClient, types.ErrEmptyQuery)
	}
	return nil
}

// cacheKey derives the logical query identity: code prefix, language,
// feature tag sets, and topK.
func (r *Request) cacheKey() string {
	h := sha256.New()

	prefix := r.Code
	if len(prefix) > 200 {
		prefix = prefix[:200]
	}
	h.Write([]byte(prefix))
	h.Write([]byte{0})
	h.Write([]byte(r.Language))
	h.Write([]byte{0})
	if r.Features != nil {
		for _, dim := range types.Dimensions {
			h.Write([]byte(strings.Join(r.Features.Dimension(dim).Values(), ",")))
			h.Write([]byte{0})
		}
	}
	fmt.Fprintf(h, "%d", r.TopK)
	return hex.EncodeToString(h.Sum(nil))
}

// Response is the outcome of one retrieval. The client never propagates
// retrieval failures as errors: a failed query yields Success=false with an
// empty Data slice and the failure recorded in Error/Details.
type Response struct {
	Success        bool                  `json:"success"`
	Data           []types.KnowledgeLink `json:"data"`
	MatchingMethod MatchingMethod        `json:"matchingMethod"`
	Error          string                `json:"error,omitempty"`
	Details        string                `json:"details,omitempty"`
	Cached         bool                  `json:"-"`
}

// Matcher is the primary retrieval path: the in-process engine or a remote
// equivalent.
type Matcher interface {
	Retrieve(ctx context.Context, req Request) (*Response, error)
}

// KeywordRetriever is the degraded fallback path, which needs only the raw
// code string.
type KeywordRetriever interface {
	Match(code string, lang types.Language, topK int) []types.MatchResult
}

// Config tunes the client's caching, retry, debounce, and filtering.
type Config struct {
	CacheSize     int           // entries before eviction (default 100)
	CacheTTL      time.Duration // entry lifetime (default 5m)
	HitWeight     time.Duration // recency credit per cache hit (default 30s)
	SweepInterval time.Duration // expired-entry sweep period (default 1m)

	Retry RetryConfig

	DebounceWindow time.Duration // default 300ms

	// MinConfidence drops results below this band after retrieval.
	// Empty means no filtering.
	MinConfidence types.Confidence

	DefaultTopK int // default 5
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		CacheSize:      100,
		CacheTTL:       5 * time.Minute,
		HitWeight:      30 * time.Second,
		SweepInterval:  time.Minute,
		Retry:          DefaultRetryConfig(),
		DebounceWindow: 300 * time.Millisecond,
		DefaultTopK:    5,
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.CacheSize <= 0 {
		c.CacheSize = d.CacheSize
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.HitWeight <= 0 {
		c.HitWeight = d.HitWeight
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = d.SweepInterval
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry = d.Retry
	}
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = d.DebounceWindow
	}
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = d.DefaultTopK
	}
}

// Client shields the matching engine from repeated and duplicate queries
// and absorbs transient failures. Construct one per process at the
// composition root and inject it; it owns the only mutable shared state
// (the cache).
type Client struct {
	primary  Matcher
	fallback KeywordRetriever
	cache    *queryCache
	debounce *debouncer
	cfg      Config
}

// New creates a retrieval client over a primary matcher and a keyword
// fallback.
func New(primary Matcher, fallback KeywordRetriever, cfg Config) *Client {
	cfg.normalize()
	return &Client{
		primary:  primary,
		fallback: fallback,
		cache:    newQueryCache(cfg.CacheSize, cfg.CacheTTL, cfg.HitWeight, cfg.SweepInterval),
		debounce: newDebouncer(cfg.DebounceWindow),
		cfg:      cfg,
	}
}

// Close stops the cache's background sweep.
func (c *Client) Close() {
	c.cache.close()
}

// Fetch runs one retrieval through the full state machine:
// cache check, primary attempt with retry, keyword fallback, failure.
// It never returns an error for retrieval failures — those arrive as
// Success=false — only for invalid requests (the 400-equivalent path).
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.TopK <= 0 {
		req.TopK = c.cfg.DefaultTopK
	}

	key := req.cacheKey()
	if resp, ok := c.cache.get(key); ok {
		resp.Cached = true
		return resp, nil
	}

	resp, err := retryWithBackoff(ctx, c.cfg.Retry, func() (*Response, error) {
		return c.primary.Retrieve(ctx, req)
	})
	if err == nil {
		resp = c.filterConfidence(resp)
		c.cache.put(key, resp)
		return resp, nil
	}

	// A 4xx-equivalent means the request itself is bad; fallback would
	// fail the same way and the caller should hear about it.
	if errors.Is(err, types.ErrClient) {
		return nil, err
	}

	if strings.TrimSpace(req.Code) != "" && c.fallback != nil {
		if resp := c.fallbackRetrieve(req); resp != nil {
			resp = c.filterConfidence(resp)
			c.cache.put(key, resp)
			return resp, nil
		}
	}

	return &Response{
		Success:        false,
		Data:           []types.KnowledgeLink{},
		MatchingMethod: MethodNone,
		Error:          types.ErrExhausted.Error(),
		Details:        err.Error(),
	}, nil
}

// FetchDebounced schedules the query after the debounce window. A newer
// call within the window supersedes this one: its channel is closed
// without a value and the superseded query never executes. Only the last
// call in a burst runs.
func (c *Client) FetchDebounced(ctx context.Context, req Request) <-chan *Response {
	return c.debounce.schedule(func() *Response {
		resp, err := c.Fetch(ctx, req)
		if err != nil {
			return &Response{
				Success:        false,
				Data:           []types.KnowledgeLink{},
				MatchingMethod: MethodNone,
				Error:          err.Error(),
			}
		}
		return resp
	})
}

// fallbackRetrieve runs the single keyword-based attempt. A nil return
// means the fallback failed too and the query terminates fail-closed;
// finding nothing counts as failure, not as an empty success.
func (c *Client) fallbackRetrieve(req Request) *Response {
	lang, err := types.ParseLanguage(req.Language)
	if err != nil {
		return nil
	}
	results := c.fallback.Match(req.Code, lang, req.TopK)
	if len(results) == 0 {
		return nil
	}
	data := make([]types.KnowledgeLink, 0, len(results))
	for i := range results {
		data = append(data, results[i].Link())
	}
	return &Response{
		Success:        true,
		Data:           data,
		MatchingMethod: MethodKeywordBased,
	}
}

// filterConfidence drops results below the configured minimum band.
func (c *Client) filterConfidence(resp *Response) *Response {
	if c.cfg.MinConfidence == "" || resp == nil {
		return resp
	}
	kept := make([]types.KnowledgeLink, 0, len(resp.Data))
	for _, link := range resp.Data {
		if link.Confidence.AtLeast(c.cfg.MinConfidence) {
			kept = append(kept, link)
		}
	}
	resp.Data = kept
	return resp
}

// CacheStats reports cache size and cumulative hits for status reporting.
func (c *Client) CacheStats() (entries int, hits int) {
	return c.cache.stats()
}
