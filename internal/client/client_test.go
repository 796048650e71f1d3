package client

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// fakeMatcher scripts the primary retrieval path.
type fakeMatcher struct {
	mu    sync.Mutex
	calls int
	resp  *Response
	err   error
}

func (f *fakeMatcher) Retrieve(ctx context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return copyResponse(f.resp), nil
}

func (f *fakeMatcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeKeyword scripts the fallback path.
type fakeKeyword struct {
	mu      sync.Mutex
	calls   int
	results []types.MatchResult
}

func (f *fakeKeyword) Match(code string, lang types.Language, topK int) []types.MatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.results
}

func (f *fakeKeyword) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Retry = RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
	cfg.DebounceWindow = 20 * time.Millisecond
	return cfg
}

func okResponse(ids ...string) *Response {
	data := make([]types.KnowledgeLink, 0, len(ids))
	for _, id := range ids {
		data = append(data, types.KnowledgeLink{SectionID: id, Confidence: types.ConfidenceHigh})
	}
	return &Response{Success: true, Data: data, MatchingMethod: MethodFeatureBased}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{name: "code and language", req: Request{Code: "x", Language: "javascript"}},
		{name: "features and language", req: Request{Features: types.EmptyFeatures(types.LangPython), Language: "python"}},
		{name: "missing language", req: Request{Code: "x"}, wantErr: true},
		{name: "missing code and features", req: Request{Language: "javascript"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrClient)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFetch_InvalidRequest(t *testing.T) {
	c := New(&fakeMatcher{}, &fakeKeyword{}, fastConfig())
	defer c.Close()

	_, err := c.Fetch(context.Background(), Request{Code: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingLanguage)

	_, err = c.Fetch(context.Background(), Request{Language: "javascript"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
}

func TestFetch_PrimarySuccess(t *testing.T) {
	primary := &fakeMatcher{resp: okResponse("js-sec-1")}
	c := New(primary, &fakeKeyword{}, fastConfig())
	defer c.Close()

	resp, err := c.Fetch(context.Background(), Request{Code: "fetch(url)", Language: "javascript"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, MethodFeatureBased, resp.MatchingMethod)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "js-sec-1", resp.Data[0].SectionID)
	assert.False(t, resp.Cached)
	assert.Equal(t, 1, primary.callCount())
}

func TestFetch_CacheHit(t *testing.T) {
	primary := &fakeMatcher{resp: okResponse("js-sec-1")}
	c := New(primary, &fakeKeyword{}, fastConfig())
	defer c.Close()

	req := Request{Code: "fetch(url)", Language: "javascript"}

	first, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, primary.callCount(), "identical query must be served from cache")
}

func TestFetch_DistinctQueriesMiss(t *testing.T) {
	primary := &fakeMatcher{resp: okResponse("js-sec-1")}
	c := New(primary, &fakeKeyword{}, fastConfig())
	defer c.Close()

	_, err := c.Fetch(context.Background(), Request{Code: "fetch(a)", Language: "javascript"})
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), Request{Code: "fetch(b)", Language: "javascript"})
	require.NoError(t, err)

	assert.Equal(t, 2, primary.callCount())
}

func TestFetch_RetriesTransientErrors(t *testing.T) {
	primary := &fakeMatcher{err: fmt.Errorf("%w: connection refused", types.ErrTransient)}
	fallback := &fakeKeyword{results: []types.MatchResult{{
		Entry: &types.KnowledgeEntry{ID: "kw-1", Title: "Keyword Hit"},
		Score: 0.5,
	}}}
	c := New(primary, fallback, fastConfig())
	defer c.Close()

	resp, err := c.Fetch(context.Background(), Request{Code: "fetch(url)", Language: "javascript"})
	require.NoError(t, err)

	assert.Equal(t, 2, primary.callCount(), "transient failures exhaust the retry budget")
	assert.Equal(t, 1, fallback.callCount(), "exactly one fallback attempt")
	assert.True(t, resp.Success)
	assert.Equal(t, MethodKeywordBased, resp.MatchingMethod)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "kw-1", resp.Data[0].SectionID)
}

func TestFetch_ClientErrorAbortsWithoutFallback(t *testing.T) {
	primary := &fakeMatcher{err: fmt.Errorf("%w: status 400", types.ErrClient)}
	fallback := &fakeKeyword{}
	c := New(primary, fallback, fastConfig())
	defer c.Close()

	_, err := c.Fetch(context.Background(), Request{Code: "fetch(url)", Language: "javascript"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrClient)
	assert.Equal(t, 1, primary.callCount(), "client errors are not retried")
	assert.Equal(t, 0, fallback.callCount())
}

func TestFetch_FailsClosedWithoutCode(t *testing.T) {
	primary := &fakeMatcher{err: fmt.Errorf("%w: boom", types.ErrTransient)}
	fallback := &fakeKeyword{}
	c := New(primary, fallback, fastConfig())
	defer c.Close()

	req := Request{Language: "javascript", Features: types.EmptyFeatures(types.LangJavaScript)}
	resp, err := c.Fetch(context.Background(), req)
	require.NoError(t, err, "retrieval failure is a response, not an error")

	assert.False(t, resp.Success)
	assert.Empty(t, resp.Data)
	assert.NotNil(t, resp.Data, "data is always present so callers can render it")
	assert.Equal(t, MethodNone, resp.MatchingMethod)
	assert.Equal(t, types.ErrExhausted.Error(), resp.Error)
	assert.Equal(t, 0, fallback.callCount(), "fallback needs raw code")
}

func TestFetch_EmptyFallbackFailsClosed(t *testing.T) {
	primary := &fakeMatcher{err: fmt.Errorf("%w: boom", types.ErrTransient)}
	fallback := &fakeKeyword{} // finds nothing
	c := New(primary, fallback, fastConfig())
	defer c.Close()

	resp, err := c.Fetch(context.Background(), Request{Code: "fetch(url)", Language: "javascript"})
	require.NoError(t, err)

	assert.Equal(t, 1, fallback.callCount(), "exactly one fallback attempt")
	assert.False(t, resp.Success, "an empty keyword result set is a fallback failure")
	assert.Empty(t, resp.Data)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, MethodNone, resp.MatchingMethod)
	assert.Equal(t, types.ErrExhausted.Error(), resp.Error)
}

func TestFetch_ConfidenceFilter(t *testing.T) {
	primary := &fakeMatcher{resp: &Response{
		Success:        true,
		MatchingMethod: MethodFeatureBased,
		Data: []types.KnowledgeLink{
			{SectionID: "high", Confidence: types.ConfidenceHigh},
			{SectionID: "low", Confidence: types.ConfidenceLow},
			{SectionID: "medium", Confidence: types.ConfidenceMedium},
		},
	}}

	cfg := fastConfig()
	cfg.MinConfidence = types.ConfidenceMedium
	c := New(primary, &fakeKeyword{}, cfg)
	defer c.Close()

	resp, err := c.Fetch(context.Background(), Request{Code: "x()", Language: "javascript"})
	require.NoError(t, err)

	require.Len(t, resp.Data, 2)
	assert.Equal(t, "high", resp.Data[0].SectionID)
	assert.Equal(t, "medium", resp.Data[1].SectionID)
}

func TestFetch_DefaultTopK(t *testing.T) {
	var seen int
	observer := matcherFunc(func(ctx context.Context, req Request) (*Response, error) {
		seen = req.TopK
		return okResponse(), nil
	})
	c := New(observer, &fakeKeyword{}, fastConfig())
	defer c.Close()

	_, err := c.Fetch(context.Background(), Request{Code: "x()", Language: "javascript"})
	require.NoError(t, err)
	assert.Equal(t, 5, seen)
}

type matcherFunc func(ctx context.Context, req Request) (*Response, error)

func (f matcherFunc) Retrieve(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

func TestFetchDebounced_LastCallWins(t *testing.T) {
	primary := &fakeMatcher{resp: okResponse("js-sec-1")}
	c := New(primary, &fakeKeyword{}, fastConfig())
	defer c.Close()

	ctx := context.Background()
	ch1 := c.FetchDebounced(ctx, Request{Code: "a()", Language: "javascript"})
	ch2 := c.FetchDebounced(ctx, Request{Code: "b()", Language: "javascript"})
	ch3 := c.FetchDebounced(ctx, Request{Code: "c()", Language: "javascript"})

	// Superseded calls are discarded: their channels close without a value.
	_, ok := <-ch1
	assert.False(t, ok)
	_, ok = <-ch2
	assert.False(t, ok)

	resp, ok := <-ch3
	require.True(t, ok)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, primary.callCount(), "only the last call in the burst executes")
}

func TestFetchDebounced_SeparatedCallsBothRun(t *testing.T) {
	primary := &fakeMatcher{resp: okResponse("js-sec-1")}
	cfg := fastConfig()
	cfg.DebounceWindow = 5 * time.Millisecond
	c := New(primary, &fakeKeyword{}, cfg)
	defer c.Close()

	ctx := context.Background()
	resp1, ok := <-c.FetchDebounced(ctx, Request{Code: "a()", Language: "javascript"})
	require.True(t, ok)
	assert.True(t, resp1.Success)

	resp2, ok := <-c.FetchDebounced(ctx, Request{Code: "b()", Language: "javascript"})
	require.True(t, ok)
	assert.True(t, resp2.Success)

	assert.Equal(t, 2, primary.callCount())
}

func TestCacheStats(t *testing.T) {
	primary := &fakeMatcher{resp: okResponse("js-sec-1")}
	c := New(primary, &fakeKeyword{}, fastConfig())
	defer c.Close()

	req := Request{Code: "x()", Language: "javascript"}
	_, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), req)
	require.NoError(t, err)

	entries, hits := c.CacheStats()
	assert.Equal(t, 1, entries)
	assert.Equal(t, 1, hits)
}

func TestConfigNormalizeDefaults(t *testing.T) {
	var cfg Config
	cfg.normalize()

	d := DefaultConfig()
	assert.Equal(t, d.CacheSize, cfg.CacheSize)
	assert.Equal(t, d.CacheTTL, cfg.CacheTTL)
	assert.Equal(t, d.HitWeight, cfg.HitWeight)
	assert.Equal(t, d.Retry.MaxAttempts, cfg.Retry.MaxAttempts)
	assert.Equal(t, d.DebounceWindow, cfg.DebounceWindow)
	assert.Equal(t, d.DefaultTopK, cfg.DefaultTopK)
}

func TestFetch_ContextCancellation(t *testing.T) {
	primary := &fakeMatcher{err: fmt.Errorf("%w: connection reset", types.ErrTransient)}
	fallback := &fakeKeyword{results: []types.MatchResult{{
		Entry: &types.KnowledgeEntry{ID: "kw-1", Title: "Keyword Hit"},
		Score: 0.5,
	}}}
	c := New(primary, fallback, fastConfig())
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A canceled context stops retrying; with code present the keyword
	// fallback still answers.
	resp, err := c.Fetch(ctx, Request{Code: "x()", Language: "javascript"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, MethodKeywordBased, resp.MatchingMethod)
	assert.Equal(t, 1, primary.callCount())
}
