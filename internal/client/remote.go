package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

const (
	matchEndpoint         = "/api/match"
	defaultRemoteTimeout  = 10 * time.Second
	maxRemoteResponseSize = 1 << 20 // 1 MiB
)

// remoteRequest is the wire shape of a query sent to a remote matching
// service.
type remoteRequest struct {
	Code     string          `json:"code,omitempty"`
	Language string          `json:"language"`
	Features *remoteFeatures `json:"features,omitempty"`
	FilePath string          `json:"filePath,omitempty"`
	TopK     int             `json:"topK,omitempty"`
}

type remoteFeatures struct {
	SyntaxFlags   []string                `json:"syntaxFlags"`
	Patterns      []string                `json:"patterns"`
	APISignatures []string                `json:"apiSignatures"`
	Concepts      []string                `json:"concepts,omitempty"`
	Complexity    types.ComplexityMetrics `json:"complexity"`
	ContextHints  map[string]bool         `json:"contextHints,omitempty"`
}

// RemoteMatcher queries an HTTP matching service. HTTP 4xx responses are
// client errors and abort retrying; 5xx and transport failures are
// transient.
type RemoteMatcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteMatcher creates a matcher against the given base URL.
func NewRemoteMatcher(baseURL string) *RemoteMatcher {
	return &RemoteMatcher{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultRemoteTimeout,
		},
	}
}

func (m *RemoteMatcher) Retrieve(ctx context.Context, req Request) (*Response, error) {
	wire := remoteRequest{
		Code:     req.Code,
		Language: req.Language,
		FilePath: req.FilePath,
		TopK:     req.TopK,
	}
	if req.Features != nil {
		wire.Features = &remoteFeatures{
			SyntaxFlags:   req.Features.Syntax.Values(),
			Patterns:      req.Features.Patterns.Values(),
			APISignatures: req.Features.APIs.Values(),
			Concepts:      req.Features.Concepts.Values(),
			Complexity:    req.Features.Complexity,
			ContextHints:  req.Features.Context.Hints,
		}
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", types.ErrClient, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+matchEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", types.ErrClient, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrTransient, err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	if httpResp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxRemoteResponseSize))
		if httpResp.StatusCode < 500 {
			return nil, fmt.Errorf("%w: status %d: %s", types.ErrClient, httpResp.StatusCode, msg)
		}
		return nil, fmt.Errorf("%w: status %d: %s", types.ErrTransient, httpResp.StatusCode, msg)
	}

	var resp Response
	if err := json.NewDecoder(io.LimitReader(httpResp.Body, maxRemoteResponseSize)).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", types.ErrTransient, err)
	}
	if resp.MatchingMethod == "" {
		resp.MatchingMethod = MethodFeatureBased
	}
	if resp.Data == nil {
		resp.Data = []types.KnowledgeLink{}
	}
	return &resp, nil
}
