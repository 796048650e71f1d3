package client

import (
	"context"

	"github.com/Zehui-sudo/learnlink-mcp/internal/extractor"
	"github.com/Zehui-sudo/learnlink-mcp/internal/matcher"
	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// LocalMatcher runs the feature pipeline in-process: extract features from
// the snippet (unless the caller supplied them) and score against the
// catalog index.
type LocalMatcher struct {
	extractor *extractor.Extractor
	engine    *matcher.Engine
	cfg       matcher.Config
}

// NewLocalMatcher wires the extractor and engine into a retrieval path.
func NewLocalMatcher(ex *extractor.Extractor, eng *matcher.Engine, cfg matcher.Config) *LocalMatcher {
	return &LocalMatcher{extractor: ex, engine: eng, cfg: cfg}
}

func (m *LocalMatcher) Retrieve(ctx context.Context, req Request) (*Response, error) {
	lang, langErr := types.ParseLanguage(req.Language)

	features := req.Features
	if features == nil {
		if langErr != nil {
			// No features to fall back on and no usable language.
			return nil, langErr
		}
		extracted, err := m.extractor.Extract(ctx, req.Code, req.Language, extractor.DefaultOptions())
		if err != nil {
			return nil, err
		}
		features = extracted
	} else if langErr != nil {
		// Caller-supplied features keep the query alive even when the
		// language tag is unknown; an unknown language simply matches
		// nothing in the catalog.
		return &Response{
			Success:        true,
			Data:           []types.KnowledgeLink{},
			MatchingMethod: MethodFeatureBased,
		}, nil
	}

	cfg := m.cfg
	if req.TopK > 0 {
		cfg.TopK = req.TopK
	}
	results := m.engine.Match(features, lang, cfg)

	data := make([]types.KnowledgeLink, 0, len(results))
	for i := range results {
		data = append(data, results[i].Link())
	}
	return &Response{
		Success:        true,
		Data:           data,
		MatchingMethod: MethodFeatureBased,
	}, nil
}
