package matcher

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/Zehui-sudo/learnlink-mcp/internal/catalog"
	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// Weights are the per-dimension contributions to the combined score.
// Patterns and APIs dominate because they are the most discriminating
// signal of what the code does; syntax is a weaker secondary signal and
// concepts are heuristic and least reliable.
type Weights struct {
	Syntax   float64
	Patterns float64
	APIs     float64
	Concepts float64
}

// DefaultWeights returns the empirically tuned default weights.
func DefaultWeights() Weights {
	return Weights{Syntax: 0.25, Patterns: 0.35, APIs: 0.30, Concepts: 0.10}
}

// ForDimension returns the weight of one dimension.
func (w Weights) ForDimension(d types.Dimension) float64 {
	switch d {
	case types.DimSyntax:
		return w.Syntax
	case types.DimPatterns:
		return w.Patterns
	case types.DimAPIs:
		return w.APIs
	case types.DimConcepts:
		return w.Concepts
	default:
		return 0
	}
}

// Config controls one match operation. The thresholds are empirical
// defaults, kept configurable rather than derived.
type Config struct {
	Weights             Weights
	MinScore            float64 // discard candidates scoring below this
	TopK                int
	IncludeDependencies bool    // union in unresolved prerequisites
	MediumConfidenceAt  float64 // score >= this -> medium
	HighConfidenceAt    float64 // score >= this -> high
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() Config {
	return Config{
		Weights:            DefaultWeights(),
		MinScore:           0.3,
		TopK:               5,
		MediumConfidenceAt: 0.4,
		HighConfidenceAt:   0.7,
	}
}

// normalize fills zero values with defaults.
func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Weights == (Weights{}) {
		c.Weights = d.Weights
	}
	if c.MinScore <= 0 {
		c.MinScore = d.MinScore
	}
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.MediumConfidenceAt <= 0 {
		c.MediumConfidenceAt = d.MediumConfidenceAt
	}
	if c.HighConfidenceAt <= 0 {
		c.HighConfidenceAt = d.HighConfidenceAt
	}
}

// Engine scores knowledge entries against extracted code features.
// The index pointer is swapped atomically on catalog reload, so Match and
// SetIndex are safe to call concurrently; each Match runs entirely against
// the index it loaded at entry.
type Engine struct {
	index atomic.Pointer[catalog.Index]
}

// NewEngine creates a matching engine over the given index.
func NewEngine(index *catalog.Index) *Engine {
	e := &Engine{}
	e.index.Store(index)
	return e
}

// SetIndex swaps in a freshly rebuilt index after a catalog reload.
func (e *Engine) SetIndex(index *catalog.Index) { e.index.Store(index) }

// Match scores every entry sharing at least one tag with the query
// features and returns a ranked, confidence-bucketed top-K. Language is a
// hard filter, not a scored dimension. An empty catalog or an empty query
// yields an empty slice, never an error.
func (e *Engine) Match(features *types.CodeFeatures, lang types.Language, cfg Config) []types.MatchResult {
	cfg.normalize()

	idx := e.index.Load()
	if idx == nil || features == nil {
		return nil
	}

	// Query API tags are normalized the same way entry tags were at load
	// time, so both sides of the Jaccard computation agree.
	queryAPIs := types.NewTagSet()
	for tag := range features.APIs {
		queryAPIs.Add(types.NormalizeAPITag(tag))
	}

	candidates := idx.Candidates(lang, features)
	results := make([]types.MatchResult, 0, len(candidates))

	for _, entry := range candidates {
		var score float64
		var matched types.MatchedTags

		for _, dim := range types.Dimensions {
			query := features.Dimension(dim)
			if dim == types.DimAPIs {
				query = queryAPIs
			}
			sim, hits := Jaccard(query, entry.Tags.Dimension(dim))
			score += cfg.Weights.ForDimension(dim) * sim

			switch dim {
			case types.DimSyntax:
				matched.Syntax = hits
			case types.DimPatterns:
				matched.Patterns = hits
			case types.DimAPIs:
				matched.APIs = hits
			case types.DimConcepts:
				matched.Concepts = hits
			}
		}

		if score < cfg.MinScore {
			continue
		}

		confidence := types.ConfidenceForScore(score, cfg.MediumConfidenceAt, cfg.HighConfidenceAt)
		results = append(results, types.MatchResult{
			Entry:       entry,
			Score:       score,
			MatchedTags: matched,
			Confidence:  confidence,
			MatchType:   types.MatchTypeFeatureBased,
			Explanation: explain(score, matched),
		})
	}

	// Stable sort: equal scores retain catalog insertion order, which
	// Candidates already provides.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > cfg.TopK {
		results = results[:cfg.TopK]
	}

	if cfg.IncludeDependencies {
		results = appendPrerequisites(idx, results)
	}

	return results
}

// appendPrerequisites unions in each result's unresolved dependencies as
// zero-score, low-confidence entries, deduplicated against the selection.
func appendPrerequisites(idx *catalog.Index, results []types.MatchResult) []types.MatchResult {
	selected := make(map[string]bool, len(results))
	for _, r := range results {
		selected[r.Entry.ID] = true
	}

	out := results
	for _, r := range results {
		for _, depID := range r.Entry.Dependencies {
			if selected[depID] {
				continue
			}
			dep := idx.Entry(depID)
			if dep == nil {
				continue
			}
			selected[depID] = true
			out = append(out, types.MatchResult{
				Entry:        dep,
				Score:        0,
				Confidence:   types.ConfidenceLow,
				MatchType:    types.MatchTypeFeatureBased,
				Explanation:  fmt.Sprintf("prerequisite of %q", r.Entry.Title),
				Prerequisite: true,
			})
		}
	}
	return out
}

// Jaccard computes set-overlap similarity, |intersection| / |union|,
// defined as 0 when both sets are empty. It also returns the sorted
// intersection for match explanations.
func Jaccard(a, b types.TagSet) (float64, []string) {
	if len(a) == 0 && len(b) == 0 {
		return 0, nil
	}

	var hits []string
	for tag := range a {
		if _, ok := b[tag]; ok {
			hits = append(hits, tag)
		}
	}
	sort.Strings(hits)

	union := len(a) + len(b) - len(hits)
	if union == 0 {
		return 0, nil
	}
	return float64(len(hits)) / float64(union), hits
}

// explain builds a deterministic, human-readable description of which tags
// matched in which dimensions, with the rounded percentage score.
func explain(score float64, matched types.MatchedTags) string {
	var parts []string
	if len(matched.Patterns) > 0 {
		parts = append(parts, "patterns ["+strings.Join(matched.Patterns, ", ")+"]")
	}
	if len(matched.APIs) > 0 {
		parts = append(parts, "apis ["+strings.Join(matched.APIs, ", ")+"]")
	}
	if len(matched.Syntax) > 0 {
		parts = append(parts, "syntax ["+strings.Join(matched.Syntax, ", ")+"]")
	}
	if len(matched.Concepts) > 0 {
		parts = append(parts, "concepts ["+strings.Join(matched.Concepts, ", ")+"]")
	}

	pct := int(math.Round(score * 100))
	if len(parts) == 0 {
		return fmt.Sprintf("%d%% match", pct)
	}
	return fmt.Sprintf("%d%% match: %s", pct, strings.Join(parts, "; "))
}
