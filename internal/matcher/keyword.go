package matcher

import (
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/Zehui-sudo/learnlink-mcp/internal/catalog"
	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// KeywordMatcher is the degraded fallback strategy: it drops the feature
// payload entirely and scores entries by raw token overlap between the code
// text and each entry's title and tags. Used when feature-based matching is
// unavailable or has failed. The index pointer is swapped atomically on
// catalog reload, so Match and SetIndex may run concurrently.
type KeywordMatcher struct {
	index atomic.Pointer[catalog.Index]
}

// NewKeywordMatcher creates a keyword matcher over the given index.
func NewKeywordMatcher(index *catalog.Index) *KeywordMatcher {
	m := &KeywordMatcher{}
	m.index.Store(index)
	return m
}

// SetIndex swaps in a freshly rebuilt index after a catalog reload.
func (m *KeywordMatcher) SetIndex(index *catalog.Index) { m.index.Store(index) }

var tokenRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]+`)

// jsNoise are tokens too common in code to carry signal.
var jsNoise = map[string]bool{
	"const": true, "let": true, "var": true, "function": true, "return": true,
	"if": true, "else": true, "for": true, "while": true, "new": true,
	"true": true, "false": true, "null": true, "undefined": true, "none": true,
	"def": true, "import": true, "from": true, "self": true, "this": true,
}

// Match scores entries for the query language by token overlap and returns
// a ranked top-K marked with the keyword match type.
func (m *KeywordMatcher) Match(code string, lang types.Language, topK int) []types.MatchResult {
	idx := m.index.Load()
	if idx == nil || topK <= 0 {
		return nil
	}

	queryTokens := Tokenize(code)
	if len(queryTokens) == 0 {
		return nil
	}

	results := make([]types.MatchResult, 0, 8)
	for _, entry := range idx.ForLanguage(lang) {
		entryTokens := entryTokenSet(entry)
		score, hits := overlap(queryTokens, entryTokens)
		if score <= 0 {
			continue
		}
		results = append(results, types.MatchResult{
			Entry:       entry,
			Score:       score,
			MatchedTags: types.MatchedTags{APIs: hits},
			Confidence:  types.ConfidenceForScore(score, 0.4, 0.7),
			MatchType:   types.MatchTypeKeyword,
			Explanation: "keyword overlap: " + strings.Join(hits, ", "),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Tokenize extracts lower-cased identifier-like tokens from source text,
// dropping keywords too common to discriminate.
func Tokenize(code string) types.TagSet {
	tokens := types.NewTagSet()
	for _, tok := range tokenRe.FindAllString(code, -1) {
		tok = strings.ToLower(tok)
		if jsNoise[tok] {
			continue
		}
		tokens.Add(tok)
	}
	return tokens
}

// entryTokenSet builds the match surface of one entry: title words plus
// tag fragments across all dimensions.
func entryTokenSet(entry *types.KnowledgeEntry) types.TagSet {
	tokens := types.NewTagSet()
	for _, tok := range tokenRe.FindAllString(strings.ToLower(entry.Title), -1) {
		tokens.Add(tok)
	}
	for _, dim := range types.Dimensions {
		for tag := range entry.Tags.Dimension(dim) {
			// Tags split into fragments: "async-await" matches "async".
			for _, frag := range strings.FieldsFunc(tag, func(r rune) bool {
				return r == '-' || r == '.' || r == '_'
			}) {
				tokens.Add(frag)
			}
			tokens.Add(tag)
		}
	}
	return tokens
}

// overlap scores token sets with the overlap coefficient,
// |intersection| / min(|a|, |b|), bounded to [0,1].
func overlap(query, entry types.TagSet) (float64, []string) {
	if len(query) == 0 || len(entry) == 0 {
		return 0, nil
	}
	var hits []string
	for tok := range query {
		if _, ok := entry[tok]; ok {
			hits = append(hits, tok)
		}
	}
	if len(hits) == 0 {
		return 0, nil
	}
	sort.Strings(hits)

	smaller := len(query)
	if len(entry) < smaller {
		smaller = len(entry)
	}
	return float64(len(hits)) / float64(smaller), hits
}
