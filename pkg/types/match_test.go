package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceForScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  Confidence
	}{
		{name: "below medium", score: 0.39, want: ConfidenceLow},
		{name: "at medium threshold", score: 0.4, want: ConfidenceMedium},
		{name: "between bands", score: 0.55, want: ConfidenceMedium},
		{name: "at high threshold", score: 0.7, want: ConfidenceHigh},
		{name: "perfect score", score: 1.0, want: ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfidenceForScore(tt.score, 0.4, 0.7))
		})
	}
}

func TestConfidenceAtLeast(t *testing.T) {
	assert.True(t, ConfidenceHigh.AtLeast(ConfidenceLow))
	assert.True(t, ConfidenceMedium.AtLeast(ConfidenceMedium))
	assert.False(t, ConfidenceLow.AtLeast(ConfidenceMedium))
}

func TestMatchResultLink(t *testing.T) {
	entry := &KnowledgeEntry{
		ID:           "js-sec-3-1",
		Title:        "Async/Await",
		ChapterID:    "js-ch-3",
		ChapterTitle: "Asynchronous JavaScript",
		Language:     LangJavaScript,
	}
	result := MatchResult{
		Entry: entry,
		Score: 0.72,
		MatchedTags: MatchedTags{
			Patterns: []string{"async-await"},
			APIs:     []string{"fetch"},
		},
		Confidence:  ConfidenceHigh,
		MatchType:   MatchTypeFeatureBased,
		Explanation: "72% match: patterns [async-await]; apis [fetch]",
	}

	link := result.Link()

	assert.Equal(t, "js-sec-3-1", link.SectionID)
	assert.Equal(t, "Asynchronous JavaScript", link.ChapterTitle)
	assert.Equal(t, 0.72, link.RelevanceScore)
	assert.Equal(t, 0.72, link.FusedScore)
	assert.Equal(t, MatchTypeFeatureBased, link.MatchType)
	assert.ElementsMatch(t, []string{"async-await", "fetch"}, link.MatchedKeywords)
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		raw     string
		want    Language
		wantErr bool
	}{
		{raw: "javascript", want: LangJavaScript},
		{raw: "JS", want: LangJavaScript},
		{raw: "jsx", want: LangJavaScript},
		{raw: "TypeScript", want: LangTypeScript},
		{raw: "tsx", want: LangTypeScript},
		{raw: "py", want: LangPython},
		{raw: "ruby", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLanguage(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
