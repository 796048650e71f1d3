package types

// Confidence buckets a continuous relevance score into a coarse band.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// AtLeast reports whether c meets or exceeds the given minimum band.
func (c Confidence) AtLeast(min Confidence) bool {
	return c.rank() >= min.rank()
}

func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// ConfidenceForScore bands a score using the given thresholds.
func ConfidenceForScore(score, mediumAt, highAt float64) Confidence {
	switch {
	case score >= highAt:
		return ConfidenceHigh
	case score >= mediumAt:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// MatchType identifies which strategy produced a result.
type MatchType string

const (
	MatchTypeFeatureBased MatchType = "feature-based"
	MatchTypeKeyword      MatchType = "keyword"
	MatchTypeSemantic     MatchType = "semantic"
	MatchTypeHybrid       MatchType = "hybrid"
)

// MatchedTags records which query tags matched the entry, per dimension.
type MatchedTags struct {
	Syntax   []string
	Patterns []string
	APIs     []string
	Concepts []string
}

// Total returns the number of matched tags across all dimensions.
func (m MatchedTags) Total() int {
	return len(m.Syntax) + len(m.Patterns) + len(m.APIs) + len(m.Concepts)
}

// MatchResult is a scored catalog entry. Derived and transient; never stored.
type MatchResult struct {
	Entry       *KnowledgeEntry
	Score       float64 // Combined weighted score in [0,1]
	MatchedTags MatchedTags
	Confidence  Confidence
	MatchType   MatchType
	Explanation string
	// Prerequisite marks entries pulled in as unresolved dependencies of a
	// scored result rather than matched on their own merit.
	Prerequisite bool
}

// KnowledgeLink is the wire-level shape of one retrieval result.
type KnowledgeLink struct {
	SectionID       string     `json:"sectionId"`
	Title           string     `json:"title"`
	ChapterID       string     `json:"chapterId"`
	ChapterTitle    string     `json:"chapterTitle"`
	Language        Language   `json:"language"`
	RelevanceScore  float64    `json:"relevanceScore"`
	FusedScore      float64    `json:"fusedScore"`
	MatchType       MatchType  `json:"matchType"`
	Confidence      Confidence `json:"confidence"`
	MatchedKeywords []string   `json:"matchedKeywords,omitempty"`
	Explanation     string     `json:"explanation,omitempty"`
}

// Link converts a match result to its wire shape.
func (r *MatchResult) Link() KnowledgeLink {
	matched := make([]string, 0, r.MatchedTags.Total())
	matched = append(matched, r.MatchedTags.Syntax...)
	matched = append(matched, r.MatchedTags.Patterns...)
	matched = append(matched, r.MatchedTags.APIs...)
	matched = append(matched, r.MatchedTags.Concepts...)

	return KnowledgeLink{
		SectionID:       r.Entry.ID,
		Title:           r.Entry.Title,
		ChapterID:       r.Entry.ChapterID,
		ChapterTitle:    r.Entry.ChapterTitle,
		Language:        r.Entry.Language,
		RelevanceScore:  r.Score,
		FusedScore:      r.Score,
		MatchType:       r.MatchType,
		Confidence:      r.Confidence,
		MatchedKeywords: matched,
		Explanation:     r.Explanation,
	}
}
