package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

func testEntry(id string, lang types.Language, mutate func(*types.KnowledgeEntry)) *types.KnowledgeEntry {
	e := &types.KnowledgeEntry{
		ID:         id,
		Title:      "Entry " + id,
		ChapterID:  "ch-1",
		Language:   lang,
		Difficulty: types.DifficultyBasic,
		Tags: types.EntryTags{
			Syntax:   types.NewTagSet(),
			Patterns: types.NewTagSet(),
			APIs:     types.NewTagSet(),
			Concepts: types.NewTagSet(),
		},
	}
	if mutate != nil {
		mutate(e)
	}
	return e
}

func TestBuild(t *testing.T) {
	entries := []*types.KnowledgeEntry{
		testEntry("a", types.LangJavaScript, func(e *types.KnowledgeEntry) {
			e.Tags.Syntax.Add("arrow-function")
			e.Tags.Patterns.Add("async-await")
		}),
		testEntry("b", types.LangJavaScript, func(e *types.KnowledgeEntry) {
			e.Tags.APIs.Add("fetch")
			e.Dependencies = []string{"a"}
		}),
		testEntry("c", types.LangPython, func(e *types.KnowledgeEntry) {
			e.Tags.Patterns.Add("comprehension")
		}),
	}

	idx, skipped := Build(entries)
	assert.Empty(t, skipped)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, "a", idx.Entry("a").ID)
	assert.Nil(t, idx.Entry("missing"))
	assert.Len(t, idx.ForLanguage(types.LangJavaScript), 2)
	assert.Len(t, idx.ForLanguage(types.LangPython), 1)
}

func TestBuild_SkipsDuplicatesAndDanglingRefs(t *testing.T) {
	entries := []*types.KnowledgeEntry{
		testEntry("a", types.LangJavaScript, nil),
		testEntry("a", types.LangJavaScript, nil),
		testEntry("b", types.LangJavaScript, func(e *types.KnowledgeEntry) {
			e.Dependencies = []string{"ghost"}
		}),
		testEntry("c", types.LangJavaScript, func(e *types.KnowledgeEntry) {
			e.Related = []string{"a"}
		}),
	}

	idx, skipped := Build(entries)
	assert.Equal(t, 2, idx.Len())
	require.Len(t, skipped, 2)
	assert.Equal(t, "a", skipped[0].EntryID)
	assert.Contains(t, skipped[0].Message, "duplicate")
	assert.Equal(t, "b", skipped[1].EntryID)
	assert.Contains(t, skipped[1].Message, "ghost")
}

func TestCandidates(t *testing.T) {
	entries := []*types.KnowledgeEntry{
		testEntry("async", types.LangJavaScript, func(e *types.KnowledgeEntry) {
			e.Tags.Patterns.Add("async-await")
			e.Tags.APIs.Add("fetch")
		}),
		testEntry("loops", types.LangJavaScript, func(e *types.KnowledgeEntry) {
			e.Tags.Syntax.Add("for-of-loop")
		}),
		testEntry("py-async", types.LangPython, func(e *types.KnowledgeEntry) {
			e.Tags.Patterns.Add("async-await")
		}),
	}
	idx, skipped := Build(entries)
	require.Empty(t, skipped)

	features := types.EmptyFeatures(types.LangJavaScript)
	features.Patterns.Add("async-await")
	features.APIs.Add("window.fetch") // normalized to "fetch" at lookup

	got := idx.Candidates(types.LangJavaScript, features)
	require.Len(t, got, 1, "language is a hard filter and hits deduplicate")
	assert.Equal(t, "async", got[0].ID)
}

func TestCandidates_InsertionOrder(t *testing.T) {
	entries := []*types.KnowledgeEntry{
		testEntry("first", types.LangJavaScript, func(e *types.KnowledgeEntry) {
			e.Tags.Syntax.Add("if-statement")
		}),
		testEntry("second", types.LangJavaScript, func(e *types.KnowledgeEntry) {
			e.Tags.Patterns.Add("callback")
		}),
		testEntry("third", types.LangJavaScript, func(e *types.KnowledgeEntry) {
			e.Tags.Syntax.Add("if-statement")
			e.Tags.Patterns.Add("callback")
		}),
	}
	idx, _ := Build(entries)

	features := types.EmptyFeatures(types.LangJavaScript)
	features.Syntax.Add("if-statement")
	features.Patterns.Add("callback")

	got := idx.Candidates(types.LangJavaScript, features)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
	assert.Equal(t, "third", got[2].ID)
}

func TestCandidates_NoTags(t *testing.T) {
	idx, _ := Build([]*types.KnowledgeEntry{testEntry("a", types.LangJavaScript, nil)})

	got := idx.Candidates(types.LangJavaScript, types.EmptyFeatures(types.LangJavaScript))
	assert.Empty(t, got)
}

func TestStats(t *testing.T) {
	entries := []*types.KnowledgeEntry{
		testEntry("a", types.LangJavaScript, nil),
		testEntry("b", types.LangJavaScript, func(e *types.KnowledgeEntry) {
			e.Difficulty = types.DifficultyAdvanced
		}),
		testEntry("c", types.LangPython, nil),
	}
	idx, _ := Build(entries)

	stats := idx.Stats()
	assert.Equal(t, 3, stats.Entries)
	assert.Equal(t, 2, stats.ByLanguage[types.LangJavaScript])
	assert.Equal(t, 1, stats.ByLanguage[types.LangPython])
	assert.Equal(t, 2, stats.ByDifficulty[types.DifficultyBasic])
	assert.Equal(t, 1, stats.ByDifficulty[types.DifficultyAdvanced])
}
