package catalog

import (
	"fmt"
	"sort"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// Index serves fast tag-to-entry lookups over the loaded catalog. It is
// read-only after Build and safe to share across concurrent queries without
// synchronization. The index is rebuilt wholesale on catalog reload; there
// are no incremental updates.
type Index struct {
	entries []*types.KnowledgeEntry // valid entries in catalog insertion order
	ord     map[string]int          // entry ID -> insertion ordinal, for stable ties

	byID         map[string]*types.KnowledgeEntry
	bySyntax     map[string][]*types.KnowledgeEntry
	byPattern    map[string][]*types.KnowledgeEntry
	byAPI        map[string][]*types.KnowledgeEntry
	byConcept    map[string][]*types.KnowledgeEntry
	byLanguage   map[types.Language][]*types.KnowledgeEntry
	byDifficulty map[types.Difficulty][]*types.KnowledgeEntry
}

// Build constructs the index from loaded entries. Entries with duplicate
// IDs or dangling dependency/related references are skipped and recorded;
// validation problems are never fatal to the build.
func Build(entries []*types.KnowledgeEntry) (*Index, []ValidationError) {
	var skipped []ValidationError

	idx := &Index{
		entries:      make([]*types.KnowledgeEntry, 0, len(entries)),
		ord:          make(map[string]int, len(entries)),
		byID:         make(map[string]*types.KnowledgeEntry, len(entries)),
		bySyntax:     make(map[string][]*types.KnowledgeEntry),
		byPattern:    make(map[string][]*types.KnowledgeEntry),
		byAPI:        make(map[string][]*types.KnowledgeEntry),
		byConcept:    make(map[string][]*types.KnowledgeEntry),
		byLanguage:   make(map[types.Language][]*types.KnowledgeEntry),
		byDifficulty: make(map[types.Difficulty][]*types.KnowledgeEntry),
	}

	// First pass: the ID universe, for reference resolution.
	ids := make(map[string]bool, len(entries))
	for _, e := range entries {
		ids[e.ID] = true
	}

	for _, e := range entries {
		if err := e.Validate(); err != nil {
			skipped = append(skipped, ValidationError{EntryID: e.ID, Message: err.Error()})
			continue
		}
		if _, dup := idx.byID[e.ID]; dup {
			skipped = append(skipped, ValidationError{EntryID: e.ID, Message: "duplicate entry ID"})
			continue
		}
		if ref := danglingRef(e, ids); ref != "" {
			skipped = append(skipped, ValidationError{
				EntryID: e.ID,
				Message: fmt.Sprintf("reference to unknown entry %q", ref),
			})
			continue
		}

		idx.ord[e.ID] = len(idx.entries)
		idx.entries = append(idx.entries, e)
		idx.byID[e.ID] = e

		for tag := range e.Tags.Syntax {
			idx.bySyntax[tag] = append(idx.bySyntax[tag], e)
		}
		for tag := range e.Tags.Patterns {
			idx.byPattern[tag] = append(idx.byPattern[tag], e)
		}
		for tag := range e.Tags.APIs {
			idx.byAPI[tag] = append(idx.byAPI[tag], e)
		}
		for tag := range e.Tags.Concepts {
			idx.byConcept[tag] = append(idx.byConcept[tag], e)
		}
		idx.byLanguage[e.Language] = append(idx.byLanguage[e.Language], e)
		idx.byDifficulty[e.Difficulty] = append(idx.byDifficulty[e.Difficulty], e)
	}

	return idx, skipped
}

// danglingRef returns the first dependency or related ID not present in the
// catalog, or "".
func danglingRef(e *types.KnowledgeEntry, ids map[string]bool) string {
	for _, dep := range e.Dependencies {
		if !ids[dep] {
			return dep
		}
	}
	for _, rel := range e.Related {
		if !ids[rel] {
			return rel
		}
	}
	return ""
}

// Entry returns the entry with the given ID, or nil.
func (idx *Index) Entry(id string) *types.KnowledgeEntry {
	return idx.byID[id]
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int { return len(idx.entries) }

// Entries returns all indexed entries in catalog insertion order.
func (idx *Index) Entries() []*types.KnowledgeEntry { return idx.entries }

// ForLanguage returns all entries for a language in insertion order.
func (idx *Index) ForLanguage(lang types.Language) []*types.KnowledgeEntry {
	return idx.byLanguage[lang]
}

// ForDifficulty returns all entries with the given difficulty.
func (idx *Index) ForDifficulty(d types.Difficulty) []*types.KnowledgeEntry {
	return idx.byDifficulty[d]
}

// postings returns the inverted map for a dimension.
func (idx *Index) postings(d types.Dimension) map[string][]*types.KnowledgeEntry {
	switch d {
	case types.DimSyntax:
		return idx.bySyntax
	case types.DimPatterns:
		return idx.byPattern
	case types.DimAPIs:
		return idx.byAPI
	case types.DimConcepts:
		return idx.byConcept
	default:
		return nil
	}
}

// Candidates unions the posting lists of every query tag across all four
// dimensions, restricted to the query language, deduplicated, and returned
// in catalog insertion order. Lookup is O(1) per tag and O(k) to union k
// query tags.
func (idx *Index) Candidates(lang types.Language, features *types.CodeFeatures) []*types.KnowledgeEntry {
	seen := make(map[string]bool)
	var out []*types.KnowledgeEntry

	for _, dim := range types.Dimensions {
		tags := features.Dimension(dim)
		postings := idx.postings(dim)
		for tag := range tags {
			key := tag
			if dim == types.DimAPIs {
				key = types.NormalizeAPITag(tag)
			}
			for _, e := range postings[key] {
				if e.Language != lang || seen[e.ID] {
					continue
				}
				seen[e.ID] = true
				out = append(out, e)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return idx.ord[out[i].ID] < idx.ord[out[j].ID]
	})
	return out
}

// Stats summarizes the index for status reporting.
type Stats struct {
	Entries      int
	ByLanguage   map[types.Language]int
	ByDifficulty map[types.Difficulty]int
}

// Stats returns per-language and per-difficulty entry counts.
func (idx *Index) Stats() Stats {
	s := Stats{
		Entries:      len(idx.entries),
		ByLanguage:   make(map[types.Language]int, len(idx.byLanguage)),
		ByDifficulty: make(map[types.Difficulty]int, len(idx.byDifficulty)),
	}
	for lang, entries := range idx.byLanguage {
		s.ByLanguage[lang] = len(entries)
	}
	for d, entries := range idx.byDifficulty {
		s.ByDifficulty[d] = len(entries)
	}
	return s
}
