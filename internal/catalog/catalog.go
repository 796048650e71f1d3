package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// ValidationError records one catalog entry rejected at load time.
// Invalid entries are skipped, never fatal to the load.
type ValidationError struct {
	EntryID string
	Message string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v.EntryID == "" {
		return fmt.Sprintf("catalog entry: %s", v.Message)
	}
	return fmt.Sprintf("catalog entry %q: %s", v.EntryID, v.Message)
}

// LoadResult holds the usable entries plus any per-entry validation errors
// accumulated during the load.
type LoadResult struct {
	Entries []*types.KnowledgeEntry
	Skipped []ValidationError
}

// HasErrors returns true if any entries were rejected.
func (r *LoadResult) HasErrors() bool { return len(r.Skipped) > 0 }

// entryDoc is the YAML shape of one catalog entry.
type entryDoc struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	ChapterID    string   `yaml:"chapterId"`
	ChapterTitle string   `yaml:"chapterTitle"`
	Language     string   `yaml:"language"`
	Difficulty   string   `yaml:"difficulty"`
	Tags         tagsDoc  `yaml:"tags"`
	Dependencies []string `yaml:"dependencies"`
	Related      []string `yaml:"related"`
}

type tagsDoc struct {
	Syntax   []string `yaml:"syntax"`
	Patterns []string `yaml:"patterns"`
	APIs     []string `yaml:"apis"`
	Concepts []string `yaml:"concepts"`
}

type catalogDoc struct {
	Entries []entryDoc `yaml:"entries"`
}

// Load reads and parses a YAML catalog. The path may be a single file or
// a directory, in which case every .yaml/.yml file in it (non-recursive,
// lexical order) contributes entries.
func Load(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if !info.IsDir() {
		return loadFile(path)
	}

	names, err := filepath.Glob(filepath.Join(path, "*.y*ml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog directory: %w", err)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("no catalog files in %s", path)
	}

	merged := &LoadResult{}
	for _, name := range names {
		result, err := loadFile(name)
		if err != nil {
			return nil, err
		}
		merged.Entries = append(merged.Entries, result.Entries...)
		merged.Skipped = append(merged.Skipped, result.Skipped...)
	}
	return merged, nil
}

func loadFile(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document, validating each entry and
// normalizing its tag sets. Malformed entries are recorded and skipped.
func Parse(data []byte) (*LoadResult, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	result := &LoadResult{
		Entries: make([]*types.KnowledgeEntry, 0, len(doc.Entries)),
	}

	for i, raw := range doc.Entries {
		entry, err := buildEntry(raw)
		if err != nil {
			result.Skipped = append(result.Skipped, ValidationError{
				EntryID: raw.ID,
				Message: fmt.Sprintf("entry %d: %v", i, err),
			})
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	return result, nil
}

// buildEntry converts a YAML entry into a validated, tag-normalized
// KnowledgeEntry.
func buildEntry(raw entryDoc) (*types.KnowledgeEntry, error) {
	lang, err := types.ParseLanguage(raw.Language)
	if err != nil {
		return nil, err
	}

	entry := &types.KnowledgeEntry{
		ID:           raw.ID,
		Title:        raw.Title,
		ChapterID:    raw.ChapterID,
		ChapterTitle: raw.ChapterTitle,
		Language:     lang,
		Difficulty:   types.Difficulty(raw.Difficulty),
		Dependencies: raw.Dependencies,
		Related:      raw.Related,
		Tags: types.EntryTags{
			Syntax:   normalizeTags(raw.Tags.Syntax, func(s string) (string, bool) { t, ok := types.NormalizeSyntaxTag(s); return t.String(), ok }),
			Patterns: normalizeTags(raw.Tags.Patterns, func(s string) (string, bool) { t, ok := types.NormalizePatternTag(s); return t.String(), ok }),
			Concepts: normalizeTags(raw.Tags.Concepts, func(s string) (string, bool) { t, ok := types.NormalizeConceptTag(s); return t.String(), ok }),
			APIs:     normalizeAPITags(raw.Tags.APIs),
		},
	}

	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	return entry, nil
}

// normalizeTags canonicalizes known tags and keeps unknown ones lower-cased.
// Curricula evolve faster than the taxonomy; unknown tags still match
// queries carrying the same string, so dropping them would only hurt recall.
func normalizeTags(raw []string, norm func(string) (string, bool)) types.TagSet {
	ts := types.NewTagSet()
	for _, tag := range raw {
		if canonical, ok := norm(tag); ok {
			ts.Add(canonical)
		} else {
			ts.Add(tag)
		}
	}
	return ts
}

// normalizeAPITags reduces each dotted signature to its lower-cased final
// segment so "Array.map" and "numbers.map" index identically.
func normalizeAPITags(raw []string) types.TagSet {
	ts := types.NewTagSet()
	for _, tag := range raw {
		ts.Add(types.NormalizeAPITag(tag))
	}
	return ts
}
