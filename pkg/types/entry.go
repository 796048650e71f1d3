package types

import (
	"errors"
	"fmt"
	"strings"
)

// Language identifies a supported source language.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
)

// ParseLanguage normalizes a language name. Common aliases are accepted.
func ParseLanguage(raw string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "javascript", "js", "jsx":
		return LangJavaScript, nil
	case "typescript", "ts", "tsx":
		return LangTypeScript, nil
	case "python", "py":
		return LangPython, nil
	case "":
		return "", ErrMissingLanguage
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, raw)
	}
}

// Validate checks that the language is one of the supported values.
func (l Language) Validate() error {
	switch l {
	case LangJavaScript, LangTypeScript, LangPython:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, string(l))
	}
}

// Difficulty grades a knowledge entry.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Validate checks that the difficulty is one of the graded values.
func (d Difficulty) Validate() error {
	switch d {
	case DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
		return nil
	default:
		return fmt.Errorf("invalid difficulty: %s", string(d))
	}
}

// EntryTags holds the four per-dimension tag sets of a knowledge entry.
type EntryTags struct {
	Syntax   TagSet
	Patterns TagSet
	APIs     TagSet
	Concepts TagSet
}

// Dimension returns the tag set for the given dimension.
func (t EntryTags) Dimension(d Dimension) TagSet {
	switch d {
	case DimSyntax:
		return t.Syntax
	case DimPatterns:
		return t.Patterns
	case DimAPIs:
		return t.APIs
	case DimConcepts:
		return t.Concepts
	default:
		return nil
	}
}

// KnowledgeEntry is one indexed unit of the curriculum catalog.
// Entries are read-only after catalog load; their lifecycle is the process
// lifetime.
type KnowledgeEntry struct {
	ID           string
	Title        string
	ChapterID    string
	ChapterTitle string
	Language     Language
	Tags         EntryTags
	Difficulty   Difficulty
	Dependencies []string // IDs of prerequisite entries
	Related      []string // IDs of related entries
}

// Validate checks required fields. Cross-entry reference resolution
// (dangling Dependencies/Related IDs) is the catalog loader's job.
func (e *KnowledgeEntry) Validate() error {
	if e.ID == "" {
		return errors.New("entry ID is required")
	}
	if e.Title == "" {
		return errors.New("entry title is required")
	}
	if err := e.Language.Validate(); err != nil {
		return err
	}
	if err := e.Difficulty.Validate(); err != nil {
		return err
	}
	return nil
}
