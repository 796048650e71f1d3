package types

import "errors"

// Domain errors shared across components. Components classify failures by
// wrapping these sentinels and callers test with errors.Is.
var (
	// ErrParse marks malformed or unparseable input. Recovered locally by
	// the extractor, which degrades to empty features.
	ErrParse = errors.New("parse failed")

	// ErrTimeout marks a parse or network attempt that exceeded its budget.
	ErrTimeout = errors.New("operation timed out")

	// ErrValidation marks a malformed catalog entry at load time. The entry
	// is skipped; loading continues.
	ErrValidation = errors.New("validation failed")

	// ErrClient marks a caller error (4xx-equivalent). Never retried.
	ErrClient = errors.New("client error")

	// ErrTransient marks a retryable failure (5xx-equivalent or network).
	ErrTransient = errors.New("transient error")

	// ErrExhausted marks a query whose retries and fallback all failed.
	ErrExhausted = errors.New("all retrieval attempts exhausted")

	// ErrUnsupportedLanguage marks a language outside the supported set.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrMissingLanguage marks a request without a language.
	ErrMissingLanguage = errors.New("language is required")

	// ErrEmptyQuery marks a request carrying neither code nor features.
	ErrEmptyQuery = errors.New("request must include code or features")
)
