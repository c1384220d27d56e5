// Package vision wraps the image recognition providers. Each provider
// returns the same Result shape; the pipeline never sees provider
// specifics. All providers are best-effort: a failed call yields an
// error and no partial data, and is never retried.
package vision

import "errors"

// ErrNotConfigured is returned when a provider is selected but its
// credentials are missing. Callers treat it like any other recognizer
// failure and degrade to an empty response.
var ErrNotConfigured = errors.New("vision provider not configured")

// Annotation is one recognition hint. Score is nil for sources that
// carry no confidence (best-guess captions, some web entities).
type Annotation struct {
	Text  string
	Score *float64
}

// Result groups the provider's output by source, provider rank order
// preserved within each slice.
type Result struct {
	Objects     []Annotation
	Labels      []Annotation
	WebEntities []Annotation
	BestGuesses []string
}
