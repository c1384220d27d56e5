// Package pipeline holds the classification core: signal aggregation,
// the animal gate and label selection. It is pure logic with no I/O.
package pipeline

import "strings"

type Source string

const (
	SourceObject    Source = "object"
	SourceLabel     Source = "label"
	SourceWebEntity Source = "webEntity"
	SourceWebGuess  Source = "webGuess"
)

// Signal is one normalized piece of recognition evidence. Confidence
// is nil for sources that carry no score; a nil confidence ranks as
// zero but still counts as evidence for classification.
type Signal struct {
	Text       string
	Confidence *float64
	Source     Source
}

// RecognizerResult is the provider-shaped input to aggregation.
type RecognizerResult struct {
	Objects     []Annotation
	Labels      []Annotation
	WebEntities []Annotation
	BestGuesses []string
}

type Annotation struct {
	Text  string
	Score *float64
}

// Collect flattens the recognizer result into one ordered signal list:
// objects, then scene labels, then web entities, then best guesses,
// provider rank order preserved within each source. Blank texts are
// dropped. Scene labels below minLabelConfidence are dropped; other
// sources are never confidence-filtered.
func Collect(res *RecognizerResult, minLabelConfidence float64) []Signal {
	if res == nil {
		return nil
	}

	var signals []Signal

	for _, a := range res.Objects {
		if isBlank(a.Text) {
			continue
		}
		signals = append(signals, Signal{Text: a.Text, Confidence: a.Score, Source: SourceObject})
	}

	for _, a := range res.Labels {
		if isBlank(a.Text) {
			continue
		}
		if a.Score != nil && *a.Score < minLabelConfidence {
			continue
		}
		signals = append(signals, Signal{Text: a.Text, Confidence: a.Score, Source: SourceLabel})
	}

	for _, a := range res.WebEntities {
		if isBlank(a.Text) {
			continue
		}
		signals = append(signals, Signal{Text: a.Text, Confidence: a.Score, Source: SourceWebEntity})
	}

	for _, g := range res.BestGuesses {
		if isBlank(g) {
			continue
		}
		signals = append(signals, Signal{Text: g, Source: SourceWebGuess})
	}

	return signals
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// confidenceOrZero is the ranking default; it must never be used to
// decide whether a signal counts as evidence.
func confidenceOrZero(s Signal) float64 {
	if s.Confidence == nil {
		return 0
	}
	return *s.Confidence
}
