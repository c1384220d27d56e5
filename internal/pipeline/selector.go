package pipeline

import "strings"

// concreteSpeciesTerms earn the specificity bonus: a label naming an
// actual species or genus beats a generic taxonomic word of equal
// confidence.
var concreteSpeciesTerms = []string{
	"hedgehog", "fox", "deer", "rabbit", "hare", "squirrel", "boar",
	"badger", "bear", "wolf", "horse", "cow", "sheep", "goat",
	"duck", "goose", "swan", "pigeon", "sparrow", "robin", "magpie",
	"crow", "gull", "heron", "eagle", "owl", "tit",
	"frog", "toad", "lizard", "snake", "turtle",
	"butterfly", "dragonfly", "bee", "bumblebee", "ladybird", "ladybug",
	"cat", "dog", "puppy", "kitten",
}

// ResolvedLabel is the selector's single output. Confidence is nil
// when the chosen signal carried none.
type ResolvedLabel struct {
	Text       string
	Confidence *float64
}

// selectionTiers order the source preference: allow-matching objects
// first, then scene labels, then web evidence, then anything at all.
var selectionTiers = []func(Signal) bool{
	func(s Signal) bool { return s.Source == SourceObject && MatchesAllow(s.Text) },
	func(s Signal) bool { return s.Source == SourceLabel && MatchesAllow(s.Text) },
	func(s Signal) bool {
		return (s.Source == SourceWebEntity || s.Source == SourceWebGuess) && MatchesAllow(s.Text)
	},
	func(Signal) bool { return true },
}

// Select picks the one label that represents the observation. It is
// total: after an Animal verdict it always returns a non-empty text,
// falling back to the literal "Animal" if no signal survived.
func Select(signals []Signal) ResolvedLabel {
	for _, accept := range selectionTiers {
		best := -1
		bestScore := 0.0

		for i, s := range signals {
			if !accept(s) {
				continue
			}
			score := signalScore(s)
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}

		if best >= 0 {
			return ResolvedLabel{Text: signals[best].Text, Confidence: signals[best].Confidence}
		}
	}

	return ResolvedLabel{Text: "Animal"}
}

// signalScore ranks signals within a tier: provider confidence plus a
// specificity bonus for multi-word labels (+0.2) and concrete species
// words (+0.5).
func signalScore(s Signal) float64 {
	score := confidenceOrZero(s)

	if len(strings.Fields(s.Text)) > 1 {
		score += 0.2
	}

	l := Normalize(s.Text)
	for _, term := range concreteSpeciesTerms {
		if strings.Contains(l, term) {
			score += 0.5
			break
		}
	}

	return score
}
