package pipeline

import "strings"

// Vocabularies for the animal gate. Matching is lower-cased substring
// containment, not token matching: it tolerates provider variants like
// "Maine Coon cat" or "European hedgehog" without a tokenizer, at the
// cost of occasional false positives ("catalog" contains "cat").

// allowTerms: broad taxonomy, frequent families, common pets and the
// concrete species words of the catalog's domain.
var allowTerms = []string{
	// broad
	"animal", "mammal", "bird", "avian", "reptile", "amphibian", "fish",
	"insect", "arthropod", "spider", "arachnid",
	// common pets
	"cat", "dog", "puppy", "kitten",
	// frequent families/terms
	"feline", "canine", "rodent", "mustelid", "ungulate", "equid",
	"herbivore", "carnivore", "omnivore", "vertebrate",
	// explicit species words
	"hedgehog", "fox", "deer", "rabbit", "hare", "squirrel", "boar",
	"badger", "bear", "wolf", "horse", "cow", "sheep", "goat",
	"duck", "goose", "swan", "pigeon", "sparrow", "robin", "magpie",
	"crow", "gull", "heron", "eagle", "owl", "tit",
	"frog", "toad", "lizard", "snake", "turtle",
	"butterfly", "dragonfly", "bee", "bumblebee", "ladybird", "ladybug",
}

// blockTerms: human presence and scene/object noise.
var blockTerms = []string{
	"floor", "wall", "ceiling", "furniture", "paper", "document", "text",
	"human", "person", "people", "man", "woman",
	"face", "beard", "hair", "skin", "selfie", "portrait", "eyebrow",
	"nose", "mouth", "eye", "forehead", "ear",
	"building", "road", "carpet", "tile", "ceramic", "plastic", "metal",
	"wood", "clothing", "shirt", "pants", "shoe", "hat",
	"electronics", "screen",
}

// Verdict is the gate's decision together with the signals that
// produced it. No uncertain state survives this stage: absence of
// animal evidence is NotAnimal. Blocked records whether scene noise
// was what tipped the rejection, for diagnostics only.
type Verdict struct {
	Animal  bool
	Blocked bool
	Signals []Signal
}

// Classify decides whether the photographed subject is an animal.
// Allow evidence wins over block evidence: a hand holding a hedgehog
// is still a hedgehog. Without allow evidence the verdict is NotAnimal
// whether or not block terms are present.
func Classify(signals []Signal) Verdict {
	hasAllow := false
	hasBlock := false
	for _, s := range signals {
		if MatchesAllow(s.Text) {
			hasAllow = true
			break
		}
		if !hasBlock && MatchesBlock(s.Text) {
			hasBlock = true
		}
	}

	return Verdict{
		Animal:  hasAllow,
		Blocked: !hasAllow && hasBlock,
		Signals: signals,
	}
}

// MatchesAllow reports whether the text contains any allow-vocabulary
// term.
func MatchesAllow(text string) bool {
	return matchesAny(text, allowTerms)
}

// MatchesBlock reports whether the text contains any block-vocabulary
// term.
func MatchesBlock(text string) bool {
	return matchesAny(text, blockTerms)
}

func matchesAny(text string, terms []string) bool {
	l := Normalize(text)
	for _, term := range terms {
		if strings.Contains(l, term) {
			return true
		}
	}
	return false
}

// Normalize lower-cases and collapses whitespace, the shared label
// normalization of the gate and the alias resolver.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
