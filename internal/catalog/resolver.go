// Package catalog resolves free-text labels to canonical species via
// progressively looser matching against the alias table.
package catalog

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ecodex/backend/internal/metrics"
	"github.com/ecodex/backend/internal/pipeline"
	"github.com/ecodex/backend/internal/storage/models"
	"github.com/ecodex/backend/pkg/logger"
)

// AliasStore is the catalog lookup surface. All queries are
// case-insensitive on the store side and return their first row in
// fixed catalog order, or nil on no match.
type AliasStore interface {
	FindAliasExact(ctx context.Context, label string) (*models.Alias, error)
	FindAliasContains(ctx context.Context, label string) (*models.Alias, error)
	FindAliasPrefix(ctx context.Context, prefix string) (*models.Alias, error)
}

// Cache memoizes successful resolutions by normalized label. It is
// best-effort; both methods may silently do nothing.
type Cache interface {
	GetSpeciesID(ctx context.Context, label string) (int64, bool)
	SetSpeciesID(ctx context.Context, label string, id int64)
}

type Resolver struct {
	store AliasStore
	cache Cache
}

// NewResolver builds a resolver over the given store. cache may be nil.
func NewResolver(store AliasStore, cache Cache) *Resolver {
	return &Resolver{store: store, cache: cache}
}

var hairedPattern = regexp.MustCompile(`-?haired`)

// Resolve maps a raw label to a species id through four tiers, stopping
// at the first hit: exact match on the normalized label, exact match on
// rewritten variants, substring containment, then prefix on the first
// word. A nil id with nil error is the normal unrecognized-species
// outcome, not a failure.
func (r *Resolver) Resolve(ctx context.Context, labelRaw string) (*int64, error) {
	q := pipeline.Normalize(labelRaw)
	if q == "" {
		return nil, nil
	}

	if r.cache != nil {
		if id, ok := r.cache.GetSpeciesID(ctx, q); ok {
			metrics.AliasCacheHits.Inc()
			return &id, nil
		}
		metrics.AliasCacheMisses.Inc()
	}

	// Tier 1: exact.
	alias, err := r.store.FindAliasExact(ctx, q)
	if err != nil {
		return nil, err
	}
	if alias != nil {
		return r.hit(ctx, q, alias, "exact"), nil
	}

	// Tier 2: variant rewrites, each retried as an exact match.
	for _, variant := range variants(q) {
		alias, err = r.store.FindAliasExact(ctx, variant)
		if err != nil {
			return nil, err
		}
		if alias != nil {
			return r.hit(ctx, q, alias, "variant"), nil
		}
	}

	// Tier 3: substring containment in either direction.
	alias, err = r.store.FindAliasContains(ctx, q)
	if err != nil {
		return nil, err
	}
	if alias != nil {
		return r.hit(ctx, q, alias, "contains"), nil
	}

	// Tier 4: any alias starting with the label's first word.
	firstWord := strings.SplitN(q, " ", 2)[0]
	alias, err = r.store.FindAliasPrefix(ctx, firstWord)
	if err != nil {
		return nil, err
	}
	if alias != nil {
		return r.hit(ctx, q, alias, "prefix"), nil
	}

	metrics.ResolverTierHits.WithLabelValues("miss").Inc()
	logger.Debug("Label did not resolve to a species", zap.String("label", q))

	return nil, nil
}

func (r *Resolver) hit(ctx context.Context, normalized string, alias *models.Alias, tier string) *int64 {
	metrics.ResolverTierHits.WithLabelValues(tier).Inc()

	logger.Debug("Label resolved",
		zap.String("label", normalized),
		zap.String("alias", alias.Label),
		zap.Int64("species_id", alias.SpeciesID),
		zap.String("tier", tier),
	)

	if r.cache != nil {
		r.cache.SetSpeciesID(ctx, normalized, alias.SpeciesID)
	}

	id := alias.SpeciesID
	return &id
}

// breedFamilies maps breed words the recognizer likes to return onto
// the pet species word the catalog actually knows.
var breedFamilies = map[string]string{
	"retriever": "dog",
	"terrier":   "dog",
	"shepherd":  "dog",
	"spaniel":   "dog",
	"bulldog":   "dog",
	"poodle":    "dog",
	"beagle":    "dog",
	"dachshund": "dog",
	"tabby":     "cat",
	"siamese":   "cat",
	"persian":   "cat",
	"sphynx":    "cat",
}

// variants rewrites the normalized label into breed-tolerant forms:
// "-haired"/"haired" to "hair", the last two words, the bare family
// word when the label ends in "cat"/"dog" ("maine coon cat" to "cat"),
// and the family word of a known breed ("golden retriever" to "dog").
// Variants identical to the input are skipped.
func variants(q string) []string {
	words := strings.Fields(q)

	candidates := []string{
		strings.Join(strings.Fields(hairedPattern.ReplaceAllString(q, " hair")), " "),
		lastWords(q, 2),
	}

	if len(words) > 1 {
		last := words[len(words)-1]
		if last == "cat" || last == "dog" {
			candidates = append(candidates, last)
		}
	}
	for _, w := range words {
		if family, ok := breedFamilies[w]; ok {
			candidates = append(candidates, family)
			break
		}
	}

	var out []string
	for _, c := range candidates {
		if c != "" && c != q && !contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func lastWords(q string, n int) string {
	words := strings.Fields(q)
	if len(words) <= n {
		return q
	}
	return strings.Join(words[len(words)-n:], " ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
