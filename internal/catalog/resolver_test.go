package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecodex/backend/internal/storage/models"
)

// fakeAliasStore resolves from a fixed alias table with the same
// semantics as the SQLite queries, recording every lookup.
type fakeAliasStore struct {
	aliases []models.Alias
	calls   []string
}

func (f *fakeAliasStore) FindAliasExact(_ context.Context, label string) (*models.Alias, error) {
	f.calls = append(f.calls, "exact:"+label)
	for i := range f.aliases {
		if f.aliases[i].Label == label {
			return &f.aliases[i], nil
		}
	}
	return nil, nil
}

func (f *fakeAliasStore) FindAliasContains(_ context.Context, label string) (*models.Alias, error) {
	f.calls = append(f.calls, "contains:"+label)
	for i := range f.aliases {
		a := f.aliases[i].Label
		if containsEither(label, a) {
			return &f.aliases[i], nil
		}
	}
	return nil, nil
}

func (f *fakeAliasStore) FindAliasPrefix(_ context.Context, prefix string) (*models.Alias, error) {
	f.calls = append(f.calls, "prefix:"+prefix)
	for i := range f.aliases {
		if len(f.aliases[i].Label) >= len(prefix) && f.aliases[i].Label[:len(prefix)] == prefix {
			return &f.aliases[i], nil
		}
	}
	return nil, nil
}

func containsEither(a, b string) bool {
	return indexOf(a, b) >= 0 || indexOf(b, a) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

type fakeCache struct {
	entries map[string]int64
}

func (f *fakeCache) GetSpeciesID(_ context.Context, label string) (int64, bool) {
	id, ok := f.entries[label]
	return id, ok
}

func (f *fakeCache) SetSpeciesID(_ context.Context, label string, id int64) {
	f.entries[label] = id
}

func catalogStore() *fakeAliasStore {
	return &fakeAliasStore{aliases: []models.Alias{
		{ID: 1, Label: "hedgehog", SpeciesID: 1},
		{ID: 2, Label: "blue tit", SpeciesID: 2},
		{ID: 3, Label: "dragonfly", SpeciesID: 3},
		{ID: 4, Label: "cat", SpeciesID: 5},
		{ID: 5, Label: "dog", SpeciesID: 6},
	}}
}

func TestResolveExact(t *testing.T) {
	r := NewResolver(catalogStore(), nil)

	id, err := r.Resolve(context.Background(), "Hedgehog")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(1), *id)
}

func TestResolveNormalizesBeforeLookup(t *testing.T) {
	store := catalogStore()
	r := NewResolver(store, nil)

	id, err := r.Resolve(context.Background(), "  Blue   TIT ")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(2), *id)
	assert.Equal(t, []string{"exact:blue tit"}, store.calls)
}

func TestResolveVariants(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  int64
	}{
		{"trailing family word", "Maine Coon cat", 5},
		{"breed family", "Golden Retriever", 6},
		{"last two words", "eurasian blue tit", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(catalogStore(), nil)
			id, err := r.Resolve(context.Background(), tt.label)
			require.NoError(t, err)
			require.NotNil(t, id)
			assert.Equal(t, tt.want, *id)
		})
	}
}

func TestResolveContains(t *testing.T) {
	r := NewResolver(catalogStore(), nil)

	// Not exact and no variant rewrite matches, but the label contains
	// the "dragonfly" alias.
	id, err := r.Resolve(context.Background(), "photogenic dragonfly wing")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(3), *id)
}

func TestResolvePrefixFallback(t *testing.T) {
	store := &fakeAliasStore{aliases: []models.Alias{
		{ID: 1, Label: "hedgehog", SpeciesID: 1},
	}}
	r := NewResolver(store, nil)

	// "hedge trimming" shares no alias substring, but its first word
	// prefixes "hedgehog".
	id, err := r.Resolve(context.Background(), "hedge trimming")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(1), *id)
}

func TestResolveMiss(t *testing.T) {
	store := catalogStore()
	r := NewResolver(store, nil)

	id, err := r.Resolve(context.Background(), "quantum computer")
	require.NoError(t, err)
	assert.Nil(t, id)

	// Every tier was consulted before giving up.
	assert.Contains(t, store.calls, "exact:quantum computer")
	assert.Contains(t, store.calls, "contains:quantum computer")
	assert.Contains(t, store.calls, "prefix:quantum")
}

func TestResolveEmptyLabel(t *testing.T) {
	store := catalogStore()
	r := NewResolver(store, nil)

	id, err := r.Resolve(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Empty(t, store.calls)
}

func TestResolveStopsAtFirstTier(t *testing.T) {
	store := catalogStore()
	r := NewResolver(store, nil)

	_, err := r.Resolve(context.Background(), "hedgehog")
	require.NoError(t, err)
	assert.Equal(t, []string{"exact:hedgehog"}, store.calls)
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewResolver(catalogStore(), nil)

	first, err := r.Resolve(context.Background(), "Golden Retriever")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "Golden Retriever")
	require.NoError(t, err)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

func TestResolveCacheHitSkipsStore(t *testing.T) {
	store := catalogStore()
	cache := &fakeCache{entries: map[string]int64{"hedgehog": 1}}
	r := NewResolver(store, cache)

	id, err := r.Resolve(context.Background(), "Hedgehog")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(1), *id)
	assert.Empty(t, store.calls)
}

func TestResolveCachesHits(t *testing.T) {
	cache := &fakeCache{entries: map[string]int64{}}
	r := NewResolver(catalogStore(), cache)

	_, err := r.Resolve(context.Background(), "Blue Tit")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cache.entries["blue tit"])
}

func TestVariants(t *testing.T) {
	tests := []struct {
		label string
		want  []string
	}{
		{"wire-haired terrier", []string{"wire hair terrier", "dog"}},
		{"maine coon cat", []string{"coon cat", "cat"}},
		{"golden retriever", []string{"dog"}},
		{"hedgehog", nil},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, variants(tt.label))
		})
	}
}
