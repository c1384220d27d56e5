package sqlite

import (
	"fmt"

	"github.com/ecodex/backend/internal/storage/models"
	"github.com/ecodex/backend/pkg/logger"
	"go.uber.org/zap"
)

type seedEntry struct {
	species models.Species
	aliases []string
}

// Starter catalog of the dex. Slugs are stable; re-seeding updates
// display fields and leaves observations untouched.
var starterCatalog = []seedEntry{
	{
		species: models.Species{
			Slug: "hedgehog", CommonName: "Hérisson", CommonNameEN: "European hedgehog",
			ScientificName: "Erinaceus europaeus", Emoji: "🦔", Status: "Protégé",
			Tip: "Tas de feuilles = abri.", Habitat: "Jardins/Lisières",
		},
		aliases: []string{"hedgehog", "hérisson", "erinaceus"},
	},
	{
		species: models.Species{
			Slug: "blue_tit", CommonName: "Mésange bleue", CommonNameEN: "Eurasian blue tit",
			ScientificName: "Cyanistes caeruleus", Emoji: "🐦", Status: "Commune",
			Tip: "Pose un nichoir.", Habitat: "Parcs/Forêts",
		},
		aliases: []string{"blue tit", "tit", "mésange"},
	},
	{
		species: models.Species{
			Slug: "dragonfly", CommonName: "Libellule", CommonNameEN: "Dragonfly",
			ScientificName: "Odonata", Emoji: "🪰", Status: "Indicateur",
			Tip: "Protège zones humides.", Habitat: "Berges/Étangs",
		},
		aliases: []string{"dragonfly", "libellule", "odonata"},
	},
	{
		species: models.Species{
			Slug: "red_fox", CommonName: "Renard roux", CommonNameEN: "Red fox",
			ScientificName: "Vulpes vulpes", Emoji: "🦊", Status: "Commune",
			Tip: "Actif au crépuscule.", Habitat: "Lisières/Villes",
		},
		aliases: []string{"fox", "red fox", "renard"},
	},
	{
		species: models.Species{
			Slug: "cat", CommonName: "Chat domestique", CommonNameEN: "Domestic cat",
			ScientificName: "Felis catus", Emoji: "🐱", Status: "Domestique",
			Tip: "Garde-le rentré la nuit.", Habitat: "Jardins/Maisons",
		},
		aliases: []string{"cat", "chat", "kitten", "felis catus"},
	},
	{
		species: models.Species{
			Slug: "dog", CommonName: "Chien domestique", CommonNameEN: "Domestic dog",
			ScientificName: "Canis familiaris", Emoji: "🐶", Status: "Domestique",
			Tip: "Tiens-le en laisse près des nids.", Habitat: "Partout",
		},
		aliases: []string{"dog", "chien", "puppy", "canis"},
	},
}

// Seed inserts the starter species and their aliases. Idempotent.
func (c *Client) Seed() error {
	for i := range starterCatalog {
		entry := &starterCatalog[i]

		id, err := c.InsertSpecies(&entry.species)
		if err != nil {
			return fmt.Errorf("failed to seed species %q: %w", entry.species.Slug, err)
		}

		for _, alias := range entry.aliases {
			if err := c.InsertAlias(alias, id); err != nil {
				return fmt.Errorf("failed to seed alias %q: %w", alias, err)
			}
		}
	}

	logger.Info("Catalog seeded", zap.Int("species", len(starterCatalog)))
	return nil
}
