package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ecodex/backend/internal/storage/models"
	"github.com/ecodex/backend/pkg/logger"
)

// CatalogStore lists the dex and the recorded observations.
type CatalogStore interface {
	ListSpecies(ctx context.Context) ([]models.Species, error)
	ListObservations(ctx context.Context, limit int) ([]models.Observation, error)
}

type SpeciesHandler struct {
	store CatalogStore
}

func NewSpeciesHandler(store CatalogStore) *SpeciesHandler {
	return &SpeciesHandler{
		store: store,
	}
}

func (h *SpeciesHandler) ListSpecies(c *fiber.Ctx) error {
	species, err := h.store.ListSpecies(c.Context())
	if err != nil {
		logger.Error("Failed to list species", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list species",
		})
	}

	if species == nil {
		species = []models.Species{}
	}

	return c.JSON(fiber.Map{
		"species": species,
	})
}

func (h *SpeciesHandler) ListObservations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	observations, err := h.store.ListObservations(c.Context(), limit)
	if err != nil {
		logger.Error("Failed to list observations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list observations",
		})
	}

	if observations == nil {
		observations = []models.Observation{}
	}

	return c.JSON(fiber.Map{
		"observations": observations,
	})
}
