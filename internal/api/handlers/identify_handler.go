package handlers

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ecodex/backend/internal/identify"
	"github.com/ecodex/backend/internal/storage/models"
	"github.com/ecodex/backend/pkg/logger"
)

// Identifier runs the classification pipeline for one photo.
type Identifier interface {
	Identify(ctx context.Context, req identify.Request) (*identify.Result, error)
}

type IdentifyHandler struct {
	engine Identifier
}

func NewIdentifyHandler(engine Identifier) *IdentifyHandler {
	return &IdentifyHandler{
		engine: engine,
	}
}

type identifyRequest struct {
	Image    string `json:"image"`
	Location *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type identifyResponse struct {
	NotAnimal bool            `json:"notAnimal,omitempty"`
	Label     string          `json:"label,omitempty"`
	Score     *float64        `json:"score,omitempty"`
	SpeciesID *int64          `json:"species_id,omitempty"`
	Species   *models.Species `json:"species,omitempty"`
	Photo     *string         `json:"photo,omitempty"`
}

// HandleIdentify is deliberately soft-failing: malformed payloads and
// degraded pipelines all answer 200 with an empty object so offline or
// flaky clients never see a hard error for a photo that simply could
// not be identified.
func (h *IdentifyHandler) HandleIdentify(c *fiber.Ctx) error {
	var req identifyRequest

	if err := c.BodyParser(&req); err != nil {
		logger.Debug("Failed to parse identify request body", zap.Error(err))
		return c.JSON(identifyResponse{})
	}

	image, contentType, ok := decodeImageDataURL(req.Image)
	if !ok {
		return c.JSON(identifyResponse{})
	}

	pipelineReq := identify.Request{
		Image:       image,
		ContentType: contentType,
	}
	if req.Location != nil {
		lat, lng := req.Location.Lat, req.Location.Lng
		pipelineReq.Lat = &lat
		pipelineReq.Lng = &lng
	}

	result, err := h.engine.Identify(c.Context(), pipelineReq)
	if err != nil {
		logger.Error("Identification pipeline failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process image",
		})
	}

	if result.NoOpinion {
		return c.JSON(identifyResponse{})
	}
	if result.NotAnimal {
		return c.JSON(identifyResponse{NotAnimal: true})
	}

	return c.JSON(identifyResponse{
		Label:     result.Label,
		Score:     result.Score,
		SpeciesID: result.SpeciesID,
		Species:   result.Species,
		Photo:     result.PhotoURL,
	})
}

// decodeImageDataURL accepts only image/* data URLs and returns the
// decoded bytes and content type.
func decodeImageDataURL(s string) ([]byte, string, bool) {
	if !strings.HasPrefix(s, "data:image") {
		return nil, "", false
	}

	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return nil, "", false
	}

	header := s[len("data:"):comma]
	contentType := header
	if semi := strings.IndexByte(header, ';'); semi >= 0 {
		contentType = header[:semi]
	}

	data, err := base64.StdEncoding.DecodeString(s[comma+1:])
	if err != nil {
		return nil, "", false
	}

	return data, contentType, true
}
