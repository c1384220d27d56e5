// Package identify orchestrates one identification request: recognize,
// gate, select a label, resolve the species and persist an observation.
package identify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecodex/backend/internal/metrics"
	"github.com/ecodex/backend/internal/pipeline"
	"github.com/ecodex/backend/internal/storage/models"
	"github.com/ecodex/backend/internal/vision"
	"github.com/ecodex/backend/pkg/logger"
)

// Recognizer is the image recognition collaborator. A nil result or an
// error means "no opinion"; it is never retried.
type Recognizer interface {
	Annotate(ctx context.Context, image []byte) (*vision.Result, error)
}

// Store is the catalog and observation persistence surface the engine
// needs.
type Store interface {
	GetSpecies(ctx context.Context, id int64) (*models.Species, error)
	InsertObservation(ctx context.Context, obs *models.Observation) error
}

// SpeciesResolver maps a free-text label to a species id, nil on miss.
type SpeciesResolver interface {
	Resolve(ctx context.Context, label string) (*int64, error)
}

// PhotoUploader stores the photo and returns its durable public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

type Request struct {
	Image       []byte
	ContentType string
	Lat         *float64
	Lng         *float64
}

// Result is the pipeline outcome the handler renders. Exactly one of
// NoOpinion, NotAnimal, or a non-empty Label is meaningful.
type Result struct {
	NoOpinion bool
	NotAnimal bool
	Label     string
	Score     *float64
	SpeciesID *int64
	Species   *models.Species
	PhotoURL  *string
}

type Engine struct {
	recognizer    Recognizer
	store         Store
	resolver      SpeciesResolver
	photos        PhotoUploader
	hub           *Hub
	minConfidence float64
}

// NewEngine wires the pipeline. photos may be nil when no object store
// is configured; hub may be nil to disable the live feed.
func NewEngine(recognizer Recognizer, store Store, resolver SpeciesResolver, photos PhotoUploader, hub *Hub, minConfidence float64) *Engine {
	return &Engine{
		recognizer:    recognizer,
		store:         store,
		resolver:      resolver,
		photos:        photos,
		hub:           hub,
		minConfidence: minConfidence,
	}
}

// Identify runs the full pipeline for one photo. It never fails on a
// collaborator: degraded data (no signals, nil species, nil photo)
// flows through instead. The returned error is reserved for internal
// programming faults and is nil in every expected path.
func (e *Engine) Identify(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()
	requestID := uuid.New().String()

	res, err := e.recognizer.Annotate(ctx, req.Image)
	if err != nil || res == nil {
		metrics.RecognizerFailures.Inc()
		metrics.IdentifyTotal.WithLabelValues("no_opinion").Inc()
		logger.Warn("Recognizer unavailable, returning no opinion",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return &Result{NoOpinion: true}, nil
	}

	signals := pipeline.Collect(toPipelineResult(res), e.minConfidence)
	metrics.SignalCount.Observe(float64(len(signals)))

	verdict := pipeline.Classify(signals)
	if !verdict.Animal {
		metrics.IdentifyTotal.WithLabelValues("not_animal").Inc()
		logger.Info("Subject classified as not an animal",
			zap.String("request_id", requestID),
			zap.Int("signals", len(signals)),
			zap.Bool("blocked", verdict.Blocked),
		)
		return &Result{NotAnimal: true}, nil
	}

	label := pipeline.Select(signals)

	// Photo upload and alias resolution are independent; run them
	// concurrently and wait for both before assembling the record.
	var wg sync.WaitGroup
	var photoURL *string
	var speciesID *int64

	wg.Add(1)
	go func() {
		defer wg.Done()
		id, err := e.resolver.Resolve(ctx, label.Text)
		if err != nil {
			logger.Warn("Alias resolution failed",
				zap.String("request_id", requestID),
				zap.String("label", label.Text),
				zap.Error(err),
			)
			return
		}
		speciesID = id
	}()

	if e.photos != nil && len(req.Image) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := e.photos.Upload(ctx, req.Image, req.ContentType)
			if err != nil {
				metrics.PhotoUploads.WithLabelValues("failure").Inc()
				logger.Warn("Photo upload failed",
					zap.String("request_id", requestID),
					zap.Error(err),
				)
				return
			}
			metrics.PhotoUploads.WithLabelValues("success").Inc()
			photoURL = &url
		}()
	}

	wg.Wait()

	var species *models.Species
	if speciesID != nil {
		species, err = e.store.GetSpecies(ctx, *speciesID)
		if err != nil {
			logger.Warn("Species lookup failed",
				zap.String("request_id", requestID),
				zap.Int64("species_id", *speciesID),
				zap.Error(err),
			)
		}
	}

	obs := &models.Observation{
		ID:        requestID,
		SpeciesID: speciesID,
		LabelRaw:  label.Text,
		Score:     label.Confidence,
		Lat:       req.Lat,
		Lng:       req.Lng,
		PhotoURL:  photoURL,
		CreatedAt: time.Now(),
	}

	if err := e.store.InsertObservation(ctx, obs); err != nil {
		metrics.ObservationInserts.WithLabelValues("failure").Inc()
		logger.Warn("Failed to persist observation",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	} else {
		metrics.ObservationInserts.WithLabelValues("success").Inc()
		if e.hub != nil {
			e.hub.Publish(*obs)
		}
	}

	metrics.IdentifyTotal.WithLabelValues("animal").Inc()
	metrics.PipelineDuration.Observe(time.Since(startTime).Seconds())

	logger.Info("Identification completed",
		zap.String("request_id", requestID),
		zap.String("label", label.Text),
		zap.Bool("resolved", speciesID != nil),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return &Result{
		Label:     label.Text,
		Score:     label.Confidence,
		SpeciesID: speciesID,
		Species:   species,
		PhotoURL:  photoURL,
	}, nil
}

func toPipelineResult(res *vision.Result) *pipeline.RecognizerResult {
	out := &pipeline.RecognizerResult{
		BestGuesses: res.BestGuesses,
	}
	for _, a := range res.Objects {
		out.Objects = append(out.Objects, pipeline.Annotation{Text: a.Text, Score: a.Score})
	}
	for _, a := range res.Labels {
		out.Labels = append(out.Labels, pipeline.Annotation{Text: a.Text, Score: a.Score})
	}
	for _, a := range res.WebEntities {
		out.WebEntities = append(out.WebEntities, pipeline.Annotation{Text: a.Text, Score: a.Score})
	}
	return out
}
