package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ecodex/backend/pkg/circuitbreaker"
	"github.com/ecodex/backend/pkg/logger"
)

const googleEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// GoogleClient calls the Cloud Vision images:annotate REST endpoint
// with label, object and web detection in a single request.
type GoogleClient struct {
	apiKey        string
	endpoint      string
	maxResults    int
	languageHints []string
	httpClient    *http.Client
	cb            *circuitbreaker.CircuitBreaker
}

func NewGoogleClient(apiKey string, timeout time.Duration, maxResults int, languageHints []string) *GoogleClient {
	cb := circuitbreaker.NewCircuitBreaker("vision-google", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	logger.Info("Google Vision client initialized",
		zap.Int("max_results", maxResults),
		zap.Strings("language_hints", languageHints),
	)

	return &GoogleClient{
		apiKey:        apiKey,
		endpoint:      googleEndpoint,
		maxResults:    maxResults,
		languageHints: languageHints,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cb: cb,
	}
}

type googleRequest struct {
	Requests []googleAnnotateRequest `json:"requests"`
}

type googleAnnotateRequest struct {
	Image        googleImage        `json:"image"`
	Features     []googleFeature    `json:"features"`
	ImageContext googleImageContext `json:"imageContext"`
}

type googleImage struct {
	Content string `json:"content"`
}

type googleFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type googleImageContext struct {
	LanguageHints []string `json:"languageHints"`
}

type googleResponse struct {
	Responses []googleAnnotateResponse `json:"responses"`
}

type googleAnnotateResponse struct {
	LabelAnnotations []struct {
		Description string   `json:"description"`
		Score       *float64 `json:"score"`
	} `json:"labelAnnotations"`
	LocalizedObjectAnnotations []struct {
		Name  string   `json:"name"`
		Score *float64 `json:"score"`
	} `json:"localizedObjectAnnotations"`
	WebDetection struct {
		WebEntities []struct {
			Description string   `json:"description"`
			Score       *float64 `json:"score"`
		} `json:"webEntities"`
		BestGuessLabels []struct {
			Label string `json:"label"`
		} `json:"bestGuessLabels"`
	} `json:"webDetection"`
}

func (c *GoogleClient) Annotate(ctx context.Context, image []byte) (*Result, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	payload := googleRequest{
		Requests: []googleAnnotateRequest{{
			Image: googleImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []googleFeature{
				{Type: "LABEL_DETECTION", MaxResults: c.maxResults},
				{Type: "OBJECT_LOCALIZATION", MaxResults: c.maxResults},
				{Type: "WEB_DETECTION", MaxResults: 5},
			},
			ImageContext: googleImageContext{LanguageHints: c.languageHints},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result *Result

	err = c.cb.Execute(ctx, func() error {
		url := fmt.Sprintf("%s?key=%s", c.endpoint, c.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to call vision api: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("vision api returned status %d: %s", resp.StatusCode, string(detail))
		}

		var parsed googleResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		result = mapGoogleResponse(&parsed)
		return nil
	})

	if err != nil {
		logger.Warn("Google Vision call failed", zap.Error(err))
		return nil, err
	}

	logger.Debug("Google Vision annotated image",
		zap.Int("labels", len(result.Labels)),
		zap.Int("objects", len(result.Objects)),
		zap.Int("web_entities", len(result.WebEntities)),
	)

	return result, nil
}

func mapGoogleResponse(parsed *googleResponse) *Result {
	result := &Result{}

	if len(parsed.Responses) == 0 {
		return result
	}
	r := parsed.Responses[0]

	for _, l := range r.LabelAnnotations {
		result.Labels = append(result.Labels, Annotation{Text: l.Description, Score: l.Score})
	}
	for _, o := range r.LocalizedObjectAnnotations {
		result.Objects = append(result.Objects, Annotation{Text: o.Name, Score: o.Score})
	}
	for _, w := range r.WebDetection.WebEntities {
		result.WebEntities = append(result.WebEntities, Annotation{Text: w.Description, Score: w.Score})
	}
	for _, g := range r.WebDetection.BestGuessLabels {
		result.BestGuesses = append(result.BestGuesses, g.Label)
	}

	return result
}
