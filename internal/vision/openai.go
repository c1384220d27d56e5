package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ecodex/backend/pkg/circuitbreaker"
	"github.com/ecodex/backend/pkg/logger"
)

// OpenAIClient is the fallback recognizer: a vision-capable chat model
// is asked to label the photo and its answer is mapped onto
// label-source annotations. Object and web detection stay empty.
type OpenAIClient struct {
	client *openai.Client
	model  string
	cb     *circuitbreaker.CircuitBreaker
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if apiKey == "" {
		return &OpenAIClient{model: model}
	}

	cb := circuitbreaker.NewCircuitBreaker("vision-openai", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	logger.Info("OpenAI vision client initialized", zap.String("model", model))

	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		cb:     cb,
	}
}

const labelPrompt = `You are an image labeling service. List what is visible in the photo as short generic English labels with a confidence between 0 and 1, most confident first. If an animal is visible, name it as precisely as you can (species or breed). Return ONLY a JSON array: [{"label": "...", "score": 0.9}]`

func (c *OpenAIClient) Annotate(ctx context.Context, image []byte) (*Result, error) {
	if c.client == nil {
		return nil, ErrNotConfigured
	}

	dataURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(image))

	var content string

	err := c.cb.Execute(ctx, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     c.model,
			MaxTokens: 400,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{Type: openai.ChatMessagePartTypeText, Text: labelPrompt},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    dataURL,
								Detail: openai.ImageURLDetailLow,
							},
						},
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create completion: %w", err)
		}

		if len(resp.Choices) == 0 {
			return fmt.Errorf("completion returned no choices")
		}

		content = resp.Choices[0].Message.Content
		return nil
	})

	if err != nil {
		logger.Warn("OpenAI vision call failed", zap.Error(err))
		return nil, err
	}

	result := &Result{Labels: parseLabelList(content)}

	logger.Debug("OpenAI vision annotated image", zap.Int("labels", len(result.Labels)))

	return result, nil
}

// parseLabelList tolerates markdown fences around the JSON the model
// returns. Unparseable content yields no labels rather than an error.
func parseLabelList(content string) []Annotation {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var items []struct {
		Label string   `json:"label"`
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		logger.Warn("Failed to parse label list from model", zap.Error(err))
		return nil
	}

	annotations := make([]Annotation, 0, len(items))
	for _, item := range items {
		annotations = append(annotations, Annotation{Text: item.Label, Score: item.Score})
	}

	return annotations
}
