// Package objectstore uploads observation photos to a
// Supabase-storage-compatible object store over its REST API.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecodex/backend/pkg/logger"
)

type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

func NewClient(baseURL, serviceKey, bucket string, timeout time.Duration) *Client {
	logger.Info("Object store client initialized",
		zap.String("bucket", bucket),
	)

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upload stores one photo and returns its public URL. Object names are
// unique per upload; nothing is ever overwritten.
func (c *Client) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	name := fmt.Sprintf("obs_%d_%s.jpg", time.Now().UnixMilli(), uuid.New().String()[:8])

	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s",
		c.baseURL, url.PathEscape(c.bucket), url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload returned status %d: %s", resp.StatusCode, string(detail))
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		c.baseURL, url.PathEscape(c.bucket), url.PathEscape(name))

	logger.Debug("Photo uploaded", zap.String("object", name))

	return publicURL, nil
}
