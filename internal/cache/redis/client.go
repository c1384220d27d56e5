package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ecodex/backend/pkg/logger"
	"github.com/ecodex/backend/pkg/utils"
)

// Client memoizes alias resolutions. It is an optional collaborator:
// every failure is logged and swallowed so a dead cache never degrades
// an identification beyond an extra catalog query.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized",
		zap.String("addr", fmt.Sprintf("%s:%d", host, port)),
		zap.Duration("ttl", ttl),
	)

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func speciesKey(label string) string {
	return fmt.Sprintf("species:%s", utils.HashString(label))
}

// GetSpeciesID returns the cached species id for a normalized label.
func (c *Client) GetSpeciesID(ctx context.Context, label string) (int64, bool) {
	val, err := c.client.Get(ctx, speciesKey(label)).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		logger.Warn("Failed to read alias cache", zap.Error(err))
		return 0, false
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		logger.Warn("Corrupt alias cache entry", zap.String("label", label), zap.String("value", val))
		return 0, false
	}

	logger.Debug("Alias cache hit", zap.String("label", label), zap.Int64("species_id", id))
	return id, true
}

// SetSpeciesID caches a successful resolution.
func (c *Client) SetSpeciesID(ctx context.Context, label string, id int64) {
	err := c.client.Set(ctx, speciesKey(label), strconv.FormatInt(id, 10), c.ttl).Err()
	if err != nil {
		logger.Warn("Failed to write alias cache", zap.Error(err))
	}
}
