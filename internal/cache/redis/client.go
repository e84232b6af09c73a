package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/complaint-desk/backend/internal/classifier"
	"github.com/complaint-desk/backend/pkg/logger"
)

// Client caches classification results so resubmitted complaint text does not
// trigger another completion call.
type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
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

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SetClassification(ctx context.Context, key string, result *classifier.Result, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal classification: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("classification:%s", key), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set classification cache: %w", err)
	}

	logger.Debug("Classification cached", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetClassification(ctx context.Context, key string) (*classifier.Result, bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("classification:%s", key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get classification cache: %w", err)
	}

	var result classifier.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal classification: %w", err)
	}

	return &result, true, nil
}
