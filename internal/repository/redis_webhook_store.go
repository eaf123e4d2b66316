package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"StockPulse/internal/domain/models"

	"github.com/redis/go-redis/v9"
)

// RedisWebhookStore persists webhook config and delivery history in Redis.
// Config lives at webhook:config:<user> as a JSON string; history is the
// list webhook:deliveries:<user>, trimmed to the newest maxKeep entries.
type RedisWebhookStore struct {
	cli *redis.Client
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisWebhookStore creates a store over a new Redis client.
func NewRedisWebhookStore(cfg RedisConfig) *RedisWebhookStore {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &RedisWebhookStore{cli: rdb}
}

func configKey(userID string) string     { return "webhook:config:" + userID }
func deliveriesKey(userID string) string { return "webhook:deliveries:" + userID }

func (s *RedisWebhookStore) GetConfig(ctx context.Context, userID string) (*models.WebhookConfig, error) {
	b, err := s.cli.Get(ctx, configKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get config: %w", err)
	}
	var cfg models.WebhookConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func (s *RedisWebhookStore) PutConfig(ctx context.Context, userID string, cfg *models.WebhookConfig) error {
	b, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := s.cli.Set(ctx, configKey(userID), b, 0).Err(); err != nil {
		return fmt.Errorf("redis set config: %w", err)
	}
	return nil
}

func (s *RedisWebhookStore) DeleteConfig(ctx context.Context, userID string) error {
	if err := s.cli.Del(ctx, configKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del config: %w", err)
	}
	return nil
}

func (s *RedisWebhookStore) AppendDelivery(ctx context.Context, userID string, d *models.WebhookDelivery, maxKeep int) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode delivery: %w", err)
	}

	pipe := s.cli.TxPipeline()
	pipe.RPush(ctx, deliveriesKey(userID), b)
	if maxKeep > 0 {
		pipe.LTrim(ctx, deliveriesKey(userID), int64(-maxKeep), -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append delivery: %w", err)
	}
	return nil
}

func (s *RedisWebhookStore) Deliveries(ctx context.Context, userID string) ([]models.WebhookDelivery, error) {
	raw, err := s.cli.LRange(ctx, deliveriesKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read deliveries: %w", err)
	}
	out := make([]models.WebhookDelivery, 0, len(raw))
	for _, r := range raw {
		var d models.WebhookDelivery
		if err := json.Unmarshal([]byte(r), &d); err != nil {
			continue // skip corrupt entries
		}
		out = append(out, d)
	}
	return out, nil
}

// Close closes the underlying Redis client.
func (s *RedisWebhookStore) Close() error { return s.cli.Close() }
