package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

const keyPrefix = "storybook:session:"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps sessions in Redis so several server instances can share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore creates a RedisStore writing keys with the given ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisSessionStore"),
	}
}

func redisKey(sessionID, field string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, sessionID, field)
}

func (s *RedisStore) SetStory(ctx context.Context, sessionID string, story *models.Story) error {
	data, err := json.Marshal(story)
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(sessionID, "story"), data, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to store story", zap.String("session_id", sessionID), zap.Error(err))
		return fmt.Errorf("failed to store story: %w", err)
	}
	s.logger.Debug("Story stored", zap.String("session_id", sessionID), zap.Int("bytes", len(data)))
	return nil
}

func (s *RedisStore) GetStory(ctx context.Context, sessionID string) (*models.Story, error) {
	data, err := s.client.Get(ctx, redisKey(sessionID, "story")).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		s.logger.Error("Failed to load story", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to load story: %w", err)
	}

	var story models.Story
	if err := json.Unmarshal(data, &story); err != nil {
		s.logger.Error("Stored story is corrupt", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to decode stored story: %w", err)
	}
	return &story, nil
}

func (s *RedisStore) SetMusicURL(ctx context.Context, sessionID string, url string) error {
	if err := s.client.Set(ctx, redisKey(sessionID, "music_url"), url, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to store music URL", zap.String("session_id", sessionID), zap.Error(err))
		return fmt.Errorf("failed to store music url: %w", err)
	}
	return nil
}

func (s *RedisStore) GetMusicURL(ctx context.Context, sessionID string) (string, error) {
	url, err := s.client.Get(ctx, redisKey(sessionID, "music_url")).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load music url: %w", err)
	}
	return url, nil
}
