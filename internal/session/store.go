package session

import (
	"context"
	"errors"

	"storybook-server/internal/models"
)

// ErrNotFound is returned when a session holds no value for the requested key.
var ErrNotFound = errors.New("session value not found")

// Store keeps per-session state. Values expire after the store's TTL and a
// later write replaces an earlier one. Implementations are safe for
// concurrent use.
type Store interface {
	SetStory(ctx context.Context, sessionID string, story *models.Story) error
	GetStory(ctx context.Context, sessionID string) (*models.Story, error)
	SetMusicURL(ctx context.Context, sessionID string, url string) error
	GetMusicURL(ctx context.Context, sessionID string) (string, error)
}
