package session

import (
	"context"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"storybook-server/internal/models"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates a MemoryStore whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &MemoryStore{cache: cache.New(ttl, cleanup)}
}

func storyKey(sessionID string) string { return sessionID + ":story" }
func musicKey(sessionID string) string { return sessionID + ":music_url" }

func (s *MemoryStore) SetStory(_ context.Context, sessionID string, story *models.Story) error {
	s.cache.SetDefault(storyKey(sessionID), cloneStory(story))
	return nil
}

func (s *MemoryStore) GetStory(_ context.Context, sessionID string) (*models.Story, error) {
	v, ok := s.cache.Get(storyKey(sessionID))
	if !ok {
		return nil, ErrNotFound
	}
	return cloneStory(v.(*models.Story)), nil
}

func (s *MemoryStore) SetMusicURL(_ context.Context, sessionID string, url string) error {
	s.cache.SetDefault(musicKey(sessionID), url)
	return nil
}

func (s *MemoryStore) GetMusicURL(_ context.Context, sessionID string) (string, error) {
	v, ok := s.cache.Get(musicKey(sessionID))
	if !ok {
		return "", ErrNotFound
	}
	return v.(string), nil
}

// cloneStory copies st so callers cannot mutate what the store holds.
func cloneStory(st *models.Story) *models.Story {
	if st == nil {
		return nil
	}
	out := &models.Story{
		Storyline:  st.Storyline,
		Characters: slices.Clone(st.Characters),
		Scenes:     make([]models.Scene, len(st.Scenes)),
	}
	for i, sc := range st.Scenes {
		sc.Characters = slices.Clone(sc.Characters)
		out.Scenes[i] = sc
	}
	return out
}
