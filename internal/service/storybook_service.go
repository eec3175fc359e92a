package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storybook-server/internal/models"
	"storybook-server/internal/prompt"
	"storybook-server/internal/session"
	"storybook-server/internal/story"
)

// StoryGenerator returns raw story text for a theme.
type StoryGenerator interface {
	GenerateStory(ctx context.Context, theme string) (string, error)
}

// ImageGenerator returns a base64 encoded image for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// MusicGenerator returns the URL of a generated audio track.
type MusicGenerator interface {
	GenerateAudio(ctx context.Context, prompt string, durationSeconds int) (string, error)
}

// MusicDefaults is what RequestMusic asks the audio service for.
type MusicDefaults struct {
	Prompt          string
	DurationSeconds int
}

// StorybookService runs the four storybook operations against the
// generative clients and the session store.
type StorybookService struct {
	stories       StoryGenerator
	images        ImageGenerator
	music         MusicGenerator
	store         session.Store
	musicDefaults MusicDefaults
	logger        *zap.Logger
}

// NewStorybookService creates a StorybookService.
func NewStorybookService(
	stories StoryGenerator,
	images ImageGenerator,
	music MusicGenerator,
	store session.Store,
	musicDefaults MusicDefaults,
	logger *zap.Logger,
) *StorybookService {
	return &StorybookService{
		stories:       stories,
		images:        images,
		music:         music,
		store:         store,
		musicDefaults: musicDefaults,
		logger:        logger.Named("StorybookService"),
	}
}

// RequestStory generates a story for theme, forces it to exactly
// story.SceneCount scenes and makes it the session's current story.
func (s *StorybookService) RequestStory(ctx context.Context, sessionID, theme string) (*models.Story, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil, fmt.Errorf("%w: story theme is required", models.ErrValidation)
	}
	log := s.logger.With(zap.String("session_id", sessionID))

	raw, err := s.stories.GenerateStory(ctx, theme)
	if err != nil {
		log.Error("Story generation failed", zap.Error(err))
		return nil, err
	}

	st, err := story.Parse(raw)
	if err != nil {
		log.Error("Failed to parse generated story", zap.Error(err), zap.String("raw_response", raw))
		return nil, err
	}

	originalScenes := len(st.Scenes)
	if story.Normalize(st) {
		log.Warn("Story does not have the expected number of scenes, adjusted",
			zap.Int("scenes", originalScenes), zap.Int("expected", story.SceneCount))
	}

	if err := s.store.SetStory(ctx, sessionID, st); err != nil {
		log.Error("Failed to save story to session", zap.Error(err))
		return nil, fmt.Errorf("failed to save story: %w", err)
	}

	log.Info("Story generated", zap.Int("characters", len(st.Characters)), zap.Int("scenes", len(st.Scenes)))
	return st, nil
}

// RequestMusic generates the background track and remembers it for the session.
func (s *StorybookService) RequestMusic(ctx context.Context, sessionID string) (string, error) {
	log := s.logger.With(zap.String("session_id", sessionID))

	url, err := s.music.GenerateAudio(ctx, s.musicDefaults.Prompt, s.musicDefaults.DurationSeconds)
	if err != nil {
		log.Error("Failed to generate music", zap.Error(err))
		return "", err
	}

	if err := s.store.SetMusicURL(ctx, sessionID, url); err != nil {
		log.Error("Failed to save music URL to session", zap.Error(err))
		return "", fmt.Errorf("failed to save music url: %w", err)
	}
	return url, nil
}

// RequestSceneImage illustrates scene sceneNumber (1-based) of the session's story.
func (s *StorybookService) RequestSceneImage(ctx context.Context, sessionID string, sceneNumber int) (string, error) {
	log := s.logger.With(zap.String("session_id", sessionID), zap.Int("scene_number", sceneNumber))

	st, err := s.store.GetStory(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			log.Warn("Story not found in session")
			return "", models.ErrStoryNotGenerated
		}
		log.Error("Failed to load story from session", zap.Error(err))
		return "", fmt.Errorf("failed to load story: %w", err)
	}
	if len(st.Scenes) == 0 {
		log.Error("No scenes found in story data")
		return "", fmt.Errorf("%w: no scenes available in story data", models.ErrSceneIncomplete)
	}

	scene, ok := st.Scene(sceneNumber)
	if !ok {
		log.Warn("Invalid scene number", zap.Int("scenes", len(st.Scenes)))
		return "", fmt.Errorf("%w: invalid scene number %d, expected 1 to %d", models.ErrValidation, sceneNumber, len(st.Scenes))
	}

	p, err := prompt.ScenePrompt(st, scene)
	if err != nil {
		log.Error("Failed to compose scene prompt", zap.Error(err))
		return "", err
	}
	log.Debug("Scene prompt composed", zap.String("prompt", p))

	return s.images.GenerateImage(ctx, p)
}

// RequestCoverImage illustrates a cover for theme. It does not need a story.
func (s *StorybookService) RequestCoverImage(ctx context.Context, theme string) (string, error) {
	p, err := prompt.CoverPrompt(theme)
	if err != nil {
		return "", err
	}
	return s.images.GenerateImage(ctx, p)
}
