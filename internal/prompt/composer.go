package prompt

import (
	"fmt"
	"strings"

	"storybook-server/internal/models"
)

const (
	stylePrefix = "Create an image in a vibrant Disney-like cartoon style, inspired by Tangled or Frozen"

	coverTemplate = "Create a vibrant Disney-style storybook cover inspired by Tangled or Frozen, " +
		"based on the theme: '%s'. Include dreamy background elements, warm lighting, " +
		"and an inviting sense of adventure. No text. Just a magical illustrated cover."
)

// ScenePrompt builds the image prompt for one scene, embedding the full
// description of every character that appears in it.
func ScenePrompt(st *models.Story, scene models.Scene) (string, error) {
	if strings.TrimSpace(scene.Description) == "" {
		return "", fmt.Errorf("%w: scene %d has no description", models.ErrSceneIncomplete, scene.SceneNumber)
	}

	if len(scene.Characters) == 0 {
		return fmt.Sprintf("%s, depicting the scene: %s.", stylePrefix, scene.Description), nil
	}

	parts := make([]string, 0, len(scene.Characters))
	for _, name := range scene.Characters {
		ch, ok := st.FindCharacter(name)
		if !ok {
			return "", fmt.Errorf("%w: %q in scene %d", models.ErrUnknownCharacter, name, scene.SceneNumber)
		}
		parts = append(parts, fmt.Sprintf("%s, %s", ch.Name, ch.Description))
	}

	return fmt.Sprintf(
		"%s, featuring %s. The scene is: %s. Ensure consistent character appearances and art style.",
		stylePrefix, strings.Join(parts, " and "), scene.Description,
	), nil
}

// CoverPrompt builds the image prompt for the storybook cover.
func CoverPrompt(theme string) (string, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return "", fmt.Errorf("%w: theme is required", models.ErrValidation)
	}
	return fmt.Sprintf(coverTemplate, theme), nil
}
