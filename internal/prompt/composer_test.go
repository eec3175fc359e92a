package prompt

import (
	"testing"

	"storybook-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStory() *models.Story {
	return &models.Story{
		Storyline: "Two friends search for a lost star.",
		Characters: []models.Character{
			{Name: "Luna", Description: "a girl with silver braids and a blue cloak"},
			{Name: "Bramble", Description: "a round hedgehog wearing a tiny scarf"},
		},
	}
}

func TestScenePrompt_WithCharacters(t *testing.T) {
	scene := models.Scene{SceneNumber: 3, Description: "They climb the moonlit hill", Characters: []string{"Luna", "Bramble"}}

	got, err := ScenePrompt(testStory(), scene)

	require.NoError(t, err)
	assert.Equal(t,
		"Create an image in a vibrant Disney-like cartoon style, inspired by Tangled or Frozen, "+
			"featuring Luna, a girl with silver braids and a blue cloak and Bramble, a round hedgehog wearing a tiny scarf. "+
			"The scene is: They climb the moonlit hill. Ensure consistent character appearances and art style.",
		got)
}

func TestScenePrompt_WithoutCharacters(t *testing.T) {
	scene := models.Scene{SceneNumber: 1, Description: "A quiet village at dusk", Characters: []string{}}

	got, err := ScenePrompt(testStory(), scene)

	require.NoError(t, err)
	assert.Equal(t,
		"Create an image in a vibrant Disney-like cartoon style, inspired by Tangled or Frozen, depicting the scene: A quiet village at dusk.",
		got)
}

func TestScenePrompt_UnknownCharacter(t *testing.T) {
	scene := models.Scene{SceneNumber: 7, Description: "A storm rolls in", Characters: []string{"Luna", "Zephyr"}}

	_, err := ScenePrompt(testStory(), scene)

	require.ErrorIs(t, err, models.ErrUnknownCharacter)
	assert.Contains(t, err.Error(), "Zephyr")
}

func TestScenePrompt_NameMatchIsExact(t *testing.T) {
	scene := models.Scene{SceneNumber: 2, Description: "Luna waves", Characters: []string{"luna"}}

	_, err := ScenePrompt(testStory(), scene)

	assert.ErrorIs(t, err, models.ErrUnknownCharacter)
}

func TestScenePrompt_MissingDescription(t *testing.T) {
	scene := models.Scene{SceneNumber: 4, Description: "  ", Characters: []string{"Luna"}}

	_, err := ScenePrompt(testStory(), scene)

	assert.ErrorIs(t, err, models.ErrSceneIncomplete)
}

func TestCoverPrompt(t *testing.T) {
	got, err := CoverPrompt("  a brave little toaster ")

	require.NoError(t, err)
	assert.Equal(t,
		"Create a vibrant Disney-style storybook cover inspired by Tangled or Frozen, based on the theme: "+
			"'a brave little toaster'. Include dreamy background elements, warm lighting, and an inviting "+
			"sense of adventure. No text. Just a magical illustrated cover.",
		got)
}

func TestCoverPrompt_EmptyTheme(t *testing.T) {
	_, err := CoverPrompt(" \t")

	assert.ErrorIs(t, err, models.ErrValidation)
}
