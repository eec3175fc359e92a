package story

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"storybook-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeStory(sceneCount int, characters ...string) *models.Story {
	st := &models.Story{Storyline: "A small dragon learns to fly."}
	for _, name := range characters {
		st.Characters = append(st.Characters, models.Character{Name: name, Description: name + " description"})
	}
	for i := 0; i < sceneCount; i++ {
		st.Scenes = append(st.Scenes, models.Scene{
			SceneNumber: (i + 1) * 10,
			Description: fmt.Sprintf("scene %d", i+1),
			Characters:  append([]string{}, characters...),
		})
	}
	return st
}

func assertSequential(t *testing.T, st *models.Story) {
	t.Helper()
	require.Len(t, st.Scenes, SceneCount)
	for i, sc := range st.Scenes {
		assert.Equal(t, i+1, sc.SceneNumber, "scene at index %d", i)
	}
}

func TestNormalize_PadsShortStories(t *testing.T) {
	for n := 0; n < SceneCount; n++ {
		t.Run(fmt.Sprintf("%d scenes", n), func(t *testing.T) {
			st := makeStory(n, "Ember", "Pip")

			adjusted := Normalize(st)

			assert.True(t, adjusted)
			assertSequential(t, st)
			for i := 0; i < n; i++ {
				assert.Equal(t, fmt.Sprintf("scene %d", i+1), st.Scenes[i].Description)
			}
			for _, sc := range st.Scenes[n:] {
				assert.Equal(t, continuationDescription, sc.Description)
				assert.Equal(t, []string{"Ember"}, sc.Characters)
			}
		})
	}
}

func TestNormalize_PaddingWithoutCharacters(t *testing.T) {
	st := makeStory(3)

	Normalize(st)

	assertSequential(t, st)
	assert.NotNil(t, st.Characters)
	for _, sc := range st.Scenes[3:] {
		assert.Empty(t, sc.Characters)
		assert.NotNil(t, sc.Characters)
	}
}

func TestNormalize_TruncatesLongStories(t *testing.T) {
	st := makeStory(27, "Ember")

	adjusted := Normalize(st)

	assert.True(t, adjusted)
	assertSequential(t, st)
	assert.Equal(t, "scene 1", st.Scenes[0].Description)
	assert.Equal(t, "scene 20", st.Scenes[19].Description)
}

func TestNormalize_Idempotent(t *testing.T) {
	st := makeStory(SceneCount, "Ember")
	Normalize(st)
	first := *st
	first.Scenes = append([]models.Scene{}, st.Scenes...)

	adjusted := Normalize(st)

	assert.False(t, adjusted)
	assert.Equal(t, first, *st)
}

func TestNormalize_RenumbersFullStory(t *testing.T) {
	st := makeStory(SceneCount)
	st.Scenes[4].SceneNumber = 99

	adjusted := Normalize(st)

	assert.False(t, adjusted)
	assertSequential(t, st)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"surrounding prose", "Here is your story:\n{\"a\":1}\nEnjoy!", `{"a":1}`},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
		{"two objects span outer bounds", `{"a":1} and {"b":2}`, `{"a":1} and {"b":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	for _, raw := range []string{"", "no json here", "} reversed {", "{ unterminated"} {
		_, err := ExtractJSON(raw)
		require.Error(t, err, raw)

		var perr *models.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, raw, perr.Raw)
		assert.ErrorIs(t, err, models.ErrStoryParse)
	}
}

func TestParse_ProseWrappedStory(t *testing.T) {
	raw := `Sure! Here's the story you asked for:
{
  "storyline": "A dragon who is afraid of heights learns to fly.",
  "characters": [{"name": "Ember", "description": "a small red dragon with golden eyes"}],
  "scenes": [
    {"scene_number": 1, "description": "Ember looks down from the cliff.", "characters": ["Ember"]},
    {"scene_number": 2, "description": "Ember takes a deep breath.", "characters": ["Ember"]}
  ]
}
I hope you like it!`

	st, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "A dragon who is afraid of heights learns to fly.", st.Storyline)
	require.Len(t, st.Characters, 1)
	assert.Equal(t, "Ember", st.Characters[0].Name)
	require.Len(t, st.Scenes, 2)

	Normalize(st)
	assertSequential(t, st)
}

func TestParse_TwoObjectsFail(t *testing.T) {
	_, err := Parse(`{"storyline":"a"} {"storyline":"b"}`)

	var perr *models.ParseError
	require.True(t, errors.As(err, &perr))
	assert.True(t, strings.HasPrefix(perr.Raw, `{"storyline":"a"}`))
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse(`{"storyline": "oops",}`)

	assert.ErrorIs(t, err, models.ErrStoryParse)
}
