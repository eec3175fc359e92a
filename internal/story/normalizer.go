package story

import "storybook-server/internal/models"

// SceneCount is the number of scenes every stored story has.
const SceneCount = 20

const continuationDescription = "Continuation of the story where the characters conclude their adventure."

// Normalize pads or truncates st.Scenes to SceneCount and renumbers them 1..SceneCount.
// It reports whether the scene count had to be adjusted.
func Normalize(st *models.Story) bool {
	if st.Characters == nil {
		st.Characters = []models.Character{}
	}

	adjusted := len(st.Scenes) != SceneCount

	if len(st.Scenes) > SceneCount {
		st.Scenes = st.Scenes[:SceneCount]
	}
	for len(st.Scenes) < SceneCount {
		st.Scenes = append(st.Scenes, continuationScene(st))
	}

	for i := range st.Scenes {
		st.Scenes[i].SceneNumber = i + 1
		if st.Scenes[i].Characters == nil {
			st.Scenes[i].Characters = []string{}
		}
	}
	return adjusted
}

// continuationScene references the first character only, so padded scenes
// always point at an existing character or at none.
func continuationScene(st *models.Story) models.Scene {
	chars := []string{}
	if len(st.Characters) > 0 {
		chars = append(chars, st.Characters[0].Name)
	}
	return models.Scene{
		Description: continuationDescription,
		Characters:  chars,
	}
}
