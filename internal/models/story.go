package models

// Story is the structured result of a story generation request.
type Story struct {
	Storyline  string      `json:"storyline"`
	Characters []Character `json:"characters"`
	Scenes     []Scene     `json:"scenes"`
}

// Character describes a story character. Description is used verbatim in image prompts.
type Character struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Scene is one illustrated beat of the story.
type Scene struct {
	SceneNumber int      `json:"scene_number"`
	Description string   `json:"description"`
	Characters  []string `json:"characters"`
}

// FindCharacter returns the character with exactly the given name.
func (s *Story) FindCharacter(name string) (Character, bool) {
	for _, c := range s.Characters {
		if c.Name == name {
			return c, true
		}
	}
	return Character{}, false
}

// Scene returns the scene at 1-based position number.
func (s *Story) Scene(number int) (Scene, bool) {
	if number < 1 || number > len(s.Scenes) {
		return Scene{}, false
	}
	return s.Scenes[number-1], true
}
