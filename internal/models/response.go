package models

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error       string `json:"error"`
	Response    string `json:"response,omitempty"`
	Details     string `json:"details,omitempty"`
	APIResponse string `json:"api_response,omitempty"`
}

// StoryRequest is the body of /generate_story and /generate_cover_image.
type StoryRequest struct {
	Theme string `json:"theme"`
}

// SceneImageRequest is the body of /generate_scene_image.
type SceneImageRequest struct {
	SceneNumber *int `json:"scene_number"`
}

// ImageResponse carries a base64 encoded PNG.
type ImageResponse struct {
	ImageB64 string `json:"image_b64"`
}

// MusicResponse carries the URL of the generated background track.
type MusicResponse struct {
	MusicURL string `json:"music_url"`
}
