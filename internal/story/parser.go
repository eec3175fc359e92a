package story

import (
	"encoding/json"
	"errors"
	"strings"

	"storybook-server/internal/models"
)

var errNoJSONObject = errors.New("no JSON object found in the response")

// ExtractJSON returns the text between the first '{' and the last '}' inclusive.
// Brace balance inside that range is not checked.
func ExtractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", &models.ParseError{Raw: raw, Err: errNoJSONObject}
	}
	return raw[start : end+1], nil
}

// Parse extracts and decodes a story from raw chat output. It does not normalize.
func Parse(raw string) (*models.Story, error) {
	body, err := ExtractJSON(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}

	var st models.Story
	if err := json.Unmarshal([]byte(body), &st); err != nil {
		return nil, &models.ParseError{Raw: body, Err: err}
	}
	return &st, nil
}
