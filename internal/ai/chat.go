package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

const storySystemPrompt = `Generate a children's story based on the given theme.
The story MUST have EXACTLY 20 scenes - no more, no less.
Define the main characters with detailed physical descriptions suitable for image generation.
Output in JSON format with the following structure:
{
  "storyline": "Overall story summary",
  "characters": [
    {"name": "Character Name", "description": "Detailed physical description"}
  ],
  "scenes": [
    {"scene_number": 1, "description": "Scene description", "characters": ["Character Name"]},
    {"scene_number": 2, "description": "Scene description", "characters": ["Character Name"]},
    ...
    {"scene_number": 20, "description": "Scene description", "characters": ["Character Name"]}
  ]
}
You MUST include exactly 20 scenes numbered from 1 to 20.
Every name listed in a scene's "characters" must match a name in "characters" exactly.
Ensure character descriptions are consistent and detailed enough for generating consistent images in a Disney-like cartoon style.
Your response must be a valid JSON object and nothing else. Do not include any additional text, explanations, or code blocks. Start directly with the '{' and end with '}'.`

// OpenAIConfig holds the settings shared by the chat and image clients.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // empty means the public OpenAI endpoint
	Timeout time.Duration
}

func (c OpenAIConfig) client() *openai.Client {
	config := openai.DefaultConfig(c.APIKey)
	if c.BaseURL != "" {
		config.BaseURL = c.BaseURL
	}
	config.HTTPClient = &http.Client{Timeout: c.Timeout}
	return openai.NewClientWithConfig(config)
}

// ChatClient produces raw story text from a chat-completion model.
type ChatClient struct {
	client    *openai.Client
	hasKey    bool
	model     string
	maxTokens int
	jsonMode  bool
	logger    *zap.Logger
}

// NewChatClient creates a ChatClient. An empty API key is accepted; calls then
// fail with models.ErrMissingCredential.
func NewChatClient(cfg OpenAIConfig, model string, maxTokens int, jsonMode bool, logger *zap.Logger) *ChatClient {
	return &ChatClient{
		client:    cfg.client(),
		hasKey:    cfg.APIKey != "",
		model:     model,
		maxTokens: maxTokens,
		jsonMode:  jsonMode,
		logger:    logger.Named("ChatClient"),
	}
}

// GenerateStory asks the model for a story about theme and returns the
// message content untouched.
func (c *ChatClient) GenerateStory(ctx context.Context, theme string) (string, error) {
	if !c.hasKey {
		return "", fmt.Errorf("%w: OPENAI_API_KEY", models.ErrMissingCredential)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: storySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: theme},
		},
		MaxTokens: c.maxTokens,
	}
	if c.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	log := c.logger.With(zap.String("model", c.model), zap.Int("theme_len", len(theme)))
	log.Debug("Requesting story completion")

	started := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		ue := upstreamError(serviceChat, err)
		observe(serviceChat, c.model, statusLabel(ue), started)
		log.Error("Chat completion failed", zap.Int("status_code", ue.StatusCode), zap.Error(err))
		return "", ue
	}
	if len(resp.Choices) == 0 {
		observe(serviceChat, c.model, "malformed_response", started)
		log.Error("Chat completion returned no choices")
		return "", fmt.Errorf("%w: chat completion returned no choices", models.ErrMalformedResponse)
	}

	observe(serviceChat, c.model, statusSuccess, started)
	log.Info("Story completion received",
		zap.Duration("duration", time.Since(started)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
	)
	return resp.Choices[0].Message.Content, nil
}
