package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

// ImageClient renders one PNG per prompt.
type ImageClient struct {
	client *openai.Client
	hasKey bool
	model  string
	size   string
	logger *zap.Logger
}

// NewImageClient creates an ImageClient. An empty API key is accepted; calls
// then fail with models.ErrMissingCredential.
func NewImageClient(cfg OpenAIConfig, model, size string, logger *zap.Logger) *ImageClient {
	return &ImageClient{
		client: cfg.client(),
		hasKey: cfg.APIKey != "",
		model:  model,
		size:   size,
		logger: logger.Named("ImageClient"),
	}
}

// GenerateImage returns the base64 encoded image for prompt.
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if !c.hasKey {
		return "", fmt.Errorf("%w: OPENAI_API_KEY", models.ErrMissingCredential)
	}

	req := openai.ImageRequest{
		Prompt: prompt,
		Model:  c.model,
		N:      1,
		Size:   c.size,
	}
	// gpt-image models always answer with base64 and reject response_format.
	if !strings.HasPrefix(c.model, "gpt-image") {
		req.ResponseFormat = openai.CreateImageResponseFormatB64JSON
	}

	log := c.logger.With(zap.String("model", c.model), zap.String("size", c.size))
	log.Debug("Requesting image", zap.String("prompt", prompt))

	started := time.Now()
	resp, err := c.client.CreateImage(ctx, req)
	if err != nil {
		ue := classifyStatus(upstreamError(serviceImage, err))
		observe(serviceImage, c.model, statusLabel(ue), started)
		log.Error("Image generation failed", zap.Int("status_code", ue.StatusCode), zap.Error(err))
		return "", ue
	}
	if len(resp.Data) == 0 {
		observe(serviceImage, c.model, "malformed_response", started)
		log.Error("Image response has no data")
		return "", fmt.Errorf("%w: no image data returned by API", models.ErrMalformedResponse)
	}
	if resp.Data[0].B64JSON == "" {
		observe(serviceImage, c.model, "malformed_response", started)
		log.Error("Image response has no base64 payload", zap.String("url", resp.Data[0].URL))
		return "", fmt.Errorf("%w: base64 image data not found in API response", models.ErrMalformedResponse)
	}

	observe(serviceImage, c.model, statusSuccess, started)
	log.Info("Image generated", zap.Duration("duration", time.Since(started)), zap.Int("b64_len", len(resp.Data[0].B64JSON)))
	return resp.Data[0].B64JSON, nil
}
