package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"storybook-server/internal/models"
)

// Job states reported by the audio API.
const (
	audioStatusQueued    = "queued"
	audioStatusCompleted = "completed"
	audioStatusError     = "error"
)

const maxErrorBody = 4 << 10

// AudioConfig configures the audio generation client.
type AudioConfig struct {
	APIKey       string
	URL          string
	Model        string
	Steps        int
	PollInterval time.Duration
	PollAttempts int
	Timeout      time.Duration
}

type audioJobRequest struct {
	Model        string `json:"model"`
	Prompt       string `json:"prompt"`
	SecondsStart int    `json:"seconds_start"`
	SecondsTotal int    `json:"seconds_total"`
	Steps        int    `json:"steps"`
}

type audioJobResponse struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	AudioFile *audioFile      `json:"audio_file,omitempty"`
	Error     json.RawMessage `json:"error,omitempty"`
}

type audioFile struct {
	URL string `json:"url"`
}

// AudioClient submits music generation jobs and polls them until they finish.
type AudioClient struct {
	cfg        AudioConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAudioClient creates an AudioClient. An empty API key is accepted; calls
// then fail with models.ErrMissingCredential.
func NewAudioClient(cfg AudioConfig, logger *zap.Logger) *AudioClient {
	return &AudioClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("AudioClient"),
	}
}

// GenerateAudio starts a job for prompt and returns the URL of the finished
// track. Between status requests it waits PollInterval; after PollAttempts
// requests without a final state it gives up with models.ErrGenerationTimeout.
func (c *AudioClient) GenerateAudio(ctx context.Context, prompt string, durationSeconds int) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: AIMLAPI_KEY", models.ErrMissingCredential)
	}

	started := time.Now()
	audioURL, attempts, err := c.generate(ctx, prompt, durationSeconds)
	observe(serviceAudio, c.cfg.Model, statusLabel(err), started)
	if attempts > 0 {
		aiAudioPollAttempts.Observe(float64(attempts))
	}
	return audioURL, err
}

func (c *AudioClient) generate(ctx context.Context, prompt string, durationSeconds int) (string, int, error) {
	log := c.logger.With(zap.String("model", c.cfg.Model), zap.Int("seconds_total", durationSeconds))

	job, err := c.submit(ctx, prompt, durationSeconds)
	if err != nil {
		log.Error("Failed to start audio generation", zap.Error(err))
		return "", 0, err
	}
	log = log.With(zap.String("generation_id", job.ID))
	log.Info("Audio generation queued")

	for attempt := 1; attempt <= c.cfg.PollAttempts; attempt++ {
		status, err := c.fetch(ctx, job.ID)
		if err != nil {
			log.Error("Failed to fetch audio generation status", zap.Int("attempt", attempt), zap.Error(err))
			return "", attempt, err
		}

		switch status.Status {
		case audioStatusCompleted:
			if status.AudioFile == nil || status.AudioFile.URL == "" {
				log.Error("Audio generation completed without a file URL")
				return "", attempt, fmt.Errorf("%w: completed audio job %s has no file URL", models.ErrMalformedResponse, job.ID)
			}
			log.Info("Audio generated", zap.Int("attempt", attempt), zap.String("url", status.AudioFile.URL))
			return status.AudioFile.URL, attempt, nil
		case audioStatusError:
			msg := errorText(status.Error)
			log.Error("Audio generation reported an error", zap.String("error_detail", msg))
			return "", attempt, &models.UpstreamError{
				Service: serviceAudio,
				Kind:    models.ErrUpstream,
				Body:    msg,
				Err:     fmt.Errorf("generation %s failed: %s", job.ID, msg),
			}
		}
		log.Debug("Audio generation pending", zap.Int("attempt", attempt), zap.String("status", status.Status))

		if attempt == c.cfg.PollAttempts {
			break
		}
		wait := time.NewTimer(c.cfg.PollInterval)
		select {
		case <-ctx.Done():
			wait.Stop()
			log.Warn("Audio polling cancelled", zap.Int("attempt", attempt), zap.Error(ctx.Err()))
			return "", attempt, ctx.Err()
		case <-wait.C:
		}
	}

	log.Error("Audio generation timed out", zap.Int("attempts", c.cfg.PollAttempts))
	return "", c.cfg.PollAttempts, fmt.Errorf("%w: audio job %s not finished after %d status checks",
		models.ErrGenerationTimeout, job.ID, c.cfg.PollAttempts)
}

func (c *AudioClient) submit(ctx context.Context, prompt string, durationSeconds int) (*audioJobResponse, error) {
	body, err := json.Marshal(audioJobRequest{
		Model:        c.cfg.Model,
		Prompt:       prompt,
		SecondsStart: 1,
		SecondsTotal: durationSeconds,
		Steps:        c.cfg.Steps,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audio request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create audio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var job audioJobResponse
	if err := c.do(req, &job); err != nil {
		return nil, err
	}
	if job.ID == "" || job.Status != audioStatusQueued {
		return nil, &models.UpstreamError{
			Service: serviceAudio,
			Kind:    models.ErrUpstream,
			Err:     fmt.Errorf("unexpected job state: id=%q status=%q", job.ID, job.Status),
		}
	}
	return &job, nil
}

func (c *AudioClient) fetch(ctx context.Context, generationID string) (*audioJobResponse, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid audio API URL: %w", err)
	}
	q := u.Query()
	q.Set("generation_id", generationID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}
	req.Header.Set("Accept", "*/*")

	var status audioJobResponse
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// do sends req with credentials and decodes a 2xx JSON body into out.
func (c *AudioClient) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return &models.UpstreamError{Service: serviceAudio, Kind: models.ErrUpstream, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &models.UpstreamError{
			Service:    serviceAudio,
			Kind:       models.ErrUpstream,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("%s %s returned %s", req.Method, req.URL.Path, resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: cannot decode audio API response: %v", models.ErrMalformedResponse, err)
	}
	return nil
}

// errorText renders the "error" field, which the API sends either as a
// string or as an object.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown error"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return strings.TrimSpace(string(raw))
}
