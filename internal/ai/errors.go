package ai

import (
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"storybook-server/internal/models"
)

// upstreamError wraps a go-openai failure. The status code and message are
// taken from the API error when the server answered.
func upstreamError(service string, err error) *models.UpstreamError {
	ue := &models.UpstreamError{Service: service, Kind: models.ErrUpstream, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		ue.StatusCode = apiErr.HTTPStatusCode
		ue.Body = apiErr.Message
	case errors.As(err, &reqErr):
		ue.StatusCode = reqErr.HTTPStatusCode
		ue.Body = reqErr.Error()
	}
	return ue
}

// classifyStatus narrows the kind of ue from its HTTP status.
func classifyStatus(ue *models.UpstreamError) *models.UpstreamError {
	switch ue.StatusCode {
	case http.StatusTooManyRequests:
		ue.Kind = models.ErrRateLimited
	case http.StatusForbidden:
		ue.Kind = models.ErrPermissionDenied
	}
	return ue
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, models.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, models.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, models.ErrGenerationTimeout):
		return "timeout"
	case errors.Is(err, models.ErrMalformedResponse):
		return "malformed_response"
	default:
		return statusError
	}
}
