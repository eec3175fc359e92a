package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

const (
	msgStoryFirst  = "Please generate the story first."
	msgRateLimited = "Rate limit exceeded. Please wait before trying again."
	msgForbidden   = "Failed to generate image: 403 Forbidden. Check if your API key has access to gpt-image-1, " +
		"verify billing status, or contact OpenAI support."
)

// handleServiceError maps a service error to a status code and an
// ErrorResponse, then aborts the request. action reads like "generate image".
func (h *StorybookHandler) handleServiceError(c *gin.Context, err error, action string) {
	var (
		statusCode int
		errResp    models.ErrorResponse
		upErr      *models.UpstreamError
		parseErr   *models.ParseError
	)

	switch {
	case errors.Is(err, models.ErrStoryNotGenerated):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Error: msgStoryFirst}
	case errors.Is(err, models.ErrValidation):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, models.ErrRateLimited):
		statusCode = http.StatusTooManyRequests
		errResp = models.ErrorResponse{Error: msgRateLimited}
	case errors.Is(err, models.ErrPermissionDenied):
		statusCode = http.StatusForbidden
		errResp = models.ErrorResponse{Error: msgForbidden, Details: err.Error()}
		if errors.As(err, &upErr) {
			errResp.APIResponse = upErr.Body
		}
	case errors.As(err, &parseErr):
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: fmt.Sprintf("Failed to parse JSON: %v", parseErr.Err), Response: parseErr.Raw}
	case errors.As(err, &upErr):
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{
			Error:       fmt.Sprintf("Failed to %s: %s service error", action, upErr.Service),
			Details:     err.Error(),
			APIResponse: upErr.Body,
		}
	case errors.Is(err, models.ErrMissingCredential):
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: fmt.Sprintf("Failed to %s: the generation service is not configured", action)}
	case errors.Is(err, models.ErrGenerationTimeout),
		errors.Is(err, models.ErrMalformedResponse),
		errors.Is(err, models.ErrUnknownCharacter),
		errors.Is(err, models.ErrSceneIncomplete):
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: fmt.Sprintf("Failed to %s: %v", action, err)}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("Request cancelled before completion", zap.String("action", action), zap.Error(err))
		statusCode = http.StatusServiceUnavailable
		errResp = models.ErrorResponse{Error: fmt.Sprintf("Failed to %s: request cancelled or timed out", action)}
	default:
		h.logger.Error("Unhandled internal error in handleServiceError", zap.String("action", action), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: "An unexpected internal error occurred"}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(statusCode, errResp)
}
