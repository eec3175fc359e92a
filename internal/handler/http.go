package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storybook-server/internal/middleware"
	"storybook-server/internal/models"
)

// Storybook is the set of operations exposed over HTTP.
type Storybook interface {
	RequestStory(ctx context.Context, sessionID, theme string) (*models.Story, error)
	RequestMusic(ctx context.Context, sessionID string) (string, error)
	RequestSceneImage(ctx context.Context, sessionID string, sceneNumber int) (string, error)
	RequestCoverImage(ctx context.Context, theme string) (string, error)
}

// StorybookHandler serves the storybook generation endpoints. It expects the
// session middleware to run before it.
type StorybookHandler struct {
	svc    Storybook
	logger *zap.Logger
}

func NewStorybookHandler(svc Storybook, logger *zap.Logger) *StorybookHandler {
	return &StorybookHandler{
		svc:    svc,
		logger: logger.Named("StorybookHandler"),
	}
}

func (h *StorybookHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/generate_story", h.generateStory)
	router.POST("/generate_music", h.generateMusic)
	router.POST("/generate_scene_image", h.generateSceneImage)
	router.POST("/generate_cover_image", h.generateCoverImage)
}

// @Summary Generate a story
// @Description Generates a 20 scene story for the theme and stores it in the session
// @Tags storybook
// @Accept json
// @Produce json
// @Param request body models.StoryRequest true "Story theme"
// @Success 200 {object} models.Story
// @Failure 400 {object} models.ErrorResponse "Missing theme"
// @Failure 500 {object} models.ErrorResponse "Generation or parsing failed"
// @Router /generate_story [post]
func (h *StorybookHandler) generateStory(c *gin.Context) {
	var req models.StoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}

	st, err := h.svc.RequestStory(c.Request.Context(), middleware.SessionID(c), req.Theme)
	if err != nil {
		h.handleServiceError(c, err, "generate story")
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary Generate background music
// @Tags storybook
// @Produce json
// @Success 200 {object} models.MusicResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /generate_music [post]
func (h *StorybookHandler) generateMusic(c *gin.Context) {
	url, err := h.svc.RequestMusic(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.handleServiceError(c, err, "generate music")
		return
	}
	c.JSON(http.StatusOK, models.MusicResponse{MusicURL: url})
}

// @Summary Illustrate a scene of the current story
// @Tags storybook
// @Accept json
// @Produce json
// @Param request body models.SceneImageRequest true "1-based scene number"
// @Success 200 {object} models.ImageResponse
// @Failure 400 {object} models.ErrorResponse "No story yet or invalid scene number"
// @Failure 403 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /generate_scene_image [post]
func (h *StorybookHandler) generateSceneImage(c *gin.Context) {
	var req models.SceneImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid scene number."})
		return
	}
	if req.SceneNumber == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid scene number."})
		return
	}

	img, err := h.svc.RequestSceneImage(c.Request.Context(), middleware.SessionID(c), *req.SceneNumber)
	if err != nil {
		h.handleServiceError(c, err, "generate image")
		return
	}
	c.JSON(http.StatusOK, models.ImageResponse{ImageB64: img})
}

// @Summary Illustrate a cover for a theme
// @Tags storybook
// @Accept json
// @Produce json
// @Param request body models.StoryRequest true "Story theme"
// @Success 200 {object} models.ImageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /generate_cover_image [post]
func (h *StorybookHandler) generateCoverImage(c *gin.Context) {
	var req models.StoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}

	img, err := h.svc.RequestCoverImage(c.Request.Context(), req.Theme)
	if err != nil {
		h.handleServiceError(c, err, "generate cover image")
		return
	}
	c.JSON(http.StatusOK, models.ImageResponse{ImageB64: img})
}
