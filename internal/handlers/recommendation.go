package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moodhabit/backend/internal/apierror"
	"github.com/moodhabit/backend/internal/logger"
	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/internal/service"
)

type RecommendationHandler struct {
	recommendationService service.RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendationService service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationService: recommendationService,
	}
}

// Generate handles POST /api/v1/recommendations/generate
func (h *RecommendationHandler) Generate(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	var req models.GenerateRecommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), err.Error(), "A mood_score_id is required"))
		return
	}

	resp, err := h.recommendationService.Generate(c.Request.Context(), userID.(string), &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		if errors.Is(err, service.ErrMoodScoreNotFound) {
			apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "mood score", req.MoodScoreID))
			return
		}
		logger.FromContext(c.Request.Context()).Error("recommendation generation failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CurrentWeek handles GET /api/v1/recommendations/week
func (h *RecommendationHandler) CurrentWeek(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	resp, err := h.recommendationService.CurrentWeek(c.Request.Context(), userID.(string))
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("weekly recommendation listing failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Resolve handles POST /api/v1/recommendations/resolve
func (h *RecommendationHandler) Resolve(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	var req models.ResolveMoodScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), err.Error(), "date and category are required"))
		return
	}

	resp, err := h.recommendationService.Resolve(c.Request.Context(), userID.(string), &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		if errors.Is(err, service.ErrInvalidDate) {
			apierror.WriteProblem(c, apierror.NewInvalidDateError(requestID, "date", req.Date))
			return
		}
		logger.FromContext(c.Request.Context()).Error("mood score resolution failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, resp)
}
