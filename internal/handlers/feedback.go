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

type FeedbackHandler struct {
	feedbackService service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackService service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
	}
}

// Submit handles POST /api/v1/recommendations/:id/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	recommendationID := c.Param("id")
	if recommendationID == "" {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c),
			"missing recommendation id", "A recommendation id is required"))
		return
	}

	var req models.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{
			{Field: "rating", Message: "must be an integer between 1 and 5", Code: "invalid_rating"},
		}))
		return
	}

	resp, err := h.feedbackService.Submit(c.Request.Context(), userID.(string), recommendationID, &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		switch {
		case errors.Is(err, service.ErrRecommendationNotFound):
			apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "recommendation", recommendationID))
		case errors.Is(err, service.ErrRatingWindowClosed):
			apierror.WriteProblem(c, apierror.NewRatingWindowClosedError(requestID))
		default:
			logger.FromContext(c.Request.Context()).Error("feedback submission failed", logger.Err(err))
			apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
