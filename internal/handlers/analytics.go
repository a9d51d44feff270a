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

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// RunDay handles POST /api/v1/analytics/run
func (h *AnalyticsHandler) RunDay(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	var req models.RunAnalyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), err.Error(), "A date (YYYY-MM-DD) is required"))
		return
	}

	resp, err := h.analyticsService.RunDay(c.Request.Context(), userID.(string), req.Date)
	if err != nil {
		writeAnalyticsError(c, err, req.Date)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History handles GET /api/v1/analytics/history
func (h *AnalyticsHandler) History(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c),
			"start_date and end_date query parameters are required",
			"Please provide a date range (YYYY-MM-DD)"))
		return
	}

	resp, err := h.analyticsService.History(c.Request.Context(), userID.(string), startDate, endDate)
	if err != nil {
		writeAnalyticsError(c, err, startDate+".."+endDate)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func writeAnalyticsError(c *gin.Context, err error, dateValue string) {
	requestID := apierror.GetRequestID(c)
	if errors.Is(err, service.ErrInvalidDate) {
		apierror.WriteProblem(c, apierror.NewInvalidDateError(requestID, "date", dateValue))
		return
	}
	logger.FromContext(c.Request.Context()).Error("analytics request failed", logger.Err(err))
	apierror.WriteProblem(c, apierror.NewInternalError(requestID))
}
