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

type ConcordanceHandler struct {
	concordanceService service.ConcordanceService
}

// NewConcordanceHandler creates a new concordance handler
func NewConcordanceHandler(concordanceService service.ConcordanceService) *ConcordanceHandler {
	return &ConcordanceHandler{
		concordanceService: concordanceService,
	}
}

// RunDay handles POST /api/v1/concordance/run
func (h *ConcordanceHandler) RunDay(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	var req models.RunConcordanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), err.Error(), "A date (YYYY-MM-DD) is required"))
		return
	}

	resp, err := h.concordanceService.RunDay(c.Request.Context(), userID.(string), &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		if errors.Is(err, service.ErrInvalidDate) {
			apierror.WriteProblem(c, apierror.NewInvalidDateError(requestID, "date", req.Date))
			return
		}
		logger.FromContext(c.Request.Context()).Error("concordance run failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History handles GET /api/v1/concordance/history
func (h *ConcordanceHandler) History(c *gin.Context) {
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

	resp, err := h.concordanceService.History(c.Request.Context(), userID.(string), startDate, endDate)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		if errors.Is(err, service.ErrInvalidDate) {
			apierror.WriteProblem(c, apierror.NewInvalidDateError(requestID, "date", startDate+".."+endDate))
			return
		}
		logger.FromContext(c.Request.Context()).Error("concordance history failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, resp)
}
