package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-portal-service/internal/services"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// StartAttempt begins or resumes the caller's attempt on a test
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	h.LogRequest(c, "Starting attempt")

	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	resp, err := h.attemptService.Start(c.Request.Context(), testID, identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if resp.Resumed {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// SubmitAttempt finalizes and grades the caller's attempt
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	h.LogRequest(c, "Submitting attempt")

	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	receipt, err := h.attemptService.Submit(c.Request.Context(), testID, identity.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// ReportProctoringEvent records a client-side integrity event
func (h *AttemptHandler) ReportProctoringEvent(c *gin.Context) {
	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.ReportProctoringEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.attemptService.ReportProctoringEvent(c.Request.Context(), testID, identity.ID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: "Event recorded"})
}
