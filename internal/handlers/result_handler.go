package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"github.com/SAP-F-2025/exam-portal-service/internal/services"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
	exportService services.ExportService
}

func NewResultHandler(resultService services.ResultService, exportService services.ExportService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
		exportService: exportService,
	}
}

// ListTestResults lists attempts on a test for its owner
func (h *ResultHandler) ListTestResults(c *gin.Context) {
	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	filters := repositories.AttemptFilters{
		Limit:     parseIntQuery(c, "limit", 50),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("submitted"); raw != "" {
		if submitted, err := strconv.ParseBool(raw); err == nil {
			filters.Submitted = &submitted
		}
	}

	attempts, total, err := h.resultService.ListByTest(c.Request.Context(), testID, identity.ID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: attempts, Total: total})
}

// ListOwnResults lists the caller's finalized attempts
func (h *ResultHandler) ListOwnResults(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	filters := repositories.AttemptFilters{
		Limit:     parseIntQuery(c, "limit", 50),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	results, total, err := h.resultService.ListOwn(c.Request.Context(), identity.ID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: results, Total: total})
}

// GetAttemptDetail returns the full graded record for the test's owner
func (h *ResultHandler) GetAttemptDetail(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	attempt, err := h.resultService.GetDetail(c.Request.Context(), attemptID, identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// GetProctoringLog returns an attempt's recorded integrity events
func (h *ResultHandler) GetProctoringLog(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	log, err := h.resultService.ProctoringLog(c.Request.Context(), attemptID, identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: log, Total: int64(len(log))})
}

// ExportTestResults streams a test's results as an xlsx workbook
func (h *ResultHandler) ExportTestResults(c *gin.Context) {
	h.LogRequest(c, "Exporting test results")

	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportTestResults(c.Request.Context(), testID, identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("test-%d-results.xlsx", testID)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
