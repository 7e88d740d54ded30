package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"github.com/SAP-F-2025/exam-portal-service/internal/services"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	BaseHandler
	testService services.TestService
}

func NewTestHandler(testService services.TestService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		testService: testService,
	}
}

// CreateTest creates a new draft test
func (h *TestHandler) CreateTest(c *gin.Context) {
	h.LogRequest(c, "Creating test")

	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	test, err := h.testService.Create(c.Request.Context(), &req, identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// GetTest retrieves a test with questions for its owner
func (h *TestHandler) GetTest(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	test, err := h.testService.GetForOwner(c.Request.Context(), id, identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// GetTestView returns the sanitized, answer-key-free view of a published test
func (h *TestHandler) GetTestView(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.testService.GetForStudent(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ListTests lists the caller's own tests
func (h *TestHandler) ListTests(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	filters := repositories.TestFilters{
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TestStatus(raw)
		filters.Status = &status
	}

	tests, total, err := h.testService.ListByCreator(c.Request.Context(), identity.ID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: tests, Total: total})
}

// ListActiveTests lists published tests available to students
func (h *TestHandler) ListActiveTests(c *gin.Context) {
	filters := repositories.TestFilters{
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	tests, total, err := h.testService.ListActive(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: tests, Total: total})
}

// UpdateTest modifies a draft test
func (h *TestHandler) UpdateTest(c *gin.Context) {
	h.LogRequest(c, "Updating test")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.UpdateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	test, err := h.testService.Update(c.Request.Context(), id, &req, identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// DeleteTest removes a test and its attempts
func (h *TestHandler) DeleteTest(c *gin.Context) {
	h.LogRequest(c, "Deleting test")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), id, identity.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Test deleted"})
}

// PublishTest transitions a draft test to active
func (h *TestHandler) PublishTest(c *gin.Context) {
	h.LogRequest(c, "Publishing test")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.testService.Publish(c.Request.Context(), id, identity.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Test published"})
}
