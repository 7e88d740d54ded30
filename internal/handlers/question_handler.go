package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"github.com/SAP-F-2025/exam-portal-service/internal/services"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// CreateQuestion creates a new question owned by the caller
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req, identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestion retrieves one of the caller's questions by ID
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id, identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions lists the caller's questions with pagination
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	filters := repositories.QuestionFilters{
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("type"); raw != "" {
		qType := models.QuestionType(raw)
		filters.Type = &qType
	}

	questions, total, err := h.questionService.ListByCreator(c.Request.Context(), identity.ID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: questions, Total: total})
}

// DeleteQuestion removes an unreferenced question
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	h.LogRequest(c, "Deleting question")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id, identity.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
