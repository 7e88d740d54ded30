package handlers

import (
	"github.com/SAP-F-2025/exam-portal-service/internal/auth"
	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/services"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	questionHandler *QuestionHandler
	testHandler     *TestHandler
	attemptHandler  *AttemptHandler
	resultHandler   *ResultHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		questionHandler: NewQuestionHandler(serviceManager.Question(), logger),
		testHandler:     NewTestHandler(serviceManager.Test(), logger),
		attemptHandler:  NewAttemptHandler(serviceManager.Attempt(), logger),
		resultHandler:   NewResultHandler(serviceManager.Result(), serviceManager.Export(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, authenticator *auth.Authenticator) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(authenticator.Middleware())
	{
		teacherOnly := auth.RequireRole(models.RoleTeacher)
		studentOnly := auth.RequireRole(models.RoleStudent)

		// Question authoring
		questions := v1.Group("/questions")
		questions.Use(teacherOnly)
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		// Test lifecycle and attempts
		tests := v1.Group("/tests")
		{
			tests.POST("", teacherOnly, hm.testHandler.CreateTest)
			tests.GET("", teacherOnly, hm.testHandler.ListTests)
			tests.GET("/active", studentOnly, hm.testHandler.ListActiveTests)
			tests.GET("/:id", teacherOnly, hm.testHandler.GetTest)
			tests.PUT("/:id", teacherOnly, hm.testHandler.UpdateTest)
			tests.DELETE("/:id", teacherOnly, hm.testHandler.DeleteTest)
			tests.POST("/:id/publish", teacherOnly, hm.testHandler.PublishTest)

			tests.GET("/:id/view", studentOnly, hm.testHandler.GetTestView)
			tests.POST("/:id/start", studentOnly, hm.attemptHandler.StartAttempt)
			tests.POST("/:id/submit", studentOnly, hm.attemptHandler.SubmitAttempt)
			tests.POST("/:id/events", studentOnly, hm.attemptHandler.ReportProctoringEvent)

			tests.GET("/:id/results", teacherOnly, hm.resultHandler.ListTestResults)
			tests.GET("/:id/results/export", teacherOnly, hm.resultHandler.ExportTestResults)
		}

		// Result views
		results := v1.Group("/results")
		{
			results.GET("/me", studentOnly, hm.resultHandler.ListOwnResults)
			results.GET("/attempts/:id", teacherOnly, hm.resultHandler.GetAttemptDetail)
			results.GET("/attempts/:id/proctoring", teacherOnly, hm.resultHandler.GetProctoringLog)
		}
	}
}
