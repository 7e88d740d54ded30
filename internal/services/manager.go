package services

import (
	"github.com/SAP-F-2025/exam-portal-service/internal/cache"
	"github.com/SAP-F-2025/exam-portal-service/internal/events"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/SAP-F-2025/exam-portal-service/internal/validator"
)

type serviceManager struct {
	question QuestionService
	test     TestService
	attempt  AttemptService
	result   ResultService
	export   ExportService
}

// NewServiceManager wires every service against the shared repository,
// validator, cache, and event publisher.
func NewServiceManager(
	repo repositories.Repository,
	logger utils.Logger,
	v *validator.Validator,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
) ServiceManager {
	return &serviceManager{
		question: NewQuestionService(repo, logger, v),
		test:     NewTestService(repo, logger, v, cacheService, publisher),
		attempt:  NewAttemptService(repo, logger, v, publisher),
		result:   NewResultService(repo, logger),
		export:   NewExportService(repo, logger),
	}
}

func (m *serviceManager) Question() QuestionService { return m.question }
func (m *serviceManager) Test() TestService         { return m.test }
func (m *serviceManager) Attempt() AttemptService   { return m.attempt }
func (m *serviceManager) Result() ResultService     { return m.result }
func (m *serviceManager) Export() ExportService     { return m.export }
