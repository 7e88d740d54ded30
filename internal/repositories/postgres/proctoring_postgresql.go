package postgres

import (
	"context"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"gorm.io/gorm"
)

type ProctoringPostgreSQL struct {
	db *gorm.DB
}

func NewProctoringPostgreSQL(db *gorm.DB) repositories.ProctoringRepository {
	return &ProctoringPostgreSQL{db: db}
}

func (p ProctoringPostgreSQL) Create(ctx context.Context, event *models.ProctoringEvent) error {
	return p.db.WithContext(ctx).Create(event).Error
}

func (p ProctoringPostgreSQL) GetByAttempt(ctx context.Context, attemptID uint) ([]*models.ProctoringEvent, error) {
	var events []*models.ProctoringEvent
	if err := p.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
