package postgres

import (
	"context"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.Attempt) error {
	// The unique index on (test_id, student_id) is the single-attempt guard;
	// duplicate-key errors surface to the caller untranslated.
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByTestAndStudent(ctx context.Context, testID uint, studentID string) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Where("test_id = ? AND student_id = ?", testID, studentID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByIDWithAnswers(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("attempt_answers.position ASC")
		}).
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) Finalize(ctx context.Context, attemptID uint, result repositories.FinalizeAttempt) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Compare-and-set on submitted_at: only one finalization can win.
		update := tx.Model(&models.Attempt{}).
			Where("id = ? AND submitted_at IS NULL", attemptID).
			Updates(map[string]interface{}{
				"score":          result.Score,
				"percentage":     result.Percentage,
				"time_taken":     result.TimeTaken,
				"auto_submitted": result.AutoSubmitted,
				"submitted_at":   result.SubmittedAt,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return repositories.ErrAlreadyFinalized
		}

		// Replace the pre-seeded answer slots with the graded records.
		if err := tx.Where("attempt_id = ?", attemptID).Delete(&models.AttemptAnswer{}).Error; err != nil {
			return err
		}
		if len(result.Answers) == 0 {
			return nil
		}
		for i := range result.Answers {
			result.Answers[i].ID = 0
			result.Answers[i].AttemptID = attemptID
		}
		return tx.Create(&result.Answers).Error
	})
}

func (a AttemptPostgreSQL) GetByTest(ctx context.Context, testID uint, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.Attempt{}).Where("test_id = ?", testID)
	return a.list(query, filters)
}

func (a AttemptPostgreSQL) GetByStudent(ctx context.Context, studentID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.Attempt{}).Where("student_id = ?", studentID)
	return a.list(query, filters)
}

func (a AttemptPostgreSQL) list(query *gorm.DB, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	var attempts []*models.Attempt
	var total int64

	if filters.Submitted != nil {
		if *filters.Submitted {
			query = query.Where("submitted_at IS NOT NULL")
		} else {
			query = query.Where("submitted_at IS NULL")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Student").Preload("Test").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}
