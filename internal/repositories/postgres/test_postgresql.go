package postgres

import (
	"context"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"gorm.io/gorm"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{db: db}
}

func (t TestPostgreSQL) Create(ctx context.Context, test *models.Test) error {
	return t.db.WithContext(ctx).Create(test).Error
}

func (t TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t TestPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("test_questions.position ASC")
		}).
		Preload("Questions.Question.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.position ASC")
		}).
		First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t TestPostgreSQL) Update(ctx context.Context, test *models.Test) error {
	return t.db.WithContext(ctx).Save(test).Error
}

func (t TestPostgreSQL) Delete(ctx context.Context, id uint) error {
	// Attempts and question links go with the test.
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id IN (?)",
			tx.Model(&models.Attempt{}).Select("id").Where("test_id = ?", id),
		).Delete(&models.AttemptAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("test_id = ?", id).Delete(&models.Attempt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("test_id = ?", id).Delete(&models.TestQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Test{}, id).Error
	})
}

func (t TestPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.TestStatus) error {
	return t.db.WithContext(ctx).Model(&models.Test{}).Where("id = ?", id).Update("status", status).Error
}

func (t TestPostgreSQL) GetByCreator(ctx context.Context, creatorID string, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	query := t.db.WithContext(ctx).Model(&models.Test{}).Where("created_by = ?", creatorID)
	return t.list(query, filters)
}

func (t TestPostgreSQL) GetActive(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	query := t.db.WithContext(ctx).Model(&models.Test{}).Where("status = ?", models.TestStatusActive)
	return t.list(query, filters)
}

func (t TestPostgreSQL) list(query *gorm.DB, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	var tests []*models.Test
	var total int64

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Questions").Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}
