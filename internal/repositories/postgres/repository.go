package postgres

import (
	"context"

	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB

	question   repositories.QuestionRepository
	test       repositories.TestRepository
	attempt    repositories.AttemptRepository
	proctoring repositories.ProctoringRepository
	user       repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:         db,
		question:   NewQuestionPostgreSQL(db),
		test:       NewTestPostgreSQL(db),
		attempt:    NewAttemptPostgreSQL(db),
		proctoring: NewProctoringPostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *gormRepository) Question() repositories.QuestionRepository     { return r.question }
func (r *gormRepository) Test() repositories.TestRepository             { return r.test }
func (r *gormRepository) Attempt() repositories.AttemptRepository       { return r.attempt }
func (r *gormRepository) Proctoring() repositories.ProctoringRepository { return r.proctoring }
func (r *gormRepository) User() repositories.UserRepository             { return r.user }

func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *gormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// applyPaginationAndSort applies shared list options to a query.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if sortBy == "" {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
