package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportTestResults renders a test's finalized attempts as an xlsx workbook.
func (s *exportService) ExportTestResults(ctx context.Context, testID uint, userID string) ([]byte, error) {
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if test.CreatedBy != userID {
		return nil, NewPermissionError(userID, testID, "test", "export results", "not the creator")
	}

	submitted := true
	attempts, _, err := s.repo.Attempt().GetByTest(ctx, testID, repositories.AttemptFilters{
		Submitted: &submitted,
		SortBy:    "submitted_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Student ID", "Student Name", "Score", "Total Marks", "Percentage",
		"Time Taken (s)", "Auto Submitted", "Started At", "Submitted At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		submittedAt := ""
		if attempt.SubmittedAt != nil {
			submittedAt = attempt.SubmittedAt.Format("2006-01-02 15:04:05")
		}
		row := []interface{}{
			attempt.StudentID,
			attempt.Student.Name,
			attempt.Score,
			attempt.TotalMarks,
			attempt.Percentage,
			attempt.TimeTaken,
			attempt.AutoSubmitted,
			attempt.StartedAt.Format("2006-01-02 15:04:05"),
			submittedAt,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Test results exported",
		"test_id", testID,
		"attempt_count", len(attempts),
		"user_id", userID)

	return buf.Bytes(), nil
}
