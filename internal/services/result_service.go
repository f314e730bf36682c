package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Results"

var resultHeaders = []string{
	"User ID", "Full Name", "Email", "Score", "Correct Answers", "Time Spent (s)", "Submitted At",
}

type resultService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewResultService(repo repositories.Repository, logger *slog.Logger) ResultService {
	return &resultService{
		repo:   repo,
		logger: logger,
	}
}

// ExportResults writes the results of one assessment as an xlsx workbook.
// Listening assessments read from their own results table.
func (s *resultService) ExportResults(ctx context.Context, assessmentID uint, w io.Writer) error {
	a, err := s.assessment(ctx, assessmentID)
	if err != nil {
		return err
	}

	rows, err := s.repo.Result().ListRows(ctx, nil, a.ID, a.Section == models.SectionListening)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// the default sheet becomes the only sheet
	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	for i, header := range resultHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(resultsSheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIndex, row := range rows {
		values := []interface{}{
			row.UserID,
			row.FullName,
			row.Email,
			row.Score,
			row.TotalCorrectAnswers,
			row.TimeSpent,
			row.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err := f.SetCellValue(resultsSheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", rowIndex+2, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported results", "assessment_id", a.ID, "section", a.Section, "rows", len(rows))
	return nil
}

func (s *resultService) Stats(ctx context.Context, assessmentID uint) (*ResultStatsResponse, error) {
	a, err := s.assessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Result().GetStats(ctx, nil, a.ID, a.Section == models.SectionListening)
	if err != nil {
		return nil, fmt.Errorf("failed to load result stats: %w", err)
	}

	return &ResultStatsResponse{
		AssessmentID: a.ID,
		Section:      a.Section,
		ResultStats:  *stats,
	}, nil
}

func (s *resultService) assessment(ctx context.Context, id uint) (*models.Assessment, error) {
	a, err := s.repo.Assessment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	if a.Section == models.SectionWriting {
		return nil, NewBusinessRuleError("graded_section", "writing assessments have no graded results",
			map[string]interface{}{"assessment_id": a.ID})
	}
	return a, nil
}
