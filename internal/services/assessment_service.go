package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
)

type assessmentService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAssessmentService(repo repositories.Repository, logger *slog.Logger) AssessmentService {
	return &assessmentService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the assessments a user can pick from before starting a
// session. Parts and questions are not loaded.
func (s *assessmentService) List(ctx context.Context, filters repositories.AssessmentFilters) (*AssessmentListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = 10
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	assessments, total, err := s.repo.Assessment().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	resp := &AssessmentListResponse{
		Assessments: make([]AssessmentSummary, 0, len(assessments)),
		Total:       total,
		Page:        filters.Offset/filters.Limit + 1,
		Size:        filters.Limit,
	}
	for _, a := range assessments {
		resp.Assessments = append(resp.Assessments, AssessmentSummary{
			ID:             a.ID,
			Name:           a.Name,
			Section:        a.Section,
			TotalQuestions: a.TotalQuestions,
			Duration:       a.Duration,
			CreatedAt:      a.CreatedAt,
		})
	}

	s.logger.Debug("Listed assessments", "total", total, "returned", len(resp.Assessments))
	return resp, nil
}
