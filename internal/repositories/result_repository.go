package repositories

import (
	"context"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"gorm.io/gorm"
)

// ResultRepository interface for graded results. Both result tables keep one
// row per (user, assessment); Upsert overwrites it.
type ResultRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, result *models.Result) error
	UpsertListening(ctx context.Context, tx *gorm.DB, result *models.ListeningResult) error
	GetByUserAndAssessment(ctx context.Context, tx *gorm.DB, userID string, assessmentID uint) (*models.Result, error)
	GetListeningByUserAndAssessment(ctx context.Context, tx *gorm.DB, userID string, assessmentID uint) (*models.ListeningResult, error)

	// Reporting
	ListRows(ctx context.Context, tx *gorm.DB, assessmentID uint, listening bool) ([]*models.ResultRow, error)
	GetStats(ctx context.Context, tx *gorm.DB, assessmentID uint, listening bool) (*ResultStats, error)
}

// EssayRepository interface for writing submissions
type EssayRepository interface {
	// Create fails with ErrAlreadyExists when the user already submitted.
	Create(ctx context.Context, tx *gorm.DB, essay *models.Essay) error
	Exists(ctx context.Context, tx *gorm.DB, userID string, assessmentID uint) (bool, error)
	GetByUserAndAssessment(ctx context.Context, tx *gorm.DB, userID string, assessmentID uint) (*models.Essay, error)
}
