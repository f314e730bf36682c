package repositories

import (
	"context"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"gorm.io/gorm"
)

// AssessmentRepository interface for assessment read and seed operations
type AssessmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error)
	// GetHydrated loads parts, passages, essay prompts, groups, choices and
	// questions, each ordered for delivery.
	GetHydrated(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error)
	List(ctx context.Context, tx *gorm.DB, filters AssessmentFilters) ([]*models.Assessment, int64, error)
}
