package repositories

import (
	"context"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository interface for question lookups during grading
type QuestionRepository interface {
	GetByNumber(ctx context.Context, tx *gorm.DB, assessmentID uint, number int) (*models.Question, error)
	ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.Question, error)
}

// ChoiceRepository interface for choice operations
type ChoiceRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Choice, error)
}

// StatementKeyRepository interface for true/false/not-given answer keys
type StatementKeyRepository interface {
	GetByQuestionID(ctx context.Context, tx *gorm.DB, questionID uint) (*models.StatementKey, error)
}
