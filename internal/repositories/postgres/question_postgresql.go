package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// GetByNumber retrieves a question by its number within an assessment
func (q *QuestionPostgreSQL) GetByNumber(ctx context.Context, tx *gorm.DB, assessmentID uint, number int) (*models.Question, error) {
	db := q.helpers.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).
		Where("assessment_id = ? AND question_number = ?", assessmentID, number).
		First(&question).Error; err != nil {
		return nil, fmt.Errorf("question %d of assessment %d: %w", number, assessmentID, notFound(err))
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.Question, error) {
	db := q.helpers.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("question_number ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

type ChoicePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewChoicePostgreSQL(db *gorm.DB) repositories.ChoiceRepository {
	return &ChoicePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (c *ChoicePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Choice, error) {
	db := c.helpers.getDB(tx)
	var choice models.Choice
	if err := db.WithContext(ctx).First(&choice, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &choice, nil
}

type StatementKeyPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewStatementKeyPostgreSQL(db *gorm.DB) repositories.StatementKeyRepository {
	return &StatementKeyPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (s *StatementKeyPostgreSQL) GetByQuestionID(ctx context.Context, tx *gorm.DB, questionID uint) (*models.StatementKey, error) {
	db := s.helpers.getDB(tx)
	var key models.StatementKey
	if err := db.WithContext(ctx).Where("question_id = ?", questionID).First(&key).Error; err != nil {
		return nil, fmt.Errorf("statement key for question %d: %w", questionID, notFound(err))
	}
	return &key, nil
}
