package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
	"gorm.io/gorm"
)

type AssessmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAssessmentPostgreSQL(db *gorm.DB) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create stores an assessment together with any nested parts and groups
func (a *AssessmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error {
	db := a.helpers.getDB(tx)
	if err := db.WithContext(ctx).Create(assessment).Error; err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

// GetByID retrieves an assessment without its parts
func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	db := a.helpers.getDB(tx)
	var assessment models.Assessment
	if err := db.WithContext(ctx).First(&assessment, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &assessment, nil
}

// GetHydrated retrieves an assessment with everything needed to deliver it
func (a *AssessmentPostgreSQL) GetHydrated(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	db := a.helpers.getDB(tx)
	var assessment models.Assessment
	err := db.WithContext(ctx).
		Preload("Parts", func(db *gorm.DB) *gorm.DB {
			return db.Order("part_order ASC")
		}).
		Preload("Parts.Passage").
		Preload("Parts.EssayPart").
		Preload("Parts.QuestionGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_question_number ASC")
		}).
		Preload("Parts.QuestionGroups.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number ASC, label ASC")
		}).
		Preload("Parts.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number ASC")
		}).
		First(&assessment, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	db := a.helpers.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Assessment{})

	query = a.helpers.ApplyAssessmentFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		"created_at", "name", "duration")

	var assessments []*models.Assessment
	if err := query.Find(&assessments).Error; err != nil {
		return nil, 0, err
	}
	return assessments, total, nil
}
