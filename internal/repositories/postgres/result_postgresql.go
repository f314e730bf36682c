package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
	"gorm.io/gorm"
)

type ResultPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Upsert creates the reading result or overwrites the existing one for the
// same user and assessment.
func (r *ResultPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	db := r.helpers.getDB(tx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Result
		err := tx.Where("user_id = ? AND assessment_id = ?", result.UserID, result.AssessmentID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(result).Error
		}
		if err != nil {
			return fmt.Errorf("failed to look up result: %w", err)
		}

		result.ID = existing.ID
		result.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Updates(map[string]interface{}{
			"score":                 result.Score,
			"time_spent":            result.TimeSpent,
			"total_correct_answers": result.TotalCorrectAnswers,
		}).Error
	})
}

// UpsertListening is Upsert for the listening results table.
func (r *ResultPostgreSQL) UpsertListening(ctx context.Context, tx *gorm.DB, result *models.ListeningResult) error {
	db := r.helpers.getDB(tx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ListeningResult
		err := tx.Where("user_id = ? AND assessment_id = ?", result.UserID, result.AssessmentID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(result).Error
		}
		if err != nil {
			return fmt.Errorf("failed to look up listening result: %w", err)
		}

		result.ID = existing.ID
		result.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Updates(map[string]interface{}{
			"score":                 result.Score,
			"time_spent":            result.TimeSpent,
			"total_correct_answers": result.TotalCorrectAnswers,
		}).Error
	})
}

func (r *ResultPostgreSQL) GetByUserAndAssessment(ctx context.Context, tx *gorm.DB, userID string, assessmentID uint) (*models.Result, error) {
	db := r.helpers.getDB(tx)
	var result models.Result
	if err := db.WithContext(ctx).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		First(&result).Error; err != nil {
		return nil, notFound(err)
	}
	return &result, nil
}

func (r *ResultPostgreSQL) GetListeningByUserAndAssessment(ctx context.Context, tx *gorm.DB, userID string, assessmentID uint) (*models.ListeningResult, error) {
	db := r.helpers.getDB(tx)
	var result models.ListeningResult
	if err := db.WithContext(ctx).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		First(&result).Error; err != nil {
		return nil, notFound(err)
	}
	return &result, nil
}

// ListRows returns results joined with user details, best score first
func (r *ResultPostgreSQL) ListRows(ctx context.Context, tx *gorm.DB, assessmentID uint, listening bool) ([]*models.ResultRow, error) {
	db := r.helpers.getDB(tx)
	table := resultTable(listening)

	var rows []*models.ResultRow
	err := db.WithContext(ctx).
		Table(table+" AS r").
		Select("r.user_id, COALESCE(u.full_name, '') AS full_name, COALESCE(u.email, '') AS email, "+
			"r.score, r.time_spent, r.total_correct_answers, r.updated_at").
		Joins("LEFT JOIN users u ON u.id = r.user_id").
		Where("r.assessment_id = ?", assessmentID).
		Order("r.score DESC, r.time_spent ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return rows, nil
}

func (r *ResultPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, assessmentID uint, listening bool) (*repositories.ResultStats, error) {
	db := r.helpers.getDB(tx)

	var stats repositories.ResultStats
	err := db.WithContext(ctx).
		Table(resultTable(listening)).
		Select("COUNT(*) AS attempts, "+
			"COALESCE(AVG(score), 0) AS average_score, "+
			"COALESCE(MAX(score), 0) AS best_score, "+
			"COALESCE(AVG(time_spent), 0) AS average_time_spent").
		Where("assessment_id = ?", assessmentID).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute result stats: %w", err)
	}
	return &stats, nil
}

func resultTable(listening bool) string {
	if listening {
		return models.ListeningResult{}.TableName()
	}
	return models.Result{}.TableName()
}

type EssayPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewEssayPostgreSQL(db *gorm.DB) repositories.EssayRepository {
	return &EssayPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (e *EssayPostgreSQL) Create(ctx context.Context, tx *gorm.DB, essay *models.Essay) error {
	db := e.helpers.getDB(tx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Essay{}).
			Where("user_id = ? AND assessment_id = ?", essay.UserID, essay.AssessmentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return repositories.ErrAlreadyExists
		}
		return tx.Create(essay).Error
	})
}

func (e *EssayPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, userID string, assessmentID uint) (bool, error) {
	db := e.helpers.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Essay{}).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *EssayPostgreSQL) GetByUserAndAssessment(ctx context.Context, tx *gorm.DB, userID string, assessmentID uint) (*models.Essay, error) {
	db := e.helpers.getDB(tx)
	var essay models.Essay
	if err := db.WithContext(ctx).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		First(&essay).Error; err != nil {
		return nil, notFound(err)
	}
	return &essay, nil
}
