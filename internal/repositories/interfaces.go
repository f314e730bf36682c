package repositories

import (
	"errors"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

func IsAlreadyExistsError(err error) bool {
	return errors.Is(err, ErrAlreadyExists) || errors.Is(err, gorm.ErrDuplicatedKey)
}

// Repository groups the per-entity repositories.
type Repository interface {
	Assessment() AssessmentRepository
	Question() QuestionRepository
	Choice() ChoiceRepository
	StatementKey() StatementKeyRepository
	Result() ResultRepository
	Essay() EssayRepository
	User() UserRepository
}

// ===== SHARED FILTER STRUCTS =====

type AssessmentFilters struct {
	Section   *models.SectionKind `json:"section"`
	CreatedBy *string             `json:"created_by"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortBy    string              `json:"sort_by"`    // "created_at", "name"
	SortOrder string              `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED STATISTICS STRUCTS =====

type ResultStats struct {
	Attempts         int64   `json:"attempts"`
	AverageScore     float64 `json:"average_score"`
	BestScore        float64 `json:"best_score"`
	AverageTimeSpent float64 `json:"average_time_spent"`
}
