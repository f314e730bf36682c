package models

import "time"

// Result is the graded outcome of a reading (or other non-listening)
// attempt. There is at most one row per (user, assessment).
type Result struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	UserID              string    `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_result_user_assessment"`
	AssessmentID        uint      `json:"assessment_id" gorm:"not null;uniqueIndex:idx_result_user_assessment"`
	Score               float64   `json:"score" gorm:"not null;default:0"`
	TimeSpent           int       `json:"time_spent" gorm:"not null;default:0"` // seconds
	TotalCorrectAnswers int       `json:"total_correct_answers" gorm:"not null;default:0"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ListeningResult mirrors Result for listening assessments, which are kept in
// their own table.
type ListeningResult struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	UserID              string    `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_listening_result_user_assessment"`
	AssessmentID        uint      `json:"assessment_id" gorm:"not null;uniqueIndex:idx_listening_result_user_assessment"`
	Score               float64   `json:"score" gorm:"not null;default:0"`
	TimeSpent           int       `json:"time_spent" gorm:"not null;default:0"`
	TotalCorrectAnswers int       `json:"total_correct_answers" gorm:"not null;default:0"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Essay holds both writing task answers of one user for one assessment.
type Essay struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_essay_user_assessment"`
	AssessmentID uint      `json:"assessment_id" gorm:"not null;uniqueIndex:idx_essay_user_assessment"`
	Part1Result  string    `json:"part1_result" gorm:"type:text"`
	Part2Result  string    `json:"part2_result" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Result) TableName() string {
	return "results"
}

func (ListeningResult) TableName() string {
	return "listening_results"
}

func (Essay) TableName() string {
	return "essays"
}

// ResultRow is a flattened result used for exports, independent of which
// results table it came from.
type ResultRow struct {
	UserID              string    `json:"user_id"`
	FullName            string    `json:"full_name"`
	Email               string    `json:"email"`
	Score               float64   `json:"score"`
	TimeSpent           int       `json:"time_spent"`
	TotalCorrectAnswers int       `json:"total_correct_answers"`
	UpdatedAt           time.Time `json:"updated_at"`
}
