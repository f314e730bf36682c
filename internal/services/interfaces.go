package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/exam-delivery-service/internal/delivery"
	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
)

// ===== REQUESTS =====

type StartSessionRequest struct {
	AssessmentID uint          `json:"assessment_id" validate:"required,min=1"`
	Mode         delivery.Mode `json:"mode" validate:"omitempty,delivery_mode"`
}

type SetModeRequest struct {
	Mode delivery.Mode `json:"mode" validate:"required,delivery_mode"`
}

type EssayRequest struct {
	Content string `json:"content" validate:"max=20000"`
}

type SelectQuestionRequest struct {
	QuestionNumber int `json:"question_number" validate:"required,min=1"`
}

type SetTabRequest struct {
	Tab delivery.Tab `json:"tab" validate:"required"`
}

// Direction is a navigation step.
type Direction string

const (
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)

// ===== RESPONSES =====

type SessionResponse struct {
	SessionID  string             `json:"session_id"`
	UserID     string             `json:"user_id"`
	StartedAt  time.Time          `json:"started_at"`
	Assessment *models.Assessment `json:"assessment,omitempty"`
	State      delivery.State     `json:"state"`
}

type AssessmentSummary struct {
	ID             uint               `json:"id"`
	Name           string             `json:"name"`
	Section        models.SectionKind `json:"section"`
	TotalQuestions int                `json:"total_questions"`
	Duration       int                `json:"duration"`
	CreatedAt      time.Time          `json:"created_at"`
}

type AssessmentListResponse struct {
	Assessments []AssessmentSummary `json:"assessments"`
	Total       int64               `json:"total"`
	Page        int                 `json:"page"`
	Size        int                 `json:"size"`
}

type ResultStatsResponse struct {
	AssessmentID uint               `json:"assessment_id"`
	Section      models.SectionKind `json:"section"`
	repositories.ResultStats
}

// ===== SERVICES =====

type DeliveryService interface {
	Start(ctx context.Context, userID string, req *StartSessionRequest) (*SessionResponse, error)
	State(ctx context.Context, userID, sessionID string) (*SessionResponse, error)
	SetMode(ctx context.Context, userID, sessionID string, req *SetModeRequest) (*SessionResponse, error)
	RecordAnswer(ctx context.Context, userID, sessionID string, in *delivery.AnswerInput) (*SessionResponse, error)
	RecordEssay(ctx context.Context, userID, sessionID string, part int, req *EssayRequest) (*SessionResponse, error)
	Navigate(ctx context.Context, userID, sessionID string, dir Direction) (*SessionResponse, error)
	SelectQuestion(ctx context.Context, userID, sessionID string, req *SelectQuestionRequest) (*SessionResponse, error)
	SetTab(ctx context.Context, userID, sessionID string, req *SetTabRequest) (*SessionResponse, error)
	Submit(ctx context.Context, userID, sessionID string) (*delivery.Outcome, error)
	End(ctx context.Context, userID, sessionID string) error

	ActiveSessions() int
	HomePath() string
	Shutdown()
}

type AssessmentService interface {
	List(ctx context.Context, filters repositories.AssessmentFilters) (*AssessmentListResponse, error)
}

type ResultService interface {
	ExportResults(ctx context.Context, assessmentID uint, w io.Writer) error
	Stats(ctx context.Context, assessmentID uint) (*ResultStatsResponse, error)
}

// ServiceManager exposes every service to the handler layer.
type ServiceManager interface {
	Delivery() DeliveryService
	Assessment() AssessmentService
	Result() ResultService
}
