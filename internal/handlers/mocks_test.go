package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/exam-delivery-service/internal/delivery"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
	"github.com/SAP-F-2025/exam-delivery-service/internal/services"
	"github.com/SAP-F-2025/exam-delivery-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockDeliveryService is a mock implementation of services.DeliveryService
type MockDeliveryService struct {
	mock.Mock
}

func (m *MockDeliveryService) session(args mock.Arguments) (*services.SessionResponse, error) {
	if v := args.Get(0); v != nil {
		return v.(*services.SessionResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeliveryService) Start(ctx context.Context, userID string, req *services.StartSessionRequest) (*services.SessionResponse, error) {
	return m.session(m.Called(ctx, userID, req))
}

func (m *MockDeliveryService) State(ctx context.Context, userID, sessionID string) (*services.SessionResponse, error) {
	return m.session(m.Called(ctx, userID, sessionID))
}

func (m *MockDeliveryService) SetMode(ctx context.Context, userID, sessionID string, req *services.SetModeRequest) (*services.SessionResponse, error) {
	return m.session(m.Called(ctx, userID, sessionID, req))
}

func (m *MockDeliveryService) RecordAnswer(ctx context.Context, userID, sessionID string, in *delivery.AnswerInput) (*services.SessionResponse, error) {
	return m.session(m.Called(ctx, userID, sessionID, in))
}

func (m *MockDeliveryService) RecordEssay(ctx context.Context, userID, sessionID string, part int, req *services.EssayRequest) (*services.SessionResponse, error) {
	return m.session(m.Called(ctx, userID, sessionID, part, req))
}

func (m *MockDeliveryService) Navigate(ctx context.Context, userID, sessionID string, dir services.Direction) (*services.SessionResponse, error) {
	return m.session(m.Called(ctx, userID, sessionID, dir))
}

func (m *MockDeliveryService) SelectQuestion(ctx context.Context, userID, sessionID string, req *services.SelectQuestionRequest) (*services.SessionResponse, error) {
	return m.session(m.Called(ctx, userID, sessionID, req))
}

func (m *MockDeliveryService) SetTab(ctx context.Context, userID, sessionID string, req *services.SetTabRequest) (*services.SessionResponse, error) {
	return m.session(m.Called(ctx, userID, sessionID, req))
}

func (m *MockDeliveryService) Submit(ctx context.Context, userID, sessionID string) (*delivery.Outcome, error) {
	args := m.Called(ctx, userID, sessionID)
	if v := args.Get(0); v != nil {
		return v.(*delivery.Outcome), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeliveryService) End(ctx context.Context, userID, sessionID string) error {
	return m.Called(ctx, userID, sessionID).Error(0)
}

func (m *MockDeliveryService) ActiveSessions() int {
	return m.Called().Int(0)
}

func (m *MockDeliveryService) HomePath() string {
	return "/home"
}

func (m *MockDeliveryService) Shutdown() {}

// MockResultService is a mock implementation of services.ResultService
type MockResultService struct {
	mock.Mock
}

func (m *MockResultService) ExportResults(ctx context.Context, assessmentID uint, w io.Writer) error {
	return m.Called(ctx, assessmentID, w).Error(0)
}

func (m *MockResultService) Stats(ctx context.Context, assessmentID uint) (*services.ResultStatsResponse, error) {
	args := m.Called(ctx, assessmentID)
	if v := args.Get(0); v != nil {
		return v.(*services.ResultStatsResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAssessmentService is a mock implementation of services.AssessmentService
type MockAssessmentService struct {
	mock.Mock
}

func (m *MockAssessmentService) List(ctx context.Context, filters repositories.AssessmentFilters) (*services.AssessmentListResponse, error) {
	args := m.Called(ctx, filters)
	if v := args.Get(0); v != nil {
		return v.(*services.AssessmentListResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockServiceManager struct {
	delivery   *MockDeliveryService
	result     *MockResultService
	assessment *MockAssessmentService
}

func (m *mockServiceManager) Delivery() services.DeliveryService     { return m.delivery }
func (m *mockServiceManager) Assessment() services.AssessmentService { return m.assessment }
func (m *mockServiceManager) Result() services.ResultService         { return m.result }

// fakeParser accepts the token "good" only.
type fakeParser struct{}

func (fakeParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if token != "good" {
		return nil, errors.New("signature is invalid")
	}
	claims := &casdoorsdk.Claims{}
	claims.User.Id = "casdoor-user"
	claims.User.Name = "ada"
	return claims, nil
}

func newTestRouter(parser TokenParser) (*gin.Engine, *mockServiceManager) {
	gin.SetMode(gin.TestMode)

	sm := &mockServiceManager{
		delivery:   new(MockDeliveryService),
		result:     new(MockResultService),
		assessment: new(MockAssessmentService),
	}
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	router.Use(utils.ContextLogger(logger))
	NewHandlerManager(sm, parser, logger).SetupRoutes(router)
	return router, sm
}
