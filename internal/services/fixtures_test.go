package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-delivery-service/internal/cache"
	"github.com/SAP-F-2025/exam-delivery-service/internal/events"
	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-delivery-service/internal/validator"
	"github.com/SAP-F-2025/exam-delivery-service/pkg"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	readingID = 1
	writingID = 2
)

// MockCache is a testify mock of cache.CacheService
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, pkg.AutoMigrate(db))
	return db
}

// seedReading stores a three question single choice reading test. Choice
// n*10+1 is the correct one for question n.
func seedReading(t *testing.T, db *gorm.DB, duration int) {
	t.Helper()

	require.NoError(t, db.Create(&models.Assessment{
		ID: readingID, Name: "Reading 1", Section: models.SectionReading, TotalQuestions: 3, Duration: duration,
	}).Error)
	require.NoError(t, db.Create(&models.Part{ID: 10, AssessmentID: readingID, Order: 1}).Error)
	require.NoError(t, db.Create(&models.QuestionGroup{
		ID: 100, PartID: 10, Type: models.GroupSingleChoice, StartQuestionNumber: 1, EndQuestionNumber: 3,
	}).Error)

	for n := 1; n <= 3; n++ {
		require.NoError(t, db.Create(&models.Question{
			ID: uint(200 + n), AssessmentID: readingID, PartID: 10, GroupID: 100, QuestionNumber: n,
		}).Error)
		require.NoError(t, db.Create(&models.Choice{ID: uint(n*10 + 1), GroupID: 100, QuestionNumber: n, Label: "A", IsCorrect: true}).Error)
		require.NoError(t, db.Create(&models.Choice{ID: uint(n*10 + 2), GroupID: 100, QuestionNumber: n, Label: "B"}).Error)
	}
}

func seedWriting(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Create(&models.Assessment{
		ID: writingID, Name: "Writing 1", Section: models.SectionWriting, Duration: 3600,
	}).Error)
	for i, id := range []uint{30, 31} {
		require.NoError(t, db.Create(&models.Part{ID: id, AssessmentID: writingID, Order: i + 1}).Error)
		require.NoError(t, db.Create(&models.EssayPart{PartID: id, Prompt: "Describe the chart"}).Error)
	}
}

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	service   DeliveryService
}

func newTestEnv(t *testing.T, cacheService cache.CacheService, tick time.Duration) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	repo := postgres.NewRepository(db)
	publisher := events.NewMockEventPublisher(discardLogger())

	svc := NewDeliveryService(repo, cacheService, publisher, validator.New(), discardLogger(), DeliveryConfig{
		TickInterval:    tick,
		ScorePerCorrect: 0.25,
		HomePath:        "/home",
		CacheTTL:        time.Minute,
	})
	t.Cleanup(svc.Shutdown)

	return &testEnv{db: db, repo: repo, publisher: publisher, service: svc}
}

func (e *testEnv) eventTypes() []events.EventType {
	var types []events.EventType
	for _, ev := range e.publisher.GetPublishedEvents() {
		types = append(types, ev.Type)
	}
	return types
}
