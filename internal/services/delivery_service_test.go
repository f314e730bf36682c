package services

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-delivery-service/internal/cache"
	"github.com/SAP-F-2025/exam-delivery-service/internal/delivery"
	"github.com/SAP-F-2025/exam-delivery-service/internal/events"
	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const idle = time.Hour

func TestDeliveryService_ReadingSubmit(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	seedReading(t, env.db, 600)
	ctx := context.Background()

	started, err := env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: readingID})
	require.NoError(t, err)
	require.NotNil(t, started.Assessment)
	assert.Equal(t, delivery.ModeTest, started.State.Mode)
	assert.Equal(t, 600, started.State.Remaining)
	assert.Equal(t, delivery.Position{Tab: "10", Question: 1}, started.State.Position)

	answers := []delivery.AnswerInput{
		{Type: delivery.AnswerSingleChoice, QuestionNumber: 1, ChoiceID: 11},
		{Type: delivery.AnswerSingleChoice, QuestionNumber: 2, ChoiceID: 22},
		{Type: delivery.AnswerSingleChoice, QuestionNumber: 3, ChoiceID: 32},
		{Type: delivery.AnswerSingleChoice, QuestionNumber: 3, ChoiceID: 31},
	}
	for i := range answers {
		_, err := env.service.RecordAnswer(ctx, "student-1", started.SessionID, &answers[i])
		require.NoError(t, err)
	}

	state, err := env.service.State(ctx, "student-1", started.SessionID)
	require.NoError(t, err)
	assert.Len(t, state.State.Answers, 3)

	out, err := env.service.Submit(ctx, "student-1", started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, out.TotalCorrect)
	assert.InDelta(t, 0.5, out.Score, 1e-9)
	assert.Equal(t, "/home", out.Redirect)

	stored, err := env.repo.Result().GetByUserAndAssessment(ctx, nil, "student-1", readingID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TotalCorrectAnswers)

	assert.Equal(t, 0, env.service.ActiveSessions())
	_, err = env.service.State(ctx, "student-1", started.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, []events.EventType{events.EventSessionStarted, events.EventResultSubmitted}, env.eventTypes())
}

func TestDeliveryService_ResubmitUpdatesResult(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	seedReading(t, env.db, 600)
	ctx := context.Background()

	for _, choice := range []uint{12, 11} {
		s, err := env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: readingID})
		require.NoError(t, err)
		_, err = env.service.RecordAnswer(ctx, "student-1", s.SessionID,
			&delivery.AnswerInput{Type: delivery.AnswerSingleChoice, QuestionNumber: 1, ChoiceID: choice})
		require.NoError(t, err)
		_, err = env.service.Submit(ctx, "student-1", s.SessionID)
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Result{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := env.repo.Result().GetByUserAndAssessment(ctx, nil, "student-1", readingID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalCorrectAnswers)
}

func TestDeliveryService_WritingDoubleSubmitGuard(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	seedWriting(t, env.db)
	ctx := context.Background()

	s, err := env.service.Start(ctx, "writer", &StartSessionRequest{AssessmentID: writingID})
	require.NoError(t, err)
	assert.Equal(t, delivery.Position{Tab: "30"}, s.State.Position)

	_, err = env.service.RecordEssay(ctx, "writer", s.SessionID, 1, &EssayRequest{Content: "The chart shows growth"})
	require.NoError(t, err)
	_, err = env.service.RecordEssay(ctx, "writer", s.SessionID, 2, &EssayRequest{Content: "I agree"})
	require.NoError(t, err)
	_, err = env.service.RecordEssay(ctx, "writer", s.SessionID, 3, &EssayRequest{Content: "extra"})
	assert.ErrorIs(t, err, delivery.ErrInvalidEssayPart)

	out, err := env.service.Submit(ctx, "writer", s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SectionWriting, out.Section)

	essay, err := env.repo.Essay().GetByUserAndAssessment(ctx, nil, "writer", writingID)
	require.NoError(t, err)
	assert.Equal(t, "The chart shows growth", essay.Part1Result)
	assert.Equal(t, "I agree", essay.Part2Result)

	_, err = env.service.Start(ctx, "writer", &StartSessionRequest{AssessmentID: writingID})
	assert.ErrorIs(t, err, ErrEssayAlreadySubmitted)
	assert.True(t, IsConflict(err))
	assert.Equal(t, 0, env.service.ActiveSessions())

	// authoring mode is not an attempt
	_, err = env.service.Start(ctx, "writer", &StartSessionRequest{AssessmentID: writingID, Mode: delivery.ModeEdit})
	assert.NoError(t, err)

	ev := env.publisher.GetPublishedEvents()
	require.GreaterOrEqual(t, len(ev), 2)
	assert.Equal(t, events.EventEssaySubmitted, ev[1].Type)
	payload, ok := ev[1].Data.(events.EssaySubmittedEvent)
	require.True(t, ok)
	assert.Equal(t, 4, payload.Part1Words)
}

func TestDeliveryService_WritingDuplicateAtSubmit(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	seedWriting(t, env.db)
	ctx := context.Background()

	s, err := env.service.Start(ctx, "writer", &StartSessionRequest{AssessmentID: writingID})
	require.NoError(t, err)

	// stored from elsewhere while the session was open
	require.NoError(t, env.repo.Essay().Create(ctx, nil, &models.Essay{UserID: "writer", AssessmentID: writingID}))

	_, err = env.service.Submit(ctx, "writer", s.SessionID)
	assert.ErrorIs(t, err, ErrEssayAlreadySubmitted)
	assert.Equal(t, 0, env.service.ActiveSessions())
}

func TestDeliveryService_AutoSubmitOnTimeout(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), 5*time.Millisecond)
	seedReading(t, env.db, 5)
	ctx := context.Background()

	s, err := env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: readingID})
	require.NoError(t, err)
	_, err = env.service.RecordAnswer(ctx, "student-1", s.SessionID,
		&delivery.AnswerInput{Type: delivery.AnswerSingleChoice, QuestionNumber: 2, ChoiceID: 21})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return env.service.ActiveSessions() == 0
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := env.repo.Result().GetByUserAndAssessment(ctx, nil, "student-1", readingID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalCorrectAnswers)
	assert.Equal(t, 5, stored.TimeSpent)

	assert.Eventually(t, func() bool {
		return len(env.eventTypes()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []events.EventType{events.EventSessionStarted, events.EventAutoSubmitted}, env.eventTypes())
}

func TestDeliveryService_EditModeNeverAutoSubmits(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), 5*time.Millisecond)
	seedReading(t, env.db, 1)
	ctx := context.Background()

	s, err := env.service.Start(ctx, "teacher", &StartSessionRequest{AssessmentID: readingID, Mode: delivery.ModeEdit})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		st, err := env.service.State(ctx, "teacher", s.SessionID)
		return err == nil && st.State.Remaining == 0
	}, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, 1, env.service.ActiveSessions())
	_, err = env.repo.Result().GetByUserAndAssessment(ctx, nil, "teacher", readingID)
	assert.Error(t, err)
}

func TestDeliveryService_Navigation(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	seedReading(t, env.db, 600)
	ctx := context.Background()

	s, err := env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: readingID})
	require.NoError(t, err)

	resp, err := env.service.Navigate(ctx, "student-1", s.SessionID, DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.State.Position.Question)

	resp, err = env.service.SelectQuestion(ctx, "student-1", s.SessionID, &SelectQuestionRequest{QuestionNumber: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.State.Position.Question)

	resp, err = env.service.Navigate(ctx, "student-1", s.SessionID, DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, delivery.TabDelivering, resp.State.Position.Tab)

	resp, err = env.service.Navigate(ctx, "student-1", s.SessionID, DirectionPrevious)
	require.NoError(t, err)
	assert.Equal(t, delivery.Tab("10"), resp.State.Position.Tab)
	assert.Equal(t, []int{1, 2, 3}, resp.State.Visited)

	_, err = env.service.Navigate(ctx, "student-1", s.SessionID, Direction("sideways"))
	assert.True(t, IsValidation(err))

	_, err = env.service.SelectQuestion(ctx, "student-1", s.SessionID, &SelectQuestionRequest{QuestionNumber: 9})
	assert.ErrorIs(t, err, delivery.ErrQuestionOutOfRange)

	_, err = env.service.SetTab(ctx, "student-1", s.SessionID, &SetTabRequest{Tab: "99"})
	assert.ErrorIs(t, err, delivery.ErrUnknownTab)

	resp, err = env.service.SetTab(ctx, "student-1", s.SessionID, &SetTabRequest{Tab: delivery.TabDelivering})
	require.NoError(t, err)
	assert.Equal(t, delivery.TabDelivering, resp.State.Position.Tab)
}

func TestDeliveryService_SetModeResetsState(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	seedReading(t, env.db, 600)
	ctx := context.Background()

	s, err := env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: readingID})
	require.NoError(t, err)
	_, err = env.service.RecordAnswer(ctx, "student-1", s.SessionID,
		&delivery.AnswerInput{Type: delivery.AnswerSingleChoice, QuestionNumber: 1, ChoiceID: 11})
	require.NoError(t, err)

	resp, err := env.service.SetMode(ctx, "student-1", s.SessionID, &SetModeRequest{Mode: delivery.ModePractice})
	require.NoError(t, err)
	assert.Equal(t, delivery.ModePractice, resp.State.Mode)
	assert.Empty(t, resp.State.Answers)

	_, err = env.service.SetMode(ctx, "student-1", s.SessionID, &SetModeRequest{Mode: "exam"})
	assert.True(t, IsValidation(err))
}

func TestDeliveryService_RecordAnswerValidation(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	seedReading(t, env.db, 600)
	ctx := context.Background()

	s, err := env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: readingID})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input delivery.AnswerInput
		check func(t *testing.T, err error)
	}{
		{
			name:  "missing type",
			input: delivery.AnswerInput{QuestionNumber: 1},
			check: func(t *testing.T, err error) { assert.True(t, IsValidation(err)) },
		},
		{
			name:  "three selections",
			input: delivery.AnswerInput{Type: delivery.AnswerMultiChoice, QuestionNumber: 1, ChoiceIDs: []uint{1, 2, 3}},
			check: func(t *testing.T, err error) { assert.True(t, IsValidation(err)) },
		},
		{
			name:  "blank statement",
			input: delivery.AnswerInput{Type: delivery.AnswerStatement, QuestionNumber: 2, Content: "   "},
			check: func(t *testing.T, err error) { assert.True(t, IsValidation(err)) },
		},
		{
			name:  "statement on a single choice question",
			input: delivery.AnswerInput{Type: delivery.AnswerStatement, QuestionNumber: 2, Content: "TRUE"},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, delivery.ErrAnswerTypeMismatch) },
		},
		{
			name:  "completion on a single choice question",
			input: delivery.AnswerInput{Type: delivery.AnswerCompletion, QuestionNumber: 1},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, delivery.ErrAnswerTypeMismatch) },
		},
		{
			name:  "question beyond the assessment",
			input: delivery.AnswerInput{Type: delivery.AnswerSingleChoice, QuestionNumber: 4, ChoiceID: 11},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, delivery.ErrQuestionOutOfRange) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.RecordAnswer(ctx, "student-1", s.SessionID, &tt.input)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestDeliveryService_ChoiceFromAnotherQuestionScoresNothing(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	seedReading(t, env.db, 600)
	ctx := context.Background()

	s, err := env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: readingID})
	require.NoError(t, err)
	for n := 1; n <= 3; n++ {
		_, err := env.service.RecordAnswer(ctx, "student-1", s.SessionID,
			&delivery.AnswerInput{Type: delivery.AnswerSingleChoice, QuestionNumber: n, ChoiceID: 11})
		require.NoError(t, err)
	}

	out, err := env.service.Submit(ctx, "student-1", s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalCorrect)
	assert.InDelta(t, 0.25, out.Score, 1e-9)
}

func TestDeliveryService_Ownership(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	seedReading(t, env.db, 600)
	ctx := context.Background()

	s, err := env.service.Start(ctx, "owner", &StartSessionRequest{AssessmentID: readingID})
	require.NoError(t, err)

	_, err = env.service.State(ctx, "intruder", s.SessionID)
	var permErr *PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, "session", permErr.Resource)

	_, err = env.service.Submit(ctx, "intruder", s.SessionID)
	assert.True(t, IsUnauthorized(err))

	_, err = env.service.State(ctx, "owner", "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, IsNotFound(err))

	require.NoError(t, env.service.End(ctx, "owner", s.SessionID))
	assert.Equal(t, 0, env.service.ActiveSessions())
}

func TestDeliveryService_StartReplacesPreviousSession(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	seedReading(t, env.db, 600)
	ctx := context.Background()

	first, err := env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: readingID})
	require.NoError(t, err)
	second, err := env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: readingID, Mode: delivery.ModePractice})
	require.NoError(t, err)

	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, 1, env.service.ActiveSessions())

	_, err = env.service.State(ctx, "student-1", first.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = env.service.Start(ctx, "student-2", &StartSessionRequest{AssessmentID: readingID})
	require.NoError(t, err)
	assert.Equal(t, 2, env.service.ActiveSessions())
}

func TestDeliveryService_StartErrors(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	ctx := context.Background()

	_, err := env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: 42})
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	_, err = env.service.Start(ctx, "student-1", &StartSessionRequest{})
	assert.True(t, IsValidation(err))

	_, err = env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: 1, Mode: "exam"})
	assert.True(t, IsValidation(err))

	// declares more questions than its groups cover
	require.NoError(t, env.db.Create(&models.Assessment{ID: 5, Name: "Broken", Section: models.SectionReading, TotalQuestions: 4, Duration: 60}).Error)
	require.NoError(t, env.db.Create(&models.Part{ID: 50, AssessmentID: 5, Order: 1}).Error)
	require.NoError(t, env.db.Create(&models.QuestionGroup{ID: 500, PartID: 50, Type: models.GroupSingleChoice, StartQuestionNumber: 1, EndQuestionNumber: 2}).Error)

	_, err = env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: 5})
	var rule *BusinessRuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "assessment_structure", rule.Rule)
}

func TestDeliveryService_DeactivatedAccount(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), idle)
	ctx := context.Background()
	seedReading(t, env.db, 60)

	require.NoError(t, env.db.Create(&models.User{ID: "student-9", FullName: "Gone", Email: "gone@example.com"}).Error)
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", "student-9").Update("is_active", false).Error)

	_, err := env.service.Start(ctx, "student-9", &StartSessionRequest{AssessmentID: 1})
	var perm *PermissionError
	require.ErrorAs(t, err, &perm)
	assert.Equal(t, "start", perm.Action)
	assert.Equal(t, 0, env.service.ActiveSessions())

	require.NoError(t, env.db.Create(&models.User{ID: "student-10", FullName: "Here", Email: "here@example.com"}).Error)
	_, err = env.service.Start(ctx, "student-10", &StartSessionRequest{AssessmentID: 1})
	assert.NoError(t, err)
}

func TestDeliveryService_UsesCachedAssessment(t *testing.T) {
	cached := &models.Assessment{
		ID: 9, Name: "Cached", Section: models.SectionReading, TotalQuestions: 1, Duration: 30,
		Parts: []models.Part{{
			ID: 90, Order: 1,
			QuestionGroups: []models.QuestionGroup{{ID: 900, Type: models.GroupFillInBlank, StartQuestionNumber: 1, EndQuestionNumber: 1}},
		}},
	}

	mockCache := new(MockCache)
	mockCache.On("Get", mock.Anything, cache.AssessmentKey(9), mock.AnythingOfType("*models.Assessment")).
		Run(func(args mock.Arguments) {
			*args.Get(2).(*models.Assessment) = *cached
		}).
		Return(nil)

	env := newTestEnv(t, mockCache, idle)

	s, err := env.service.Start(context.Background(), "student-1", &StartSessionRequest{AssessmentID: 9})
	require.NoError(t, err)
	assert.Equal(t, "Cached", s.Assessment.Name)
	mockCache.AssertExpectations(t)
	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeliveryService_CachesLoadedAssessment(t *testing.T) {
	mockCache := new(MockCache)
	mockCache.On("Get", mock.Anything, cache.AssessmentKey(readingID), mock.Anything).Return(cache.ErrCacheMiss)
	mockCache.On("Set", mock.Anything, cache.AssessmentKey(readingID), mock.AnythingOfType("*models.Assessment"), time.Minute).Return(nil)

	env := newTestEnv(t, mockCache, idle)
	seedReading(t, env.db, 600)

	_, err := env.service.Start(context.Background(), "student-1", &StartSessionRequest{AssessmentID: readingID})
	require.NoError(t, err)
	mockCache.AssertExpectations(t)
}

func TestDeliveryService_ShutdownStopsSessions(t *testing.T) {
	env := newTestEnv(t, cache.NewNoopCache(), 5*time.Millisecond)
	seedReading(t, env.db, 600)
	ctx := context.Background()

	_, err := env.service.Start(ctx, "student-1", &StartSessionRequest{AssessmentID: readingID})
	require.NoError(t, err)

	env.service.Shutdown()
	assert.Equal(t, 0, env.service.ActiveSessions())
}
