package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-delivery-service/internal/cache"
	"github.com/SAP-F-2025/exam-delivery-service/internal/delivery"
	"github.com/SAP-F-2025/exam-delivery-service/internal/events"
	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
	"github.com/SAP-F-2025/exam-delivery-service/internal/validator"
	"github.com/google/uuid"
)

// submitTimeout bounds a submission once it has started. Submissions are not
// tied to the request that triggered them.
const submitTimeout = 30 * time.Second

type DeliveryConfig struct {
	TickInterval    time.Duration
	ScorePerCorrect float64
	HomePath        string
	CacheTTL        time.Duration
}

// activeSession is a running attempt owned by one user.
type activeSession struct {
	id        string
	userID    string
	startedAt time.Time
	session   *delivery.Session
	timer     *delivery.Timer

	stop     chan struct{}
	stopOnce sync.Once
}

// close stops the timer and the auto-submit watcher.
func (e *activeSession) close() {
	e.stopOnce.Do(func() {
		close(e.stop)
		e.timer.Stop()
	})
}

type deliveryService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	validator *validator.Validator
	pipeline  *delivery.Pipeline
	logger    *slog.Logger
	ops       *ServiceLogger
	config    DeliveryConfig

	rootCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*activeSession
	byUser   map[string]*activeSession
}

func NewDeliveryService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	v *validator.Validator,
	logger *slog.Logger,
	cfg DeliveryConfig,
) DeliveryService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheService == nil {
		cacheService = cache.NewNoopCache()
	}
	if cfg.HomePath == "" {
		cfg.HomePath = "/"
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	return &deliveryService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		validator: v,
		pipeline: delivery.NewPipeline(newGradingGateway(repo), delivery.PipelineConfig{
			ScorePerCorrect: cfg.ScorePerCorrect,
			HomePath:        cfg.HomePath,
		}, logger),
		logger:   logger,
		ops:      NewServiceLogger(logger, LogConfig{Service: "exam-delivery", Component: "delivery"}),
		config:   cfg,
		rootCtx:  rootCtx,
		cancel:   cancel,
		sessions: make(map[string]*activeSession),
		byUser:   make(map[string]*activeSession),
	}
}

// ===== SESSION LIFECYCLE =====

func (s *deliveryService) Start(ctx context.Context, userID string, req *StartSessionRequest) (resp *SessionResponse, err error) {
	op := s.ops.WithOperation(ctx, "start_session", userID)
	defer func() { op.LogResult(fmt.Sprint(req.AssessmentID), err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, userID, req.AssessmentID); err != nil {
		return nil, err
	}
	mode := req.Mode
	if mode == delivery.ModeNone {
		mode = delivery.ModeTest
	}

	a, err := s.loadAssessment(ctx, req.AssessmentID)
	if err != nil {
		return nil, err
	}
	if verr := s.validator.Assessment().ValidateStructure(a); verr != nil {
		return nil, NewBusinessRuleError("assessment_structure", "assessment cannot be delivered",
			map[string]interface{}{"assessment_id": a.ID, "errors": verr})
	}

	if a.Section == models.SectionWriting && mode.IsActive() {
		exists, err := s.repo.Essay().Exists(ctx, nil, userID, a.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check essay: %w", err)
		}
		if exists {
			return nil, ErrEssayAlreadySubmitted
		}
	}

	session := delivery.NewSession(a, mode)
	entry := &activeSession{
		id:        uuid.NewString(),
		userID:    userID,
		startedAt: time.Now(),
		session:   session,
		timer:     delivery.NewTimer(session, s.config.TickInterval),
		stop:      make(chan struct{}),
	}

	s.mu.Lock()
	if old := s.byUser[userID]; old != nil {
		delete(s.sessions, old.id)
		old.close()
		s.logger.Info("Replaced previous session", "user_id", userID, "session_id", old.id)
	}
	s.sessions[entry.id] = entry
	s.byUser[userID] = entry
	s.mu.Unlock()

	entry.timer.Start(s.rootCtx)
	go s.watchAutoSubmit(entry)

	s.publish(ctx, events.NewSessionStartedEvent(events.SessionStartedEvent{
		SessionID:    entry.id,
		UserID:       userID,
		AssessmentID: a.ID,
		Section:      a.Section,
		Mode:         string(mode),
		Duration:     a.Duration,
		StartedAt:    entry.startedAt,
	}))

	resp = s.response(entry)
	resp.Assessment = a
	return resp, nil
}

func (s *deliveryService) State(ctx context.Context, userID, sessionID string) (*SessionResponse, error) {
	entry, err := s.get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	resp := s.response(entry)
	resp.Assessment = entry.session.Assessment()
	return resp, nil
}

func (s *deliveryService) SetMode(ctx context.Context, userID, sessionID string, req *SetModeRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	entry, err := s.get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := entry.session.SetMode(req.Mode); err != nil {
		return nil, fmt.Errorf("failed to set mode: %w", err)
	}
	return s.response(entry), nil
}

// End discards the session without submitting.
func (s *deliveryService) End(ctx context.Context, userID, sessionID string) error {
	entry, err := s.get(userID, sessionID)
	if err != nil {
		return err
	}
	s.remove(entry)
	s.logger.Info("Session ended", "user_id", userID, "session_id", sessionID)
	return nil
}

func (s *deliveryService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *deliveryService) HomePath() string {
	return s.config.HomePath
}

// Shutdown stops every timer. Sessions are not submitted.
func (s *deliveryService) Shutdown() {
	s.cancel()

	s.mu.Lock()
	entries := make([]*activeSession, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.sessions = make(map[string]*activeSession)
	s.byUser = make(map[string]*activeSession)
	s.mu.Unlock()

	for _, e := range entries {
		e.close()
	}
	s.logger.Info("Delivery service stopped", "sessions", len(entries))
}

// ===== ANSWERS AND NAVIGATION =====

func (s *deliveryService) RecordAnswer(ctx context.Context, userID, sessionID string, in *delivery.AnswerInput) (*SessionResponse, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	answer, err := in.ToAnswer()
	if err != nil {
		return nil, err
	}
	entry, err := s.get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := entry.session.RecordAnswer(answer); err != nil {
		return nil, fmt.Errorf("failed to record answer %d: %w", in.QuestionNumber, err)
	}
	return s.response(entry), nil
}

func (s *deliveryService) RecordEssay(ctx context.Context, userID, sessionID string, part int, req *EssayRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	entry, err := s.get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := entry.session.RecordEssay(part, req.Content); err != nil {
		return nil, fmt.Errorf("failed to record essay part %d: %w", part, err)
	}
	return s.response(entry), nil
}

func (s *deliveryService) Navigate(ctx context.Context, userID, sessionID string, dir Direction) (*SessionResponse, error) {
	entry, err := s.get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	switch dir {
	case DirectionNext:
		_, err = entry.session.Next()
	case DirectionPrevious:
		_, err = entry.session.Previous()
	default:
		return nil, ValidationErrors{{Field: "direction", Message: "must be next or previous", Value: dir, Rule: "oneof"}}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to navigate %s: %w", dir, err)
	}
	return s.response(entry), nil
}

func (s *deliveryService) SelectQuestion(ctx context.Context, userID, sessionID string, req *SelectQuestionRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	entry, err := s.get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := entry.session.SelectQuestion(req.QuestionNumber); err != nil {
		return nil, fmt.Errorf("failed to select question %d: %w", req.QuestionNumber, err)
	}
	return s.response(entry), nil
}

func (s *deliveryService) SetTab(ctx context.Context, userID, sessionID string, req *SetTabRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	entry, err := s.get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := entry.session.SetTab(delivery.Tab(strings.TrimSpace(string(req.Tab)))); err != nil {
		return nil, fmt.Errorf("failed to set tab: %w", err)
	}
	return s.response(entry), nil
}

// ===== SUBMISSION =====

// Submit grades and stores the attempt. The timer keeps running until the
// submission succeeds; the submitting flag keeps it from firing meanwhile.
func (s *deliveryService) Submit(ctx context.Context, userID, sessionID string) (out *delivery.Outcome, err error) {
	op := s.ops.WithOperation(ctx, "submit_session", userID)
	defer func() { op.LogResult(sessionID, err) }()

	entry, err := s.get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, entry, events.ReasonManual)
}

func (s *deliveryService) submit(ctx context.Context, entry *activeSession, reason string) (*delivery.Outcome, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), submitTimeout)
	defer cancel()

	a := entry.session.Assessment()
	out, err := s.pipeline.Submit(ctx, entry.session, entry.userID)
	if err != nil {
		if errors.Is(err, delivery.ErrSubmissionInProgress) || errors.Is(err, delivery.ErrSessionFinished) {
			return nil, err
		}
		if repositories.IsAlreadyExistsError(err) {
			// the essay was stored by an earlier attempt
			s.remove(entry)
			return nil, ErrEssayAlreadySubmitted
		}
		s.publish(ctx, events.NewSubmitFailedEvent(events.SubmitFailedEvent{
			SessionID:    entry.id,
			UserID:       entry.userID,
			AssessmentID: assessmentID(a),
			Reason:       reason,
			Error:        err.Error(),
			FailedAt:     time.Now(),
		}))
		return nil, fmt.Errorf("failed to submit session: %w", err)
	}

	s.remove(entry)

	if a.Section == models.SectionWriting {
		s.publish(ctx, events.NewEssaySubmittedEvent(events.EssaySubmittedEvent{
			SessionID:    entry.id,
			UserID:       entry.userID,
			AssessmentID: a.ID,
			Part1Words:   len(strings.Fields(entry.session.Essay(1))),
			Part2Words:   len(strings.Fields(entry.session.Essay(2))),
			Reason:       reason,
			SubmittedAt:  time.Now(),
		}))
	} else {
		s.publish(ctx, events.NewResultSubmittedEvent(events.ResultSubmittedEvent{
			SessionID:    entry.id,
			UserID:       entry.userID,
			AssessmentID: a.ID,
			Section:      a.Section,
			Score:        out.Score,
			TotalCorrect: out.TotalCorrect,
			TimeSpent:    out.TimeSpent,
			Reason:       reason,
			SubmittedAt:  time.Now(),
		}))
	}

	s.logger.Info("Session submitted",
		"session_id", entry.id,
		"user_id", entry.userID,
		"assessment_id", a.ID,
		"reason", reason,
		"score", out.Score,
		"total_correct", out.TotalCorrect)
	return out, nil
}

// watchAutoSubmit consumes the session's timeout trigger until the session
// is closed.
func (s *deliveryService) watchAutoSubmit(entry *activeSession) {
	for {
		select {
		case <-entry.stop:
			return
		case <-entry.session.AutoSubmit():
			s.logger.Info("Time is up, submitting", "session_id", entry.id, "user_id", entry.userID)
			if _, err := s.submit(s.rootCtx, entry, events.ReasonTimeout); err != nil {
				s.logger.Error("Auto-submit failed", "session_id", entry.id, "user_id", entry.userID, "error", err)
			}
		}
	}
}

// ===== HELPERS =====

// checkAccount rejects deactivated accounts. Users unknown to the local
// projection come straight from the identity provider and are allowed.
func (s *deliveryService) checkAccount(ctx context.Context, userID string, assessmentID uint) error {
	active, err := s.repo.User().IsActive(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to check account: %w", err)
	}
	if !active {
		return NewPermissionError(userID, fmt.Sprint(assessmentID), "assessment", "start", "account is deactivated")
	}
	return nil
}

func (s *deliveryService) loadAssessment(ctx context.Context, id uint) (*models.Assessment, error) {
	key := cache.AssessmentKey(id)

	var cached models.Assessment
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Assessment cache read failed", "assessment_id", id, "error", err)
	}

	a, err := s.repo.Assessment().GetHydrated(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}

	if err := s.cache.Set(ctx, key, a, s.config.CacheTTL); err != nil {
		s.logger.Warn("Failed to cache assessment", "assessment_id", id, "error", err)
	}
	return a, nil
}

func (s *deliveryService) get(userID, sessionID string) (*activeSession, error) {
	s.mu.Lock()
	entry, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if entry.userID != userID {
		return nil, NewPermissionError(userID, sessionID, "session", "access", "session belongs to another user")
	}
	return entry, nil
}

func (s *deliveryService) remove(entry *activeSession) {
	s.mu.Lock()
	if s.sessions[entry.id] == entry {
		delete(s.sessions, entry.id)
	}
	if s.byUser[entry.userID] == entry {
		delete(s.byUser, entry.userID)
	}
	s.mu.Unlock()
	entry.close()
}

func (s *deliveryService) response(entry *activeSession) *SessionResponse {
	return &SessionResponse{
		SessionID: entry.id,
		UserID:    entry.userID,
		StartedAt: entry.startedAt,
		State:     entry.session.Snapshot(),
	}
}

func (s *deliveryService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "event_id", event.ID, "error", err)
	}
}

func assessmentID(a *models.Assessment) uint {
	if a == nil {
		return 0
	}
	return a.ID
}
