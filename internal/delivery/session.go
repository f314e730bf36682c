package delivery

import (
	"fmt"
	"sync"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
)

type Mode string

const (
	ModeNone     Mode = ""
	ModeTest     Mode = "test"
	ModePractice Mode = "practice"
	ModeEdit     Mode = "edit"
)

// IsActive reports whether the mode is a timed exam mode. Authoring (edit)
// never auto-submits.
func (m Mode) IsActive() bool {
	return m == ModeTest || m == ModePractice
}

func (m Mode) IsValid() bool {
	return m == ModeTest || m == ModePractice || m == ModeEdit
}

// EssayParts is the number of writing tasks collected per attempt.
const EssayParts = 2

// Session holds the whole state of one exam attempt. All methods are safe for
// concurrent use; the timer goroutine and request handlers share it.
type Session struct {
	mu sync.Mutex

	assessment *models.Assessment
	mode       Mode
	pos        Position
	visited    []bool
	remaining  int
	started    bool
	finished   bool

	ledger *Ledger
	essays map[int]string

	submitting bool
	progress   int
	fired      bool

	autoSubmit chan struct{}
}

func NewSession(a *models.Assessment, mode Mode) *Session {
	s := &Session{
		ledger:     NewLedger(),
		autoSubmit: make(chan struct{}, 1),
	}
	s.load(a, mode)
	return s
}

// Load replaces the assessment and mode and resets every derived field.
func (s *Session) Load(a *models.Assessment, mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(a, mode)
}

func (s *Session) load(a *models.Assessment, mode Mode) {
	s.assessment = a
	s.mode = mode
	s.started = false
	s.finished = false
	s.submitting = false
	s.progress = 0
	s.fired = false
	s.ledger.Reset()
	s.essays = make(map[int]string, EssayParts)

	// drop a trigger left over from the previous load
	select {
	case <-s.autoSubmit:
	default:
	}

	if a == nil {
		s.remaining = 0
		s.visited = nil
		s.pos = Position{}
		return
	}
	s.remaining = a.Duration
	s.visited = make([]bool, a.TotalQuestions)
	s.pos = Start(a)
	s.markVisited(s.pos.Question)
}

// SetMode switches the delivery mode. A different mode restarts the attempt.
func (s *Session) SetMode(mode Mode) error {
	if !mode.IsValid() {
		return ErrInvalidMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSubmissionInProgress
	}
	if mode == s.mode {
		return nil
	}
	s.load(s.assessment, mode)
	return nil
}

func (s *Session) Assessment() *models.Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assessment
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *Session) Position() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *Session) SetTab(tab Tab) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.navigable(); err != nil {
		return err
	}
	if !HasTab(s.assessment, tab) {
		return ErrUnknownTab
	}
	s.pos.Tab = tab
	return nil
}

func (s *Session) SelectQuestion(n int) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.navigable(); err != nil {
		return s.pos, err
	}
	pos, err := Select(s.assessment, n)
	if err != nil {
		return s.pos, err
	}
	s.pos = pos
	s.markVisited(n)
	return s.pos, nil
}

func (s *Session) Next() (Position, error) {
	return s.step(Next)
}

func (s *Session) Previous() (Position, error) {
	return s.step(Previous)
}

func (s *Session) step(move func(*models.Assessment, Position) Position) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.navigable(); err != nil {
		return s.pos, err
	}
	s.pos = move(s.assessment, s.pos)
	s.markVisited(s.pos.Question)
	return s.pos, nil
}

// RecordAnswer stores or replaces the answer for its question number.
func (s *Session) RecordAnswer(a Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return err
	}
	n := a.QuestionNumber()
	if n < 1 || n > s.assessment.TotalQuestions {
		return ErrQuestionOutOfRange
	}
	g := GroupOf(s.assessment, n)
	if g == nil {
		return ErrQuestionOutOfRange
	}
	if want, ok := AnswerTypeFor(g.Type); !ok || want != a.Type() {
		return fmt.Errorf("%w: question %d takes %s, got %s", ErrAnswerTypeMismatch, n, g.Type, a.Type())
	}
	switch v := a.(type) {
	case MultiChoiceAnswer:
		if len(v.ChoiceIDs) > MaxMultiChoiceSelections {
			return ErrSelectionLimit
		}
	case CompletionAnswer:
		v.Kind = g.Type
		a = v
	}
	s.ledger.Record(a)
	return nil
}

// RecordEssay stores the essay text for a 1-based writing part number.
func (s *Session) RecordEssay(partNumber int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return err
	}
	if s.assessment.Section != models.SectionWriting {
		return ErrNotWritingSection
	}
	if partNumber < 1 || partNumber > EssayParts {
		return ErrInvalidEssayPart
	}
	s.essays[partNumber] = text
	return nil
}

// Answers returns a snapshot of the ledger.
func (s *Session) Answers() []Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Entries()
}

// Essay returns the text for a writing part, empty when nothing was typed.
func (s *Session) Essay(partNumber int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.essays[partNumber]
}

// Tick advances the countdown by one second. It reports whether this tick
// raised the auto-submit trigger.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeNone || s.assessment == nil {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
		s.started = true
	}
	if s.remaining > 0 || !s.started || s.submitting || s.fired || !s.mode.IsActive() {
		return false
	}
	s.fired = true
	select {
	case s.autoSubmit <- struct{}{}:
	default:
	}
	return true
}

// AutoSubmit delivers one value per load when the countdown reaches zero.
func (s *Session) AutoSubmit() <-chan struct{} {
	return s.autoSubmit
}

// BeginSubmit marks the session as submitting. It fails when a submission is
// already running, which makes it the double-submission guard.
func (s *Session) BeginSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assessment == nil {
		return ErrNoAssessment
	}
	if s.finished {
		return ErrSessionFinished
	}
	if s.submitting {
		return ErrSubmissionInProgress
	}
	s.submitting = true
	s.progress = 0
	return nil
}

func (s *Session) SetProgress(p int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = max(0, min(100, p))
}

// AbortSubmit clears the submitting flag after a failed submission. Progress
// keeps its last value.
func (s *Session) AbortSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
}

// Finish ends the attempt. No further writes or ticks are accepted.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	s.finished = true
	s.mode = ModeNone
}

func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// State is a read-only view of a session.
type State struct {
	AssessmentID uint               `json:"assessment_id"`
	Section      models.SectionKind `json:"section"`
	Mode         Mode               `json:"mode"`
	Position     Position           `json:"position"`
	Remaining    int                `json:"remaining"`
	Started      bool               `json:"started"`
	Submitting   bool               `json:"submitting"`
	Progress     int                `json:"progress"`
	Finished     bool               `json:"finished"`
	Answers      []AnswerInput      `json:"answers"`
	Essays       map[int]string     `json:"essays,omitempty"`
	Visited      []int              `json:"visited"`
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Mode:       s.mode,
		Position:   s.pos,
		Remaining:  s.remaining,
		Started:    s.started,
		Submitting: s.submitting,
		Progress:   s.progress,
		Finished:   s.finished,
		Answers:    make([]AnswerInput, 0, s.ledger.Len()),
		Visited:    []int{},
	}
	if s.assessment != nil {
		st.AssessmentID = s.assessment.ID
		st.Section = s.assessment.Section
	}
	for _, a := range s.ledger.Entries() {
		st.Answers = append(st.Answers, ToInput(a))
	}
	if len(s.essays) > 0 {
		st.Essays = make(map[int]string, len(s.essays))
		for k, v := range s.essays {
			st.Essays[k] = v
		}
	}
	for i, seen := range s.visited {
		if seen {
			st.Visited = append(st.Visited, i+1)
		}
	}
	return st
}

func (s *Session) navigable() error {
	if s.assessment == nil {
		return ErrNoAssessment
	}
	if s.finished {
		return ErrSessionFinished
	}
	return nil
}

func (s *Session) writable() error {
	if err := s.navigable(); err != nil {
		return err
	}
	if s.submitting {
		return ErrSubmissionInProgress
	}
	return nil
}

func (s *Session) markVisited(n int) {
	if n >= 1 && n <= len(s.visited) {
		s.visited[n-1] = true
	}
}
