package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
)

// DefaultScorePerCorrect is the score awarded for each correct selection.
const DefaultScorePerCorrect = 0.25

type QuestionLookup interface {
	QuestionByNumber(ctx context.Context, assessmentID uint, number int) (*models.Question, error)
}

// ChoiceScope is where a choice must sit to count for an answer: its group
// and the question numbers the answer covers.
type ChoiceScope struct {
	GroupID uint
	First   int
	Last    int
}

func (sc ChoiceScope) Covers(c *models.Choice) bool {
	return c.GroupID == sc.GroupID && c.QuestionNumber >= sc.First && c.QuestionNumber <= sc.Last
}

// ChoiceChecker reports whether a choice is a correct option within scope.
// Choices outside the scope are never correct.
type ChoiceChecker interface {
	ChoiceIsCorrect(ctx context.Context, scope ChoiceScope, choiceID uint) (bool, error)
}

type StatementLookup interface {
	StatementKey(ctx context.Context, questionID uint) (models.StatementChoice, error)
}

type ResultStore interface {
	UpsertResult(ctx context.Context, userID string, in ResultInput) error
	UpsertListeningResult(ctx context.Context, userID string, in ResultInput) error
}

type EssaySubmitter interface {
	SubmitEssay(ctx context.Context, userID string, in EssayInput) error
}

// Gateway is everything the pipeline needs from the outside world.
type Gateway interface {
	QuestionLookup
	ChoiceChecker
	StatementLookup
	ResultStore
	EssaySubmitter
}

type ResultInput struct {
	AssessmentID uint
	Score        float64
	TimeSpent    int
	TotalCorrect int
}

type EssayInput struct {
	AssessmentID uint
	Part1        string
	Part2        string
}

// Outcome describes a finished submission.
type Outcome struct {
	AssessmentID uint               `json:"assessment_id"`
	Section      models.SectionKind `json:"section"`
	Score        float64            `json:"score"`
	TotalCorrect int                `json:"total_correct"`
	TimeSpent    int                `json:"time_spent"`
	Graded       int                `json:"graded"`
	Redirect     string             `json:"redirect"`
}

type PipelineConfig struct {
	ScorePerCorrect float64
	HomePath        string
}

// Pipeline grades a session and persists the outcome.
type Pipeline struct {
	gateway   Gateway
	scoreUnit float64
	homePath  string
	logger    *slog.Logger
}

func NewPipeline(gateway Gateway, cfg PipelineConfig, logger *slog.Logger) *Pipeline {
	if cfg.ScorePerCorrect <= 0 {
		cfg.ScorePerCorrect = DefaultScorePerCorrect
	}
	if cfg.HomePath == "" {
		cfg.HomePath = "/"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		gateway:   gateway,
		scoreUnit: cfg.ScorePerCorrect,
		homePath:  cfg.HomePath,
		logger:    logger,
	}
}

// Submit runs the submission for the session. Only one submission can run per
// session at a time; a concurrent call gets ErrSubmissionInProgress. Any
// failure leaves the session open with submitting cleared so it can be
// retried.
func (p *Pipeline) Submit(ctx context.Context, s *Session, userID string) (*Outcome, error) {
	a := s.Assessment()
	if a == nil {
		return nil, ErrNoAssessment
	}
	if err := s.BeginSubmit(); err != nil {
		return nil, err
	}

	var (
		out *Outcome
		err error
	)
	if a.Section == models.SectionWriting {
		out, err = p.submitEssay(ctx, s, a, userID)
	} else {
		out, err = p.submitGraded(ctx, s, a, userID)
	}
	if err != nil {
		s.AbortSubmit()
		return nil, err
	}

	s.SetProgress(100)
	s.Finish()
	return out, nil
}

func (p *Pipeline) submitEssay(ctx context.Context, s *Session, a *models.Assessment, userID string) (*Outcome, error) {
	in := EssayInput{
		AssessmentID: a.ID,
		Part1:        s.Essay(1),
		Part2:        s.Essay(2),
	}
	if err := p.gateway.SubmitEssay(ctx, userID, in); err != nil {
		return nil, fmt.Errorf("submit essay: %w", err)
	}
	return &Outcome{
		AssessmentID: a.ID,
		Section:      a.Section,
		TimeSpent:    timeSpent(a, s),
		Redirect:     p.homePath,
	}, nil
}

func (p *Pipeline) submitGraded(ctx context.Context, s *Session, a *models.Assessment, userID string) (*Outcome, error) {
	entries := s.Answers()
	correct := 0
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := p.grade(ctx, a, entry)
		if err != nil {
			return nil, fmt.Errorf("grade question %d: %w", entry.QuestionNumber(), err)
		}
		correct += n
		s.SetProgress(progressOf(i+1, a.TotalQuestions))

		p.logger.Debug("Graded answer",
			"assessment_id", a.ID,
			"question_number", entry.QuestionNumber(),
			"type", entry.Type(),
			"correct", n)
	}

	in := ResultInput{
		AssessmentID: a.ID,
		Score:        p.scoreUnit * float64(correct),
		TimeSpent:    timeSpent(a, s),
		TotalCorrect: correct,
	}

	var err error
	if a.Section == models.SectionListening {
		err = p.gateway.UpsertListeningResult(ctx, userID, in)
	} else {
		err = p.gateway.UpsertResult(ctx, userID, in)
	}
	if err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	return &Outcome{
		AssessmentID: a.ID,
		Section:      a.Section,
		Score:        in.Score,
		TotalCorrect: correct,
		TimeSpent:    in.TimeSpent,
		Graded:       len(entries),
		Redirect:     p.homePath,
	}, nil
}

// grade returns the number of correct units in one answer.
func (p *Pipeline) grade(ctx context.Context, a *models.Assessment, entry Answer) (int, error) {
	q, err := p.gateway.QuestionByNumber(ctx, a.ID, entry.QuestionNumber())
	if err != nil {
		return 0, err
	}

	switch v := entry.(type) {
	case SingleChoiceAnswer:
		ok, err := p.gateway.ChoiceIsCorrect(ctx, scopeOf(a, q, 1), v.ChoiceID)
		if err != nil {
			return 0, err
		}
		return boolToInt(ok), nil

	case MultiChoiceAnswer:
		n := 0
		scope := scopeOf(a, q, MaxMultiChoiceSelections)
		for _, id := range v.GradedSelections() {
			ok, err := p.gateway.ChoiceIsCorrect(ctx, scope, id)
			if err != nil {
				return 0, err
			}
			n += boolToInt(ok)
		}
		return n, nil

	case StatementAnswer:
		key, err := p.gateway.StatementKey(ctx, q.ID)
		if err != nil {
			return 0, err
		}
		return boolToInt(key == v.Content), nil

	case CompletionAnswer:
		return boolToInt(q.CorrectAnswer == v.Content), nil

	default:
		return 0, ErrUnknownAnswerType
	}
}

// scopeOf returns the choice scope of question q. A two-answer pair spans
// the aligned block of width questions inside its group, so either number
// of the pair accepts the pair's choices.
func scopeOf(a *models.Assessment, q *models.Question, width int) ChoiceScope {
	n := q.QuestionNumber
	g := GroupOf(a, n)
	if g == nil {
		return ChoiceScope{GroupID: q.GroupID, First: n, Last: n}
	}
	first := g.StartQuestionNumber + (n-g.StartQuestionNumber)/width*width
	return ChoiceScope{
		GroupID: g.ID,
		First:   first,
		Last:    min(first+width-1, g.EndQuestionNumber),
	}
}

func progressOf(processed, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(100 * float64(processed) / float64(total)))
}

func timeSpent(a *models.Assessment, s *Session) int {
	return max(0, a.Duration-s.Remaining())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
