package delivery

import (
	"fmt"
	"slices"
	"strings"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
)

type AnswerType string

const (
	AnswerSingleChoice AnswerType = "single_choice"
	AnswerMultiChoice  AnswerType = "multi_choice"
	AnswerStatement    AnswerType = "statement"
	AnswerCompletion   AnswerType = "completion"
)

// MaxMultiChoiceSelections is the number of ids a two-answer multi choice
// question accepts and grades.
const MaxMultiChoiceSelections = 2

// Answer is one ledger entry. The set of implementations is closed: only the
// variants declared in this file satisfy it.
type Answer interface {
	QuestionNumber() int
	Type() AnswerType
	sealed()
}

type SingleChoiceAnswer struct {
	Number   int
	ChoiceID uint
}

type MultiChoiceAnswer struct {
	Number    int
	ChoiceIDs []uint
}

// StatementAnswer covers both true/false payload flavors: identifying
// information in a passage and plain true/false/not-given statements.
type StatementAnswer struct {
	Number  int
	Flavor  models.StatementFlavor
	Content models.StatementChoice
}

// CompletionAnswer covers fill-in-blank, table completion and letter answers.
type CompletionAnswer struct {
	Number  int
	Kind    models.QuestionGroupType
	Content string
}

func (a SingleChoiceAnswer) QuestionNumber() int { return a.Number }
func (a MultiChoiceAnswer) QuestionNumber() int  { return a.Number }
func (a StatementAnswer) QuestionNumber() int    { return a.Number }
func (a CompletionAnswer) QuestionNumber() int   { return a.Number }

func (SingleChoiceAnswer) Type() AnswerType { return AnswerSingleChoice }
func (MultiChoiceAnswer) Type() AnswerType  { return AnswerMultiChoice }
func (StatementAnswer) Type() AnswerType    { return AnswerStatement }
func (CompletionAnswer) Type() AnswerType   { return AnswerCompletion }

func (SingleChoiceAnswer) sealed() {}
func (MultiChoiceAnswer) sealed()  {}
func (StatementAnswer) sealed()    {}
func (CompletionAnswer) sealed()   {}

// GradedSelections returns the selections that count towards the score:
// the first two distinct ids, in the order they were recorded.
func (a MultiChoiceAnswer) GradedSelections() []uint {
	graded := make([]uint, 0, MaxMultiChoiceSelections)
	for _, id := range a.ChoiceIDs {
		if len(graded) == MaxMultiChoiceSelections {
			break
		}
		if !slices.Contains(graded, id) {
			graded = append(graded, id)
		}
	}
	return graded
}

// AnswerTypeFor returns the answer variant a question group accepts.
func AnswerTypeFor(group models.QuestionGroupType) (AnswerType, bool) {
	switch group {
	case models.GroupSingleChoice:
		return AnswerSingleChoice, true
	case models.GroupMultiChoiceTwo:
		return AnswerMultiChoice, true
	case models.GroupTrueFalseNotGiven:
		return AnswerStatement, true
	case models.GroupFillInBlank, models.GroupTableCompletion, models.GroupLetterAnswer:
		return AnswerCompletion, true
	default:
		return "", false
	}
}

// AnswerInput is the wire form of an answer record.
type AnswerInput struct {
	Type           AnswerType               `json:"type" validate:"required,answer_type"`
	QuestionNumber int                      `json:"question_number" validate:"required,min=1"`
	ChoiceID       uint                     `json:"choice_id,omitempty"`
	ChoiceIDs      []uint                   `json:"choice_ids,omitempty"`
	Flavor         models.StatementFlavor   `json:"flavor,omitempty"`
	Kind           models.QuestionGroupType `json:"kind,omitempty"`
	Content        string                   `json:"content,omitempty"`
}

// ToAnswer converts the wire form into its ledger variant.
func (in AnswerInput) ToAnswer() (Answer, error) {
	switch in.Type {
	case AnswerSingleChoice:
		if in.ChoiceID == 0 {
			return nil, fmt.Errorf("question %d: choice_id: %w", in.QuestionNumber, ErrMissingAnswer)
		}
		return SingleChoiceAnswer{Number: in.QuestionNumber, ChoiceID: in.ChoiceID}, nil
	case AnswerMultiChoice:
		ids := make([]uint, len(in.ChoiceIDs))
		copy(ids, in.ChoiceIDs)
		return MultiChoiceAnswer{Number: in.QuestionNumber, ChoiceIDs: ids}, nil
	case AnswerStatement:
		flavor := in.Flavor
		if flavor == "" {
			flavor = models.FlavorTrueFalseNotGiven
		}
		content := models.StatementChoice(strings.ToUpper(strings.TrimSpace(in.Content)))
		if content == "" {
			return nil, fmt.Errorf("question %d: content: %w", in.QuestionNumber, ErrMissingAnswer)
		}
		return StatementAnswer{Number: in.QuestionNumber, Flavor: flavor, Content: content}, nil
	case AnswerCompletion:
		kind := in.Kind
		if kind == "" {
			kind = models.GroupFillInBlank
		}
		return CompletionAnswer{Number: in.QuestionNumber, Kind: kind, Content: in.Content}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAnswerType, in.Type)
	}
}

// ToInput converts a ledger variant back to its wire form.
func ToInput(a Answer) AnswerInput {
	switch v := a.(type) {
	case SingleChoiceAnswer:
		return AnswerInput{Type: AnswerSingleChoice, QuestionNumber: v.Number, ChoiceID: v.ChoiceID}
	case MultiChoiceAnswer:
		return AnswerInput{Type: AnswerMultiChoice, QuestionNumber: v.Number, ChoiceIDs: v.ChoiceIDs}
	case StatementAnswer:
		return AnswerInput{Type: AnswerStatement, QuestionNumber: v.Number, Flavor: v.Flavor, Content: string(v.Content)}
	case CompletionAnswer:
		return AnswerInput{Type: AnswerCompletion, QuestionNumber: v.Number, Kind: v.Kind, Content: v.Content}
	default:
		panic(fmt.Sprintf("delivery: unhandled answer variant %T", a))
	}
}
