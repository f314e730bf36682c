package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionGroupType string

const (
	GroupSingleChoice      QuestionGroupType = "SINGLE_CHOICE"
	GroupMultiChoiceTwo    QuestionGroupType = "MULTI_CHOICE_TWO_ANSWERS"
	GroupTrueFalseNotGiven QuestionGroupType = "TRUE_FALSE_NOT_GIVEN"
	GroupFillInBlank       QuestionGroupType = "FILL_IN_BLANK"
	GroupTableCompletion   QuestionGroupType = "TABLE_COMPLETION"
	GroupLetterAnswer      QuestionGroupType = "LETTER_ANSWER"
)

// QuestionGroup clusters consecutive questions that share one authoring type.
type QuestionGroup struct {
	ID                  uint              `json:"id" gorm:"primaryKey"`
	PartID              uint              `json:"part_id" gorm:"not null;index"`
	Type                QuestionGroupType `json:"type" gorm:"not null;size:40" validate:"required,question_group_type"`
	StartQuestionNumber int               `json:"start_question_number" gorm:"not null" validate:"min=1"`
	EndQuestionNumber   int               `json:"end_question_number" gorm:"not null" validate:"min=1,gtefield=StartQuestionNumber"`
	Instruction         string            `json:"instruction" gorm:"type:text"`

	// Payload holds the type-specific authoring data (table layout, letter
	// list, blanks) that the delivery engine passes through untouched.
	Payload datatypes.JSON `json:"payload" gorm:"type:jsonb"`

	Choices []Choice `json:"choices,omitempty" gorm:"foreignKey:GroupID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Question struct {
	ID             uint `json:"id" gorm:"primaryKey"`
	AssessmentID   uint `json:"assessment_id" gorm:"not null;uniqueIndex:idx_question_assessment_number"`
	PartID         uint `json:"part_id" gorm:"not null;index"`
	GroupID        uint `json:"group_id" gorm:"not null;index"`
	QuestionNumber int  `json:"question_number" gorm:"not null;uniqueIndex:idx_question_assessment_number"`

	// CorrectAnswer is the canonical answer summary. Completion-style
	// questions are graded against it verbatim.
	CorrectAnswer string `json:"-" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Choice struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	GroupID        uint   `json:"group_id" gorm:"not null;index"`
	QuestionNumber int    `json:"question_number" gorm:"not null"`
	Label          string `json:"label" gorm:"size:10"`
	Content        string `json:"content" gorm:"type:text"`
	IsCorrect      bool   `json:"-" gorm:"default:false"`
}

type StatementFlavor string

const (
	FlavorIdentifyingInformation StatementFlavor = "IDENTIFYING_INFORMATION"
	FlavorTrueFalseNotGiven      StatementFlavor = "TRUE_FALSE_NOT_GIVEN"
)

type StatementChoice string

const (
	StatementTrue     StatementChoice = "TRUE"
	StatementFalse    StatementChoice = "FALSE"
	StatementNotGiven StatementChoice = "NOT_GIVEN"
	StatementYes      StatementChoice = "YES"
	StatementNo       StatementChoice = "NO"
)

// StatementKey stores the correct choice for a true/false style question.
type StatementKey struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	QuestionID uint            `json:"question_id" gorm:"not null;uniqueIndex"`
	Flavor     StatementFlavor `json:"flavor" gorm:"not null;size:40"`
	Correct    StatementChoice `json:"correct" gorm:"not null;size:20"`
}

func (QuestionGroup) TableName() string {
	return "question_groups"
}

func (Question) TableName() string {
	return "questions"
}

func (Choice) TableName() string {
	return "choices"
}

func (StatementKey) TableName() string {
	return "statement_keys"
}

// QuestionCount is the number of questions the group covers.
func (g *QuestionGroup) QuestionCount() int {
	return g.EndQuestionNumber - g.StartQuestionNumber + 1
}

// Contains reports whether question number n falls inside the group range.
func (g *QuestionGroup) Contains(n int) bool {
	return n >= g.StartQuestionNumber && n <= g.EndQuestionNumber
}
