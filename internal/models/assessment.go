package models

import (
	"time"

	"gorm.io/gorm"
)

type SectionKind string

const (
	SectionReading   SectionKind = "READING"
	SectionListening SectionKind = "LISTENING"
	SectionWriting   SectionKind = "WRITING"
)

// Assessment is one exam instance of a single section kind. Once hydrated
// (parts, groups, questions) it is treated as immutable for an attempt.
type Assessment struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	Name           string      `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Section        SectionKind `json:"section" gorm:"not null;size:20;index" validate:"required,section_kind"`
	TotalQuestions int         `json:"total_questions" gorm:"not null;default:0" validate:"min=0"`
	Duration       int         `json:"duration" gorm:"not null" validate:"min=0"` // seconds

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Parts []Part `json:"parts" gorm:"foreignKey:AssessmentID" validate:"dive"`
}

// Part is a subdivision of an assessment: a reading passage, a listening
// recording or a writing task.
type Part struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	AssessmentID uint `json:"assessment_id" gorm:"not null;index"`
	Order        int  `json:"order" gorm:"column:part_order;not null"`

	Passage        *Passage        `json:"passage,omitempty" gorm:"foreignKey:PartID"`
	EssayPart      *EssayPart      `json:"essay_part,omitempty" gorm:"foreignKey:PartID"`
	QuestionGroups []QuestionGroup `json:"question_groups" gorm:"foreignKey:PartID" validate:"dive"`
	Questions      []Question      `json:"questions" gorm:"foreignKey:PartID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Passage struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	PartID  uint   `json:"part_id" gorm:"not null;uniqueIndex"`
	Title   string `json:"title" gorm:"size:255"`
	Content string `json:"content" gorm:"type:text"`
	// AudioURL is set for listening parts
	AudioURL *string `json:"audio_url,omitempty" gorm:"size:500"`
}

type EssayPart struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	PartID   uint   `json:"part_id" gorm:"not null;uniqueIndex"`
	Prompt   string `json:"prompt" gorm:"type:text"`
	MinWords int    `json:"min_words" gorm:"default:0"`
}

func (Assessment) TableName() string {
	return "assessments"
}

func (Part) TableName() string {
	return "parts"
}

// QuestionRange returns the lowest start and highest end question number over
// the part's groups. ok is false for a part without groups.
func (p *Part) QuestionRange() (start, end int, ok bool) {
	for i, g := range p.QuestionGroups {
		if i == 0 || g.StartQuestionNumber < start {
			start = g.StartQuestionNumber
		}
		if i == 0 || g.EndQuestionNumber > end {
			end = g.EndQuestionNumber
		}
	}
	return start, end, len(p.QuestionGroups) > 0
}

// IsGraded reports whether answers of this section are scored automatically.
func (k SectionKind) IsGraded() bool {
	return k == SectionReading || k == SectionListening
}
