package validator

import (
	"encoding/json"
	"fmt"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
)

// AssessmentValidator checks that a hydrated assessment can be delivered
type AssessmentValidator struct{}

func NewAssessmentValidator() *AssessmentValidator {
	return &AssessmentValidator{}
}

// ValidateStructure checks group ranges and question numbering. It returns
// nil or a non-empty ValidationErrors.
func (v *AssessmentValidator) ValidateStructure(a *models.Assessment) error {
	var errs ValidationErrors

	if len(a.Parts) == 0 {
		errs = append(errs, ValidationError{Field: "parts", Message: "assessment has no parts", Rule: "required"})
	}
	if a.Duration < 0 {
		errs = append(errs, ValidationError{Field: "duration", Message: "must not be negative", Value: a.Duration, Rule: "min"})
	}

	owner := make(map[int]uint)
	for _, part := range a.Parts {
		if a.Section == models.SectionWriting {
			if part.EssayPart == nil {
				errs = append(errs, partError(part, "essay_part", "writing part has no essay prompt"))
			}
			continue
		}
		for _, g := range part.QuestionGroups {
			errs = append(errs, v.validateGroup(a, &g)...)
			for n := g.StartQuestionNumber; n <= g.EndQuestionNumber; n++ {
				if other, ok := owner[n]; ok && other != g.ID {
					errs = append(errs, ValidationError{
						Field:   "question_groups",
						Message: fmt.Sprintf("question %d is covered by groups %d and %d", n, other, g.ID),
						Value:   n,
						Rule:    "overlap",
					})
					continue
				}
				owner[n] = g.ID
			}
		}
	}

	if a.Section.IsGraded() && len(owner) != a.TotalQuestions {
		errs = append(errs, ValidationError{
			Field:   "total_questions",
			Message: fmt.Sprintf("groups cover %d questions but the assessment declares %d", len(owner), a.TotalQuestions),
			Value:   a.TotalQuestions,
			Rule:    "question_count",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateGroup checks a single question group.
func (v *AssessmentValidator) ValidateGroup(a *models.Assessment, g *models.QuestionGroup) error {
	if errs := v.validateGroup(a, g); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *AssessmentValidator) validateGroup(a *models.Assessment, g *models.QuestionGroup) ValidationErrors {
	var errs ValidationErrors

	if g.EndQuestionNumber < g.StartQuestionNumber {
		errs = append(errs, groupError(g, "end_question_number", "must not be before start_question_number"))
		return errs
	}
	if g.StartQuestionNumber < 1 || g.EndQuestionNumber > a.TotalQuestions {
		errs = append(errs, groupError(g, "end_question_number",
			fmt.Sprintf("range %d-%d is outside 1-%d", g.StartQuestionNumber, g.EndQuestionNumber, a.TotalQuestions)))
	}
	if g.Type == models.GroupMultiChoiceTwo && g.QuestionCount()%2 != 0 {
		errs = append(errs, groupError(g, "end_question_number", "two-answer groups must cover an even number of questions"))
	}
	if len(g.Payload) > 0 && !json.Valid(g.Payload) {
		errs = append(errs, groupError(g, "payload", "must be valid JSON"))
	}
	return errs
}

func groupError(g *models.QuestionGroup, field, message string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("group %d: %s", g.ID, message),
		Value:   g.ID,
		Rule:    "question_group",
	}
}

func partError(p models.Part, field, message string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("part %d: %s", p.ID, message),
		Value:   p.ID,
		Rule:    "part",
	}
}
