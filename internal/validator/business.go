package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/exam-delivery-service/internal/delivery"
	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
)

// BusinessValidator checks rules that struct tags cannot express
type BusinessValidator struct{}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

// Validate dispatches on the value type. Types without business rules pass.
func (b *BusinessValidator) Validate(s interface{}) ValidationErrors {
	switch v := s.(type) {
	case *delivery.AnswerInput:
		return b.ValidateAnswer(v)
	case delivery.AnswerInput:
		return b.ValidateAnswer(&v)
	default:
		return nil
	}
}

// ValidateAnswer checks that the fields required by the answer type are set.
func (b *BusinessValidator) ValidateAnswer(in *delivery.AnswerInput) ValidationErrors {
	var errs ValidationErrors

	switch in.Type {
	case delivery.AnswerSingleChoice:
		if in.ChoiceID == 0 {
			errs = append(errs, ValidationError{Field: "choice_id", Message: "is required", Rule: "required"})
		}
	case delivery.AnswerMultiChoice:
		if len(in.ChoiceIDs) > delivery.MaxMultiChoiceSelections {
			errs = append(errs, ValidationError{
				Field:   "choice_ids",
				Message: fmt.Sprintf("must contain at most %d choices", delivery.MaxMultiChoiceSelections),
				Value:   in.ChoiceIDs,
				Rule:    "selection_limit",
			})
		}
		if hasDuplicates(in.ChoiceIDs) {
			errs = append(errs, ValidationError{Field: "choice_ids", Message: "must not repeat a choice", Value: in.ChoiceIDs, Rule: "unique"})
		}
	case delivery.AnswerStatement:
		if strings.TrimSpace(in.Content) == "" {
			errs = append(errs, ValidationError{Field: "content", Message: "is required", Rule: "required"})
		}
		if in.Flavor != "" && in.Flavor != models.FlavorIdentifyingInformation && in.Flavor != models.FlavorTrueFalseNotGiven {
			errs = append(errs, ValidationError{Field: "flavor", Message: "must be IDENTIFYING_INFORMATION or TRUE_FALSE_NOT_GIVEN", Value: in.Flavor, Rule: "statement_flavor"})
		}
	case delivery.AnswerCompletion:
		if in.Kind != "" && in.Kind != models.GroupFillInBlank && in.Kind != models.GroupTableCompletion && in.Kind != models.GroupLetterAnswer {
			errs = append(errs, ValidationError{Field: "kind", Message: "must be a completion question type", Value: in.Kind, Rule: "completion_kind"})
		}
	}

	return errs
}

func hasDuplicates(ids []uint) bool {
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
