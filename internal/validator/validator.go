package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/exam-delivery-service/internal/delivery"
	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator     *validator.Validate
	businessValidator   *BusinessValidator
	assessmentValidator *AssessmentValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:     structValidator,
		businessValidator:   NewBusinessValidator(),
		assessmentValidator: NewAssessmentValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateBusiness validates business rules only
func (v *Validator) ValidateBusiness(s interface{}) ValidationErrors {
	return v.businessValidator.Validate(s)
}

// Validate performs complete validation (struct + business rules). Tag
// failures are returned as ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}

	if errors := v.ValidateBusiness(s); len(errors) > 0 {
		return errors
	}

	return nil
}

// Assessment returns the hydrated assessment validator
func (v *Validator) Assessment() *AssessmentValidator {
	return v.assessmentValidator
}

// Business returns the business validator
func (v *Validator) Business() *BusinessValidator {
	return v.businessValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("section_kind", validateSectionKind)
	validate.RegisterValidation("question_group_type", validateQuestionGroupType)
	validate.RegisterValidation("answer_type", validateAnswerType)
	validate.RegisterValidation("delivery_mode", validateDeliveryMode)
	validate.RegisterValidation("user_role", validateUserRole)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func oneOf[T ~string](value string, valid ...T) bool {
	for _, v := range valid {
		if string(v) == value {
			return true
		}
	}
	return false
}

// Custom validation functions
func validateSectionKind(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(),
		models.SectionReading,
		models.SectionListening,
		models.SectionWriting,
	)
}

func validateQuestionGroupType(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(),
		models.GroupSingleChoice,
		models.GroupMultiChoiceTwo,
		models.GroupTrueFalseNotGiven,
		models.GroupFillInBlank,
		models.GroupTableCompletion,
		models.GroupLetterAnswer,
	)
}

func validateAnswerType(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(),
		delivery.AnswerSingleChoice,
		delivery.AnswerMultiChoice,
		delivery.AnswerStatement,
		delivery.AnswerCompletion,
	)
}

func validateDeliveryMode(fl validator.FieldLevel) bool {
	return delivery.Mode(fl.Field().String()).IsValid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(),
		models.RoleStudent,
		models.RoleTeacher,
		models.RoleAdmin,
	)
}
