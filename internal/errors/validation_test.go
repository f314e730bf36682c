package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupRange struct {
	Start int    `validate:"min=1"`
	End   int    `validate:"gtefield=Start"`
	Kind  string `validate:"question_group_type"`
}

type sessionRequest struct {
	Section string `validate:"section_kind"`
	Mode    string `validate:"delivery_mode"`
	Answer  string `validate:"answer_type"`
	Role    string `validate:"user_role"`
	Code    string `validate:"omitempty,hexadecimal"`
}

func newRejectingValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	reject := func(validator.FieldLevel) bool { return false }
	for _, tag := range []string{"section_kind", "question_group_type", "answer_type", "delivery_mode", "user_role"} {
		require.NoError(t, v.RegisterValidation(tag, reject))
	}
	return v
}

func byField(errs ValidationErrors) map[string]ValidationError {
	out := make(map[string]ValidationError, len(errs))
	for _, e := range errs {
		out[e.Field] = e
	}
	return out
}

func TestToValidationErrors_Messages(t *testing.T) {
	v := newRejectingValidator(t)

	errs := ToValidationErrors(v.Struct(groupRange{Start: 4, End: 3, Kind: "MATCHING"}))
	errs = append(errs, ToValidationErrors(v.Struct(sessionRequest{Code: "zz"}))...)
	got := byField(errs)

	tests := []struct {
		field   string
		rule    string
		message string
	}{
		{"End", "gtefield", "must be greater than or equal to Start"},
		{"Kind", "question_group_type", "must be a valid question group type (SINGLE_CHOICE, MULTI_CHOICE_TWO_ANSWERS, TRUE_FALSE_NOT_GIVEN, FILL_IN_BLANK, TABLE_COMPLETION, LETTER_ANSWER)"},
		{"Section", "section_kind", "must be a valid section (READING, LISTENING, WRITING)"},
		{"Mode", "delivery_mode", "must be a valid delivery mode (test, practice, edit)"},
		{"Answer", "answer_type", "must be a valid answer type (single_choice, multi_choice, statement, completion)"},
		{"Role", "user_role", "must be a valid user role (student, teacher, admin)"},
		{"Code", "hexadecimal", "validation failed for rule 'hexadecimal'"},
	}

	require.Len(t, got, len(tests))
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			e, ok := got[tt.field]
			require.True(t, ok, "no error for %s", tt.field)
			assert.Equal(t, tt.rule, e.Rule)
			assert.Equal(t, tt.message, e.Message)
		})
	}
	assert.Equal(t, 3, got["End"].Value)
}

func TestToValidationErrors_BuiltinRules(t *testing.T) {
	type answer struct {
		Number  int    `validate:"required"`
		Content string `validate:"max=3"`
		Flavor  string `validate:"oneof=TF YN"`
	}

	got := byField(ToValidationErrors(validator.New().Struct(answer{Content: "river", Flavor: "X"})))

	assert.Equal(t, "is required", got["Number"].Message)
	assert.Equal(t, "must be at most 3", got["Content"].Message)
	assert.Equal(t, "must be one of: TF YN", got["Flavor"].Message)
}

func TestToValidationErrors_IgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, ToValidationErrors(nil))
	assert.Empty(t, ToValidationErrors(assert.AnError))
}

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("question_number", "is required", nil))
	assert.Equal(t, "validation failed: question_number is required", errs.Error())

	errs = append(errs, *NewValidationErrorWithRule("choice_ids", "must not repeat a choice", "unique", []uint{4, 4}))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
	assert.Equal(t, "unique", errs[1].Rule)
	assert.Equal(t, "validation error on field 'choice_ids': must not repeat a choice", errs[1].Error())
}
