package delivery

import "errors"

var (
	ErrNoAssessment         = errors.New("no assessment loaded")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrSessionFinished      = errors.New("exam session has finished")
	ErrSelectionLimit       = errors.New("at most two choices can be selected")
	ErrQuestionOutOfRange   = errors.New("question number out of range")
	ErrUnknownAnswerType    = errors.New("unknown answer type")
	ErrAnswerTypeMismatch   = errors.New("answer type does not match the question")
	ErrMissingAnswer        = errors.New("answer value is required")
	ErrInvalidMode          = errors.New("invalid delivery mode")
	ErrUnknownTab           = errors.New("unknown tab")
	ErrNotWritingSection    = errors.New("essays can only be recorded in a writing section")
	ErrInvalidEssayPart     = errors.New("essay part number out of range")
)
