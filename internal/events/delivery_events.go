package events

import (
	"time"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents the kinds of delivery events
type EventType string

const (
	EventSessionStarted  EventType = "delivery.session_started"
	EventResultSubmitted EventType = "delivery.result_submitted"
	EventEssaySubmitted  EventType = "delivery.essay_submitted"
	EventAutoSubmitted   EventType = "delivery.auto_submitted"
	EventSubmitFailed    EventType = "delivery.submit_failed"
)

const (
	eventSource  = "exam-delivery-service"
	eventVersion = "1.0"
)

// Event is the envelope for every delivery event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type SessionStartedEvent struct {
	SessionID    string             `json:"session_id"`
	UserID       string             `json:"user_id"`
	AssessmentID uint               `json:"assessment_id"`
	Section      models.SectionKind `json:"section"`
	Mode         string             `json:"mode"`
	Duration     int                `json:"duration"` // seconds
	StartedAt    time.Time          `json:"started_at"`
}

type ResultSubmittedEvent struct {
	SessionID    string             `json:"session_id"`
	UserID       string             `json:"user_id"`
	AssessmentID uint               `json:"assessment_id"`
	Section      models.SectionKind `json:"section"`
	Score        float64            `json:"score"`
	TotalCorrect int                `json:"total_correct"`
	TimeSpent    int                `json:"time_spent"`
	Reason       string             `json:"reason"` // manual or timeout
	SubmittedAt  time.Time          `json:"submitted_at"`
}

type EssaySubmittedEvent struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	AssessmentID uint      `json:"assessment_id"`
	Part1Words   int       `json:"part1_words"`
	Part2Words   int       `json:"part2_words"`
	Reason       string    `json:"reason"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type SubmitFailedEvent struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	AssessmentID uint      `json:"assessment_id"`
	Reason       string    `json:"reason"`
	Error        string    `json:"error"`
	FailedAt     time.Time `json:"failed_at"`
}

// Event factory functions

func newEvent(t EventType, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      t,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewSessionStartedEvent(payload SessionStartedEvent) *Event {
	return newEvent(EventSessionStarted, payload)
}

// NewResultSubmittedEvent returns an auto_submitted event when the timer
// triggered the submission.
func NewResultSubmittedEvent(payload ResultSubmittedEvent) *Event {
	if payload.Reason == ReasonTimeout {
		return newEvent(EventAutoSubmitted, payload)
	}
	return newEvent(EventResultSubmitted, payload)
}

func NewEssaySubmittedEvent(payload EssaySubmittedEvent) *Event {
	if payload.Reason == ReasonTimeout {
		return newEvent(EventAutoSubmitted, payload)
	}
	return newEvent(EventEssaySubmitted, payload)
}

func NewSubmitFailedEvent(payload SubmitFailedEvent) *Event {
	return newEvent(EventSubmitFailed, payload)
}

// Submission reasons
const (
	ReasonManual  = "manual"
	ReasonTimeout = "timeout"
)

func GenerateEventID() string {
	return uuid.NewString()
}
