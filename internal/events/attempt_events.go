package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents the kind of lifecycle event being published
type EventType string

const (
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptSubmitted EventType = "attempt.submitted"
	EventTestPublished    EventType = "test.published"
)

// Event is the envelope shared by all published events
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

const eventSource = "exam-portal-service"

// Event payloads

type AttemptStartedEvent struct {
	AttemptID       uint      `json:"attempt_id"`
	TestID          uint      `json:"test_id"`
	TestTitle       string    `json:"test_title"`
	StudentID       string    `json:"student_id"`
	StartedAt       time.Time `json:"started_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

type AttemptSubmittedEvent struct {
	AttemptID     uint      `json:"attempt_id"`
	TestID        uint      `json:"test_id"`
	StudentID     string    `json:"student_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Score         int       `json:"score"`
	TotalMarks    int       `json:"total_marks"`
	AutoSubmitted bool      `json:"auto_submitted"`
}

type TestPublishedEvent struct {
	TestID      uint      `json:"test_id"`
	TestTitle   string    `json:"test_title"`
	CreatorID   string    `json:"creator_id"`
	PublishedAt time.Time `json:"published_at"`
}

// Event factory functions

func NewAttemptStartedEvent(attemptID, testID uint, title, studentID string, startedAt time.Time, durationMinutes int) *Event {
	return newEvent(EventAttemptStarted, AttemptStartedEvent{
		AttemptID:       attemptID,
		TestID:          testID,
		TestTitle:       title,
		StudentID:       studentID,
		StartedAt:       startedAt,
		DurationMinutes: durationMinutes,
	})
}

func NewAttemptSubmittedEvent(attemptID, testID uint, studentID string, submittedAt time.Time, score, totalMarks int, autoSubmitted bool) *Event {
	return newEvent(EventAttemptSubmitted, AttemptSubmittedEvent{
		AttemptID:     attemptID,
		TestID:        testID,
		StudentID:     studentID,
		SubmittedAt:   submittedAt,
		Score:         score,
		TotalMarks:    totalMarks,
		AutoSubmitted: autoSubmitted,
	})
}

func NewTestPublishedEvent(testID uint, title, creatorID string, publishedAt time.Time) *Event {
	return newEvent(EventTestPublished, TestPublishedEvent{
		TestID:      testID,
		TestTitle:   title,
		CreatorID:   creatorID,
		PublishedAt: publishedAt,
	})
}

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   "1.0",
		Data:      data,
	}
}
