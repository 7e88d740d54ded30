package models

import (
	"time"

	"gorm.io/datatypes"
)

type ProctoringEventType string

const (
	EventTabSwitch  ProctoringEventType = "tab_switch"
	EventWindowBlur ProctoringEventType = "window_blur"
)

// ProctoringEvent is an advisory integrity signal reported by the client while
// an attempt is in progress. It carries no enforcement weight server-side; the
// warning budget and forced submission live in the client session loop.
type ProctoringEvent struct {
	ID        uint                `json:"id" gorm:"primaryKey"`
	AttemptID uint                `json:"attempt_id" gorm:"not null;index"`
	Type      ProctoringEventType `json:"type" gorm:"not null;size:30;index"`

	// Free-form client context (user agent, warning count at the time, etc).
	Data datatypes.JSON `json:"data" gorm:"type:jsonb"`

	// Seconds from attempt start.
	TimeOffset int `json:"time_offset"`

	CreatedAt time.Time `json:"created_at"`

	Attempt Attempt `json:"-" gorm:"foreignKey:AttemptID"`
}

func (ProctoringEvent) TableName() string {
	return "proctoring_events"
}
