package jobscheduler

import (
	"errors"
	"strings"
	"time"
)

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

func (s DispatchStatus) Valid() bool {
	switch s {
	case StatusSent, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// DispatchEvent is one transition of a drain job handed to the queue:
// published, then completed or failed when the callback runs.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	SeasonID     string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

func (e DispatchEvent) Validate() error {
	if strings.TrimSpace(e.DispatchID) == "" {
		return errors.New("dispatch id is required")
	}
	if !e.Status.Valid() {
		return errors.New("dispatch status is invalid: " + string(e.Status))
	}
	return nil
}

// Dispatch is the folded state of every event recorded for one dispatch id.
type Dispatch struct {
	DispatchID  string
	JobName     string
	JobPath     string
	SeasonID    string
	Status      DispatchStatus
	Payload     map[string]any
	LastError   string
	SentAt      *time.Time
	CompletedAt *time.Time
	FailedAt    *time.Time
	TraceID     string
}

// Apply folds event into d. The first publish time is kept across
// re-sends, and a completion clears an earlier failure.
func (d Dispatch) Apply(event DispatchEvent) Dispatch {
	at := event.OccurredAt.UTC()
	if at.IsZero() {
		at = time.Now().UTC()
	}

	d.DispatchID = strings.TrimSpace(event.DispatchID)
	if v := strings.TrimSpace(event.JobName); v != "" {
		d.JobName = v
	}
	if v := strings.TrimSpace(event.JobPath); v != "" {
		d.JobPath = v
	}
	if v := strings.TrimSpace(event.SeasonID); v != "" {
		d.SeasonID = v
	}
	if event.Payload != nil {
		d.Payload = event.Payload
	}
	if event.TraceID != "" {
		d.TraceID = event.TraceID
	}
	d.Status = event.Status

	switch event.Status {
	case StatusSent:
		if d.SentAt == nil {
			d.SentAt = &at
		}
		d.LastError = ""
	case StatusCompleted:
		d.CompletedAt = &at
		d.FailedAt = nil
		d.LastError = ""
	case StatusFailed:
		d.FailedAt = &at
		d.LastError = event.ErrorMessage
	}
	return d
}
