package jobscheduler

import (
	"testing"
	"time"
)

func TestDispatchApply(t *testing.T) {
	sentAt := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	d := Dispatch{}.Apply(DispatchEvent{
		DispatchID: " recompute-standings-s1-20260302T190000Z ",
		JobName:    "recompute-standings",
		SeasonID:   "s1",
		Status:     StatusSent,
		OccurredAt: sentAt,
	})
	if d.DispatchID != "recompute-standings-s1-20260302T190000Z" || d.SentAt == nil || !d.SentAt.Equal(sentAt) {
		t.Fatalf("unexpected sent dispatch: %+v", d)
	}

	d = d.Apply(DispatchEvent{DispatchID: d.DispatchID, Status: StatusFailed, ErrorMessage: "timeout", OccurredAt: sentAt.Add(time.Minute)})
	if d.Status != StatusFailed || d.LastError != "timeout" || d.FailedAt == nil {
		t.Fatalf("unexpected failed dispatch: %+v", d)
	}
	if d.SeasonID != "s1" || d.JobName != "recompute-standings" {
		t.Fatalf("empty event fields must not clear known values: %+v", d)
	}

	d = d.Apply(DispatchEvent{DispatchID: d.DispatchID, Status: StatusSent, OccurredAt: sentAt.Add(2 * time.Minute)})
	if !d.SentAt.Equal(sentAt) {
		t.Fatalf("re-send must keep the first publish time, got %s", d.SentAt)
	}

	d = d.Apply(DispatchEvent{DispatchID: d.DispatchID, Status: StatusCompleted, OccurredAt: sentAt.Add(3 * time.Minute)})
	if d.Status != StatusCompleted || d.FailedAt != nil || d.LastError != "" || d.CompletedAt == nil {
		t.Fatalf("completion must clear the failure: %+v", d)
	}
}

func TestDispatchEventValidate(t *testing.T) {
	if err := (DispatchEvent{DispatchID: "d-1", Status: StatusSent}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (DispatchEvent{DispatchID: " ", Status: StatusSent}).Validate(); err == nil {
		t.Fatalf("expected error for blank dispatch id")
	}
	if err := (DispatchEvent{DispatchID: "d-1", Status: "queued"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
