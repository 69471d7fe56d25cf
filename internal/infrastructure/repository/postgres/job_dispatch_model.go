package postgres

import (
	"time"

	"github.com/riskibarqy/cuebook/internal/domain/jobscheduler"
)

type jobDispatchTableModel struct {
	DispatchID  string     `db:"dispatch_id"`
	JobName     string     `db:"job_name"`
	JobPath     string     `db:"job_path"`
	SeasonID    string     `db:"season_id"`
	Payload     string     `db:"payload"`
	Status      string     `db:"status"`
	SentAt      *time.Time `db:"sent_at"`
	CompletedAt *time.Time `db:"completed_at"`
	FailedAt    *time.Time `db:"failed_at"`
	LastError   *string    `db:"last_error"`
	TraceID     *string    `db:"trace_id"`
	SpanID      *string    `db:"span_id"`
}

func (m jobDispatchTableModel) toDomain() jobscheduler.Dispatch {
	d := jobscheduler.Dispatch{
		DispatchID:  m.DispatchID,
		JobName:     m.JobName,
		JobPath:     m.JobPath,
		SeasonID:    m.SeasonID,
		Status:      jobscheduler.DispatchStatus(m.Status),
		Payload:     unmarshalPayload([]byte(m.Payload)),
		SentAt:      m.SentAt,
		CompletedAt: m.CompletedAt,
		FailedAt:    m.FailedAt,
	}
	if m.LastError != nil {
		d.LastError = *m.LastError
	}
	if m.TraceID != nil {
		d.TraceID = *m.TraceID
	}
	return d
}
