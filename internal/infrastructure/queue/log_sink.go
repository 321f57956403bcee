package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// LogSink records audit events as structured log lines. It is used when no
// Redis stream is configured.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "audit").Logger()}
}

func (s *LogSink) Record(_ context.Context, event domain.AuditEvent) error {
	s.log.Info().
		Str("event_id", event.ID).
		Str("action", string(event.Action)).
		Str("actor_id", event.ActorID).
		Str("actor_email", event.ActorEmail).
		Str("actor_role", string(event.ActorRole)).
		Str("target_id", event.TargetID).
		Strs("fields", event.Fields).
		Time("at", event.At).
		Msg("audit")
	return nil
}
