package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/user-admin/internal/core/domain"
)

const (
	defaultAuditStream = "user_audit"
	auditStreamMaxLen  = 100_000
)

// AuditStream appends audit events to a capped Redis stream.
// Entry fields: id, action, actor_id, actor_email, actor_role, target_id, fields, at.
type AuditStream struct {
	client *redis.Client
	stream string
}

// NewAuditStream creates an AuditStream writing to stream. An empty name
// falls back to "user_audit".
func NewAuditStream(client *redis.Client, stream string) *AuditStream {
	if stream == "" {
		stream = defaultAuditStream
	}
	return &AuditStream{client: client, stream: stream}
}

// Record appends event with XADD, trimming the stream approximately to
// auditStreamMaxLen entries.
func (a *AuditStream) Record(ctx context.Context, event domain.AuditEvent) error {
	err := a.client.XAdd(ctx, &redis.XAddArgs{
		Stream: a.stream,
		MaxLen: auditStreamMaxLen,
		Approx: true,
		Values: streamValues(event),
	}).Err()
	if err != nil {
		return fmt.Errorf("audit stream add: %w", err)
	}
	return nil
}

func streamValues(event domain.AuditEvent) map[string]interface{} {
	return map[string]interface{}{
		"id":          event.ID,
		"action":      string(event.Action),
		"actor_id":    event.ActorID,
		"actor_email": event.ActorEmail,
		"actor_role":  string(event.ActorRole),
		"target_id":   event.TargetID,
		"fields":      strings.Join(event.Fields, ","),
		"at":          event.At.UTC().Format(time.RFC3339Nano),
	}
}
