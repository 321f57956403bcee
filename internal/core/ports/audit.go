package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// AuditPublisher hands audit events off without blocking the caller.
type AuditPublisher interface {
	Publish(event domain.AuditEvent)
}

// AuditSink durably records audit events.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}
