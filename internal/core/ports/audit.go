package ports

import (
	"context"

	"github.com/reviewhub/review-api/internal/core/domain"
)

// AuditRecorder accepts audit events for asynchronous persistence. Record
// never blocks the caller beyond the queue buffer and never returns an error;
// a lost audit event must not fail the originating request.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditRepository is the durable sink for audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}
