package domain

import "time"

// AuditKind labels the event classes recorded in the audit trail.
type AuditKind string

const (
	AuditSignup           AuditKind = "signup"
	AuditCodeRotated      AuditKind = "code_rotated"
	AuditTokenIssued      AuditKind = "token_issued"
	AuditTokenRejected    AuditKind = "token_rejected"
	AuditPermissionDenied AuditKind = "permission_denied"
)

// AuditEvent is an append-only record of an identity or authorization event.
// Recording is asynchronous and never fails the originating request.
type AuditEvent struct {
	ID        string    `json:"id"`
	Kind      AuditKind `json:"kind"`
	Username  string    `json:"username"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
