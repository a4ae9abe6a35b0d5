package repository

import "context"

// AuditEntry records a security-relevant or invariant-relevant event.
type AuditEntry struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
}

// AuditRepository appends to the audit log. Implementations must never fail
// the caller's request path; errors are logged and swallowed upstream.
type AuditRepository interface {
	Insert(ctx context.Context, e AuditEntry) error
}
