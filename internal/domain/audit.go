package domain

import (
	"database/sql"
	"time"
)

// Audit actions written by the mutation workflows.
const (
	AuditActionMemberSuspended  = "MEMBER_SUSPENDED"
	AuditActionNotificationSent = "NOTIFICATION_SENT"
	AuditActionPaymentRecorded  = "PAYMENT_RECORDED"
)

// Audit modules, one per mutation surface.
const (
	AuditModuleMonitoring    = "monitoring"
	AuditModuleNotifications = "notifications"
	AuditModuleSubscriptions = "subscriptions"
)

// AuditLogEntry is one append-only audit row (audit_log table). Entries are
// written only after the state change they describe has been confirmed.
// IP and UserAgent come from the originating HTTP request.
type AuditLogEntry struct {
	ID          string         `db:"id"`
	Action      string         `db:"action"`
	Module      string         `db:"module"`
	ActorID     string         `db:"actor_id"`
	MemberID    sql.NullString `db:"member_id"`
	Description string         `db:"description"`
	Metadata    sql.NullString `db:"metadata"` // JSON blob
	IP          string         `db:"ip_address"`
	UserAgent   string         `db:"user_agent"`
	CreatedAt   time.Time      `db:"created_at"`
}
