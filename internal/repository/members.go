package repository

import (
	"context"
	"time"

	"alshuail-fund/internal/domain"
)

// StoreFilter is the set of filters the store can apply server-side. Derived
// filters (category, balance comparisons) are applied by the service after
// enrichment and never appear here.
type StoreFilter struct {
	Status        string // "active" or "suspended", empty for all
	MemberID      string // substring over id and membership_number
	Name          string // substring with OR semantics over the legacy name columns
	PhoneDigits   string // digits-only substring over phone and mobile
	TribalSection string // exact match
}

// MembersRepository is the member read/write surface used by the services.
type MembersRepository interface {
	// List returns every member matching the store-level filters, in a
	// stable order. Paging happens in the query pipeline, not here.
	List(ctx context.Context, f StoreFilter) ([]*domain.Member, error)
	Get(ctx context.Context, id string) (*domain.Member, error)
	FindByPhoneDigits(ctx context.Context, digits string) (*domain.Member, error)
	FindByName(ctx context.Context, term string, limit int) ([]*domain.Member, error)
	FindByMembershipNumber(ctx context.Context, number string) (*domain.Member, error)
	// SearchIdentifiers backs the autocomplete endpoint.
	SearchIdentifiers(ctx context.Context, term string, limit int) ([]*domain.Member, error)
	Suspend(ctx context.Context, id, reason, adminID string, at time.Time) error
}

// RecordPaymentParams carries a validated payment into the store.
type RecordPaymentParams struct {
	MemberID      string
	Amount        float64
	Months        int
	PaymentMethod string
	ReceiptNumber string
	Notes         string
	PaidAt        time.Time
}

// PaymentResult reports the post-payment state of the member.
type PaymentResult struct {
	PaymentID   string
	NewBalance  float64
	MonthsAhead int
}

// PaymentsRepository applies balance mutations. RecordPayment must be atomic
// with respect to concurrent recordings for the same member.
type PaymentsRepository interface {
	RecordPayment(ctx context.Context, p RecordPaymentParams) (*PaymentResult, error)
}

// AuditFilter narrows audit-log listings.
type AuditFilter struct {
	Action   string
	Module   string
	MemberID string
	ActorID  string
	From     *time.Time
	To       *time.Time
}

// AuditRepository is the append-only audit trail.
type AuditRepository interface {
	Append(ctx context.Context, e *domain.AuditLogEntry) error
	ListEntries(ctx context.Context, f AuditFilter, page, size int) ([]*domain.AuditLogEntry, int, error)
}

// NotificationsRepository persists the in-app anchor and the per-channel
// queue rows that reference it.
type NotificationsRepository interface {
	CreateInApp(ctx context.Context, n *domain.Notification) error
	QueueSMS(ctx context.Context, e *domain.SMSQueueEntry) error
	QueueEmail(ctx context.Context, e *domain.EmailQueueEntry) error
}
