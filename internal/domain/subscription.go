package domain

import (
	"database/sql"
	"time"
)

// Subscription tracks a member's prepaid months (subscriptions table).
type Subscription struct {
	ID              string          `db:"id"`
	MemberID        string          `db:"member_id"`
	MonthsPaidAhead int             `db:"months_paid_ahead"`
	TotalPaid       sql.NullFloat64 `db:"total_paid"`
	LastPaymentDate sql.NullTime    `db:"last_payment_date"`
	UpdatedAt       time.Time       `db:"updated_at"`
}
