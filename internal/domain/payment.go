package domain

import "time"

// Payment methods accepted by the subscription endpoint.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "bank_transfer"
	PaymentMethodOnline   = "online"
)

// Payment is a recorded subscription payment (payments table).
type Payment struct {
	ID            string    `db:"id"`
	MemberID      string    `db:"member_id"`
	Amount        float64   `db:"amount"`
	PaymentMethod string    `db:"payment_method"`
	ReferenceNo   string    `db:"reference_no"`
	PaymentDate   time.Time `db:"payment_date"`
	CreatedAt     time.Time `db:"created_at"`
}

// TransactionRecord is one line in a member statement. Records whose Source is
// "reconstructed" are synthesized from the lifetime balance, not read from the
// payments table.
type TransactionRecord struct {
	Year        int       `json:"year"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Source      string    `json:"source"`
}
