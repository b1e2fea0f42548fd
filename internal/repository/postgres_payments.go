package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// PostgresPaymentsRepository records payments against the members,
// payments and subscriptions tables.
type PostgresPaymentsRepository struct {
	db *sql.DB
}

func NewPostgresPaymentsRepository(db *sql.DB) *PostgresPaymentsRepository {
	return &PostgresPaymentsRepository{db: db}
}

var _ PaymentsRepository = (*PostgresPaymentsRepository)(nil)

// monthlyRate converts a balance into months paid ahead.
const monthlyRate = 50

// RecordPayment applies the payment inside one transaction with the member
// row locked. The lock serializes concurrent recordings for the same member:
// each one reads the balance after the previous writer committed, so no
// increment is lost. The resolved new balance is written back to all three
// legacy balance columns to keep them consistent going forward.
func (r *PostgresPaymentsRepository) RecordPayment(ctx context.Context, p RecordPaymentParams) (*PaymentResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentBalance, balance, totalPaid sql.NullFloat64
	err = tx.QueryRowContext(ctx,
		`SELECT current_balance, balance, total_paid
		FROM members
		WHERE id::text = $1
		FOR UPDATE`,
		p.MemberID,
	).Scan(&currentBalance, &balance, &totalPaid)
	if err != nil {
		return nil, err
	}

	// legacy column priority, resolved under the lock
	var resolved float64
	switch {
	case currentBalance.Valid:
		resolved = currentBalance.Float64
	case balance.Valid:
		resolved = balance.Float64
	case totalPaid.Valid:
		resolved = totalPaid.Float64
	}

	newBalance := resolved + p.Amount
	monthsAhead := int(math.Floor(newBalance / monthlyRate))

	_, err = tx.ExecContext(ctx,
		`UPDATE members
		SET current_balance = $2,
			balance = $2,
			total_paid = $2,
			last_payment_date = $3,
			updated_at = $3
		WHERE id::text = $1`,
		p.MemberID, newBalance, p.PaidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update member balance: %w", err)
	}

	paymentID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (id, member_id, amount, payment_method, reference_no, notes, payment_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		paymentID, p.MemberID, p.Amount, p.PaymentMethod, p.ReceiptNumber, p.Notes, p.PaidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO subscriptions (id, member_id, months_paid_ahead, total_paid, last_payment_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (member_id) DO UPDATE
		SET months_paid_ahead = $3,
			total_paid = $4,
			last_payment_date = $5,
			updated_at = $5`,
		uuid.NewString(), p.MemberID, monthsAhead, newBalance, p.PaidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert subscription: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &PaymentResult{
		PaymentID:   paymentID,
		NewBalance:  newBalance,
		MonthsAhead: monthsAhead,
	}, nil
}
