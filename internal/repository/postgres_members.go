package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"alshuail-fund/internal/domain"
)

// PostgresMembersRepository implements MembersRepository over the members
// table, including the legacy duplicate columns.
type PostgresMembersRepository struct {
	db *sql.DB
}

func NewPostgresMembersRepository(db *sql.DB) *PostgresMembersRepository {
	return &PostgresMembersRepository{db: db}
}

var _ MembersRepository = (*PostgresMembersRepository)(nil)

const memberColumns = `
	id::text,
	membership_number,
	full_name,
	name,
	first_name,
	last_name,
	phone,
	mobile,
	email,
	current_balance,
	balance,
	total_paid,
	tribal_section,
	is_suspended,
	suspension_reason,
	suspended_at,
	suspended_by,
	membership_status,
	joined_date,
	last_payment_date,
	created_at,
	updated_at`

// List fetches all members matching the store-level filters, ordered by
// created_at then id so the pipeline's tie-break is reproducible.
func (r *PostgresMembersRepository) List(ctx context.Context, f StoreFilter) ([]*domain.Member, error) {
	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	switch f.Status {
	case "active":
		where = append(where, "is_suspended = FALSE")
	case "suspended":
		where = append(where, "is_suspended = TRUE")
	}
	if f.MemberID != "" {
		where = append(where, fmt.Sprintf("(id::text ILIKE $%d OR COALESCE(membership_number,'') ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+f.MemberID+"%")
		argIdx++
	}
	if f.Name != "" {
		where = append(where, fmt.Sprintf(
			"(COALESCE(full_name,'') ILIKE $%d OR COALESCE(name,'') ILIKE $%d OR COALESCE(first_name,'') ILIKE $%d OR COALESCE(last_name,'') ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+f.Name+"%")
		argIdx++
	}
	if f.PhoneDigits != "" {
		// compare against digits-only normalization of both phone columns
		where = append(where, fmt.Sprintf(
			"(regexp_replace(COALESCE(phone,''), '[^0-9]', '', 'g') LIKE $%d OR regexp_replace(COALESCE(mobile,''), '[^0-9]', '', 'g') LIKE $%d)",
			argIdx, argIdx))
		args = append(args, "%"+f.PhoneDigits+"%")
		argIdx++
	}
	if f.TribalSection != "" {
		where = append(where, fmt.Sprintf("tribal_section = $%d", argIdx))
		args = append(args, f.TribalSection)
		argIdx++
	}

	query := `SELECT ` + memberColumns + `
		FROM members
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*domain.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PostgresMembersRepository) Get(ctx context.Context, id string) (*domain.Member, error) {
	if id == "" {
		return nil, sql.ErrNoRows
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id::text = $1`, id)
	return scanMember(row)
}

func (r *PostgresMembersRepository) FindByPhoneDigits(ctx context.Context, digits string) (*domain.Member, error) {
	if digits == "" {
		return nil, sql.ErrNoRows
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+`
		FROM members
		WHERE regexp_replace(COALESCE(phone,''), '[^0-9]', '', 'g') LIKE $1
		   OR regexp_replace(COALESCE(mobile,''), '[^0-9]', '', 'g') LIKE $1
		ORDER BY created_at ASC
		LIMIT 1`, "%"+digits+"%")
	return scanMember(row)
}

func (r *PostgresMembersRepository) FindByName(ctx context.Context, term string, limit int) ([]*domain.Member, error) {
	if term == "" {
		return []*domain.Member{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+memberColumns+`
		FROM members
		WHERE COALESCE(full_name,'') ILIKE $1
		   OR COALESCE(name,'') ILIKE $1
		   OR COALESCE(first_name,'') ILIKE $1
		   OR COALESCE(last_name,'') ILIKE $1
		ORDER BY created_at ASC
		LIMIT $2`, "%"+term+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*domain.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PostgresMembersRepository) FindByMembershipNumber(ctx context.Context, number string) (*domain.Member, error) {
	if number == "" {
		return nil, sql.ErrNoRows
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE membership_number = $1`, number)
	return scanMember(row)
}

func (r *PostgresMembersRepository) SearchIdentifiers(ctx context.Context, term string, limit int) ([]*domain.Member, error) {
	if term == "" {
		return []*domain.Member{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+memberColumns+`
		FROM members
		WHERE id::text ILIKE $1
		   OR COALESCE(membership_number,'') ILIKE $1
		   OR COALESCE(full_name,'') ILIKE $1
		   OR COALESCE(name,'') ILIKE $1
		ORDER BY created_at ASC
		LIMIT $2`, "%"+term+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*domain.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Suspend flips the member to suspended with the given reason and actor.
func (r *PostgresMembersRepository) Suspend(ctx context.Context, id, reason, adminID string, at time.Time) error {
	if id == "" {
		return sql.ErrNoRows
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE members
		SET is_suspended = TRUE,
			suspension_reason = $2,
			suspended_at = $3,
			suspended_by = $4,
			membership_status = 'suspended',
			updated_at = $3
		WHERE id::text = $1`,
		id, reason, at, adminID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// scanTarget abstracts *sql.Row and *sql.Rows for scanMember.
type scanTarget interface {
	Scan(dest ...any) error
}

func scanMember(row scanTarget) (*domain.Member, error) {
	var m domain.Member
	err := row.Scan(
		&m.ID,
		&m.MembershipNumber,
		&m.FullName,
		&m.Name,
		&m.FirstName,
		&m.LastName,
		&m.Phone,
		&m.Mobile,
		&m.Email,
		&m.CurrentBalance,
		&m.Balance,
		&m.TotalPaid,
		&m.TribalSection,
		&m.IsSuspended,
		&m.SuspensionReason,
		&m.SuspendedAt,
		&m.SuspendedBy,
		&m.MembershipStatus,
		&m.JoinedDate,
		&m.LastPaymentDate,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
