package domain

import (
	"database/sql"
	"fmt"
	"strings"
)

// Member is the stored member row (members table). Legacy imports left the
// table with several columns for the same concept; the Resolve* helpers below
// are the single place where those fallback chains live.
type Member struct {
	// 主键
	ID string `db:"id"` // UUID, PRIMARY KEY

	MembershipNumber sql.NullString `db:"membership_number"` // VARCHAR, UNIQUE, nullable in legacy rows

	// Legacy name columns, first non-empty wins (see ResolveName)
	FullName  sql.NullString `db:"full_name"`
	Name      sql.NullString `db:"name"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`

	Phone  sql.NullString `db:"phone"`
	Mobile sql.NullString `db:"mobile"`
	Email  sql.NullString `db:"email"`

	// Legacy balance columns, priority order in ResolveBalance
	CurrentBalance sql.NullFloat64 `db:"current_balance"`
	Balance        sql.NullFloat64 `db:"balance"`
	TotalPaid      sql.NullFloat64 `db:"total_paid"`

	TribalSection sql.NullString `db:"tribal_section"` // one of the 8 fixed sections, nullable

	IsSuspended      bool           `db:"is_suspended"`
	SuspensionReason sql.NullString `db:"suspension_reason"`
	SuspendedAt      sql.NullTime   `db:"suspended_at"`
	SuspendedBy      sql.NullString `db:"suspended_by"`

	MembershipStatus sql.NullString `db:"membership_status"`
	JoinedDate       sql.NullTime   `db:"joined_date"`
	LastPaymentDate  sql.NullTime   `db:"last_payment_date"`
	CreatedAt        sql.NullTime   `db:"created_at"`
	UpdatedAt        sql.NullTime   `db:"updated_at"`
}

// ResolveBalance returns the canonical lifetime balance for a member.
// Priority: current_balance, balance, total_paid. A present-but-zero value in
// a higher-priority column still wins over a lower-priority column, matching
// how payment recording writes all three.
func (m *Member) ResolveBalance() float64 {
	if m.CurrentBalance.Valid {
		return m.CurrentBalance.Float64
	}
	if m.Balance.Valid {
		return m.Balance.Float64
	}
	if m.TotalPaid.Valid {
		return m.TotalPaid.Float64
	}
	return 0
}

// ResolveName returns the display name: full_name, name, then
// first_name+last_name, then the Arabic placeholder "عضو <id>".
func (m *Member) ResolveName() string {
	if v := strings.TrimSpace(m.FullName.String); m.FullName.Valid && v != "" {
		return v
	}
	if v := strings.TrimSpace(m.Name.String); m.Name.Valid && v != "" {
		return v
	}
	if v := strings.TrimSpace(m.FirstName.String); m.FirstName.Valid && v != "" {
		if last := strings.TrimSpace(m.LastName.String); m.LastName.Valid && last != "" {
			return v + " " + last
		}
		return v
	}
	return fmt.Sprintf("عضو %s", m.ID)
}

// ResolvePhone prefers phone over mobile.
func (m *Member) ResolvePhone() string {
	if m.Phone.Valid && m.Phone.String != "" {
		return m.Phone.String
	}
	if m.Mobile.Valid {
		return m.Mobile.String
	}
	return ""
}

// ResolveMembershipNumber returns the stored membership number or synthesizes
// a display one from the id. The synthesized number is derived, never
// persisted, and is stable for a given id.
func (m *Member) ResolveMembershipNumber() string {
	if m.MembershipNumber.Valid && m.MembershipNumber.String != "" {
		return m.MembershipNumber.String
	}
	id := m.ID
	if len(id) > 5 {
		id = id[:5]
	}
	return "SH-" + strings.ToUpper(id)
}
