package domain

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ns(s string) sql.NullString  { return sql.NullString{String: s, Valid: true} }
func nf(f float64) sql.NullFloat64 { return sql.NullFloat64{Float64: f, Valid: true} }

func TestResolveBalance_PriorityOrder(t *testing.T) {
	m := &Member{CurrentBalance: nf(1200), Balance: nf(900), TotalPaid: nf(500)}
	assert.Equal(t, 1200.0, m.ResolveBalance())

	m = &Member{Balance: nf(900), TotalPaid: nf(500)}
	assert.Equal(t, 900.0, m.ResolveBalance())

	m = &Member{TotalPaid: nf(500)}
	assert.Equal(t, 500.0, m.ResolveBalance())

	// a valid zero in a higher-priority column still wins
	m = &Member{CurrentBalance: nf(0), TotalPaid: nf(500)}
	assert.Equal(t, 0.0, m.ResolveBalance())

	assert.Equal(t, 0.0, (&Member{}).ResolveBalance())
}

func TestResolveName_FallbackChain(t *testing.T) {
	m := &Member{ID: "m1", FullName: ns("محمد الشبيعان"), Name: ns("other")}
	assert.Equal(t, "محمد الشبيعان", m.ResolveName())

	m = &Member{ID: "m1", Name: ns("محمد")}
	assert.Equal(t, "محمد", m.ResolveName())

	m = &Member{ID: "m1", FirstName: ns("محمد"), LastName: ns("الرشيد")}
	assert.Equal(t, "محمد الرشيد", m.ResolveName())

	m = &Member{ID: "m1", FirstName: ns("محمد")}
	assert.Equal(t, "محمد", m.ResolveName())

	m = &Member{ID: "m1", FullName: ns("   ")}
	assert.Equal(t, "عضو m1", m.ResolveName())
}

func TestResolveMembershipNumber(t *testing.T) {
	m := &Member{ID: "550e8400-e29b", MembershipNumber: ns("SH-2024-001")}
	assert.Equal(t, "SH-2024-001", m.ResolveMembershipNumber())

	m = &Member{ID: "550e8400-e29b"}
	assert.Equal(t, "SH-550E8", m.ResolveMembershipNumber())
	// derived number is stable across calls
	assert.Equal(t, m.ResolveMembershipNumber(), m.ResolveMembershipNumber())

	m = &Member{ID: "ab"}
	assert.Equal(t, "SH-AB", m.ResolveMembershipNumber())
}

func TestResolvePhone(t *testing.T) {
	m := &Member{Phone: ns("0551234567"), Mobile: ns("0509999999")}
	assert.Equal(t, "0551234567", m.ResolvePhone())

	m = &Member{Mobile: ns("0509999999")}
	assert.Equal(t, "0509999999", m.ResolvePhone())

	assert.Equal(t, "", (&Member{}).ResolvePhone())
}
