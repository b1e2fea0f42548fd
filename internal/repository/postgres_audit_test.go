package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alshuail-fund/internal/domain"
)

func setupMockAuditDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresAuditRepository) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return db, mock, NewPostgresAuditRepository(db)
}

func TestPostgresAudit_Append(t *testing.T) {
	db, mock, repo := setupMockAuditDB(t)
	defer db.Close()

	at := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	entry := &domain.AuditLogEntry{
		ID:          "a1",
		Action:      domain.AuditActionMemberSuspended,
		Module:      domain.AuditModuleMonitoring,
		ActorID:     "admin-1",
		MemberID:    sql.NullString{String: "m1", Valid: true},
		Description: "إيقاف عضوية",
		IP:          "192.0.2.1",
		UserAgent:   "admin-panel",
		CreatedAt:   at,
	}

	mock.ExpectExec(`INSERT INTO audit_log \(id, action, module, actor_id, member_id, description, metadata, ip_address, user_agent, created_at\)`).
		WithArgs("a1", entry.Action, entry.Module, "admin-1", entry.MemberID,
			entry.Description, entry.Metadata, "192.0.2.1", "admin-panel", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Append(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAudit_ListEntries_ModuleAndDateFilters(t *testing.T) {
	db, mock, repo := setupMockAuditDB(t)
	defer db.Close()

	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	at := from.Add(18 * time.Hour)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_log WHERE 1=1 AND module = \$1 AND created_at >= \$2`).
		WithArgs(domain.AuditModuleSubscriptions, from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT id::text, action, module, actor_id, member_id, description, metadata, ip_address, user_agent, created_at(.|\n)*ORDER BY created_at DESC`).
		WithArgs(domain.AuditModuleSubscriptions, from, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "action", "module", "actor_id", "member_id",
			"description", "metadata", "ip_address", "user_agent", "created_at",
		}).AddRow("a1", domain.AuditActionPaymentRecorded, domain.AuditModuleSubscriptions,
			"admin-1", "m1", "تسجيل دفعة", nil, "192.0.2.1", "admin-panel", at))

	entries, total, err := repo.ListEntries(context.Background(),
		AuditFilter{Module: domain.AuditModuleSubscriptions, From: &from}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditModuleSubscriptions, entries[0].Module)
	assert.Equal(t, "192.0.2.1", entries[0].IP)
}
