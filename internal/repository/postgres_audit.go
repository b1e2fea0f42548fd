package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"alshuail-fund/internal/domain"
)

// PostgresAuditRepository is the append-only audit_log store.
type PostgresAuditRepository struct {
	db *sql.DB
}

func NewPostgresAuditRepository(db *sql.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

var _ AuditRepository = (*PostgresAuditRepository)(nil)

func (r *PostgresAuditRepository) Append(ctx context.Context, e *domain.AuditLogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, action, module, actor_id, member_id, description, metadata, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.Action, e.Module, e.ActorID, e.MemberID, e.Description, e.Metadata,
		e.IP, e.UserAgent, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *PostgresAuditRepository) ListEntries(ctx context.Context, f AuditFilter, page, size int) ([]*domain.AuditLogEntry, int, error) {
	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if f.Action != "" {
		where = append(where, fmt.Sprintf("action = $%d", argIdx))
		args = append(args, f.Action)
		argIdx++
	}
	if f.Module != "" {
		where = append(where, fmt.Sprintf("module = $%d", argIdx))
		args = append(args, f.Module)
		argIdx++
	}
	if f.MemberID != "" {
		where = append(where, fmt.Sprintf("member_id = $%d", argIdx))
		args = append(args, f.MemberID)
		argIdx++
	}
	if f.ActorID != "" {
		where = append(where, fmt.Sprintf("actor_id = $%d", argIdx))
		args = append(args, f.ActorID)
		argIdx++
	}
	if f.From != nil {
		where = append(where, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *f.From)
		argIdx++
	}
	if f.To != nil {
		where = append(where, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *f.To)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM audit_log WHERE " + strings.Join(where, " AND ")
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	offset := (page - 1) * size

	query := `SELECT id::text, action, module, actor_id, member_id, description, metadata, ip_address, user_agent, created_at
		FROM audit_log
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC
		LIMIT $` + fmt.Sprintf("%d", argIdx) + ` OFFSET $` + fmt.Sprintf("%d", argIdx+1)
	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []*domain.AuditLogEntry{}
	for rows.Next() {
		var e domain.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Module, &e.ActorID, &e.MemberID,
			&e.Description, &e.Metadata, &e.IP, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}
