package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"alshuail-fund/internal/domain"
)

// PostgresNotificationsRepository persists in-app notifications and the
// outbound SMS/email queues.
type PostgresNotificationsRepository struct {
	db *sql.DB
}

func NewPostgresNotificationsRepository(db *sql.DB) *PostgresNotificationsRepository {
	return &PostgresNotificationsRepository{db: db}
}

var _ NotificationsRepository = (*PostgresNotificationsRepository)(nil)

func (r *PostgresNotificationsRepository) CreateInApp(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, member_id, title, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
		n.ID, n.MemberID, n.Title, n.Message, n.Type, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationsRepository) QueueSMS(ctx context.Context, e *domain.SMSQueueEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = "queued"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sms_queue (id, notification_id, member_id, phone, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.NotificationID, e.MemberID, e.Phone, e.Message, e.Status, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to queue sms: %w", err)
	}
	return nil
}

func (r *PostgresNotificationsRepository) QueueEmail(ctx context.Context, e *domain.EmailQueueEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = "queued"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_queue (id, notification_id, member_id, email, subject, body, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.NotificationID, e.MemberID, e.Email, e.Subject, e.Body, e.Status, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to queue email: %w", err)
	}
	return nil
}
