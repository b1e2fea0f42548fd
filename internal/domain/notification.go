package domain

import "time"

// Notification channels.
const (
	ChannelInApp = "in_app"
	ChannelSMS   = "sms"
	ChannelEmail = "email"
	ChannelPush  = "push"
)

// Notification is the in-app anchor row (notifications table). One is written
// per notified member before any outbound channel is attempted.
type Notification struct {
	ID        string    `db:"id"`
	MemberID  string    `db:"member_id"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Type      string    `db:"type"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

// SMSQueueEntry is a queued outbound SMS (sms_queue table). NotificationID
// links back to the in-app anchor row the SMS mirrors.
type SMSQueueEntry struct {
	ID             string    `db:"id"`
	NotificationID string    `db:"notification_id"`
	MemberID       string    `db:"member_id"`
	Phone          string    `db:"phone"`
	Message        string    `db:"message"`
	Status         string    `db:"status"` // queued, sent, failed
	CreatedAt      time.Time `db:"created_at"`
}

// EmailQueueEntry is a queued outbound email (email_queue table).
// NotificationID links back to the in-app anchor row.
type EmailQueueEntry struct {
	ID             string    `db:"id"`
	NotificationID string    `db:"notification_id"`
	MemberID       string    `db:"member_id"`
	Email          string    `db:"email"`
	Subject        string    `db:"subject"`
	Body           string    `db:"body"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
}

// ChannelResult reports the per-channel outcome for one member in a bulk
// notification run.
type ChannelResult struct {
	Channel string `json:"channel"`
	Queued  bool   `json:"queued"`
	Error   string `json:"error,omitempty"`
}
