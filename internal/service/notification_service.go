package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"alshuail-fund/internal/domain"
	"alshuail-fund/internal/repository"
)

// Notification channel selectors.
const (
	NotifyChannelInApp = "in_app"
	NotifyChannelSMS   = "sms"
	NotifyChannelEmail = "email"
	NotifyChannelAll   = "all"
)

// previewRunes bounds the message preview stored in the audit entry.
const previewRunes = 100

// SMSSender delivers one SMS. Implemented by the gateway client; nil
// disables direct sending (messages still queue).
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// PushPublisher publishes a member-targeted payload. Implemented by the MQTT
// client wrapper; nil disables push.
type PushPublisher interface {
	PublishMemberEvent(memberID string, payload []byte) error
}

// NotifyRequest targets an explicit member list or, when AllEligible is set,
// every active non-suspended member.
type NotifyRequest struct {
	MemberIDs   []string `json:"memberIds"`
	AllEligible bool     `json:"allEligible"`
	Channel     string   `json:"channel"`
	Message     string   `json:"message"`
	Subject     string   `json:"subject"`
	Verbose     bool     `json:"verbose"`
	AdminID     string   `json:"adminId"`

	// set by the HTTP layer, not the request body
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// MemberNotifyOutcome is the per-member detail in a verbose manifest. Error
// is set when the member could not be resolved at all.
type MemberNotifyOutcome struct {
	MemberID string                 `json:"memberId"`
	Channels []domain.ChannelResult `json:"channels,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// NotifyManifest summarizes a dispatch run. A member counts as sent when the
// anchor was written and every requested channel queued; anything less
// counts as failed.
type NotifyManifest struct {
	Sent    int                   `json:"sent"`
	Failed  int                   `json:"failed"`
	Details []MemberNotifyOutcome `json:"details,omitempty"`
}

// NotificationService fans a message out across in-app, SMS, email and push.
type NotificationService struct {
	members       repository.MembersRepository
	notifications repository.NotificationsRepository
	audit         repository.AuditRepository
	sms           SMSSender
	push          PushPublisher
	logger        *zap.Logger
	now           func() time.Time
}

func NewNotificationService(
	members repository.MembersRepository,
	notifications repository.NotificationsRepository,
	audit repository.AuditRepository,
	sms SMSSender,
	push PushPublisher,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		members:       members,
		notifications: notifications,
		audit:         audit,
		sms:           sms,
		push:          push,
		logger:        logger,
		now:           time.Now,
	}
}

// Notify dispatches the message to every target. One failing member never
// stops the run; the audit entry is appended once at the end, after the
// writes it summarizes.
func (s *NotificationService) Notify(ctx context.Context, req NotifyRequest) (*NotifyManifest, error) {
	if req.Message == "" {
		return nil, NewValidationError("message", "نص الرسالة مطلوب")
	}
	switch req.Channel {
	case NotifyChannelInApp, NotifyChannelSMS, NotifyChannelEmail, NotifyChannelAll:
	default:
		return nil, NewValidationError("channel", "must be one of in_app, sms, email, all")
	}
	if !req.AllEligible && len(req.MemberIDs) == 0 {
		return nil, NewValidationError("memberIds", "قائمة الأعضاء مطلوبة")
	}

	targets, missing, err := s.resolveTargets(ctx, req)
	if err != nil {
		return nil, err
	}

	manifest := &NotifyManifest{}
	for _, outcome := range missing {
		manifest.Failed++
		if req.Verbose {
			manifest.Details = append(manifest.Details, outcome)
		}
	}
	for _, m := range targets {
		outcome := s.notifyOne(ctx, m, req)
		failed := false
		for _, c := range outcome.Channels {
			if !c.Queued {
				failed = true
			}
		}
		if failed {
			manifest.Failed++
		} else {
			manifest.Sent++
		}
		if req.Verbose {
			manifest.Details = append(manifest.Details, outcome)
		}
	}

	s.appendAudit(ctx, req, manifest)
	return manifest, nil
}

// resolveTargets loads the explicit targets. An unknown id is reported as a
// failed outcome rather than aborting the run; only a store failure aborts.
func (s *NotificationService) resolveTargets(ctx context.Context, req NotifyRequest) ([]*domain.Member, []MemberNotifyOutcome, error) {
	if req.AllEligible {
		members, err := s.members.List(ctx, repository.StoreFilter{Status: "active"})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return members, nil, nil
	}

	targets := make([]*domain.Member, 0, len(req.MemberIDs))
	var missing []MemberNotifyOutcome
	for _, id := range req.MemberIDs {
		m, err := s.members.Get(ctx, id)
		if err != nil {
			if isNoRows(err) {
				missing = append(missing, MemberNotifyOutcome{
					MemberID: id, Error: "member not found",
				})
				continue
			}
			return nil, nil, fmt.Errorf("member %s: %w: %v", id, ErrStoreUnavailable, err)
		}
		targets = append(targets, m)
	}
	return targets, missing, nil
}

// notifyOne writes the in-app anchor, then each requested outbound channel.
// Channel order is fixed: anchor first, then sms, email, push.
func (s *NotificationService) notifyOne(ctx context.Context, m *domain.Member, req NotifyRequest) MemberNotifyOutcome {
	outcome := MemberNotifyOutcome{MemberID: m.ID}
	at := s.now()

	anchor := &domain.Notification{
		MemberID:  m.ID,
		Title:     req.Subject,
		Message:   req.Message,
		Type:      "admin_broadcast",
		CreatedAt: at,
	}
	if err := s.notifications.CreateInApp(ctx, anchor); err != nil {
		s.logger.Error("in-app notification failed",
			zap.String("member_id", m.ID), zap.Error(err))
		outcome.Channels = append(outcome.Channels, domain.ChannelResult{
			Channel: domain.ChannelInApp, Queued: false, Error: err.Error(),
		})
		// without the anchor no outbound channel is attempted
		return outcome
	}
	outcome.Channels = append(outcome.Channels, domain.ChannelResult{
		Channel: domain.ChannelInApp, Queued: true,
	})

	wantSMS := req.Channel == NotifyChannelSMS || req.Channel == NotifyChannelAll
	wantEmail := req.Channel == NotifyChannelEmail || req.Channel == NotifyChannelAll

	if wantSMS {
		outcome.Channels = append(outcome.Channels, s.sendSMS(ctx, m, anchor.ID, req.Message, at))
	}
	if wantEmail {
		outcome.Channels = append(outcome.Channels, s.queueEmail(ctx, m, anchor.ID, req, at))
	}
	if s.push != nil {
		payload, _ := json.Marshal(map[string]string{
			"notificationId": anchor.ID,
			"title":          req.Subject,
			"message":        req.Message,
		})
		if err := s.push.PublishMemberEvent(m.ID, payload); err != nil {
			s.logger.Warn("push publish failed",
				zap.String("member_id", m.ID), zap.Error(err))
		}
	}
	return outcome
}

func (s *NotificationService) sendSMS(ctx context.Context, m *domain.Member, anchorID, message string, at time.Time) domain.ChannelResult {
	phone := m.ResolvePhone()
	if phone == "" {
		return domain.ChannelResult{
			Channel: domain.ChannelSMS, Queued: false, Error: "member has no phone",
		}
	}
	entry := &domain.SMSQueueEntry{
		NotificationID: anchorID,
		MemberID:       m.ID,
		Phone:          phone,
		Message:        message,
		Status:         "queued",
		CreatedAt:      at,
	}
	if s.sms != nil {
		if err := s.sms.Send(ctx, phone, message); err != nil {
			s.logger.Warn("sms gateway send failed, queued for retry",
				zap.String("member_id", m.ID), zap.Error(err))
		} else {
			entry.Status = "sent"
		}
	}
	if err := s.notifications.QueueSMS(ctx, entry); err != nil {
		return domain.ChannelResult{
			Channel: domain.ChannelSMS, Queued: false, Error: err.Error(),
		}
	}
	return domain.ChannelResult{Channel: domain.ChannelSMS, Queued: true}
}

func (s *NotificationService) queueEmail(ctx context.Context, m *domain.Member, anchorID string, req NotifyRequest, at time.Time) domain.ChannelResult {
	if !m.Email.Valid || m.Email.String == "" {
		return domain.ChannelResult{
			Channel: domain.ChannelEmail, Queued: false, Error: "member has no email",
		}
	}
	entry := &domain.EmailQueueEntry{
		NotificationID: anchorID,
		MemberID:       m.ID,
		Email:          m.Email.String,
		Subject:        req.Subject,
		Body:           req.Message,
		CreatedAt:      at,
	}
	if err := s.notifications.QueueEmail(ctx, entry); err != nil {
		return domain.ChannelResult{
			Channel: domain.ChannelEmail, Queued: false, Error: err.Error(),
		}
	}
	return domain.ChannelResult{Channel: domain.ChannelEmail, Queued: true}
}

func (s *NotificationService) appendAudit(ctx context.Context, req NotifyRequest, manifest *NotifyManifest) {
	preview := []rune(req.Message)
	if len(preview) > previewRunes {
		preview = preview[:previewRunes]
	}
	meta, _ := json.Marshal(map[string]any{
		"channel": req.Channel,
		"sent":    manifest.Sent,
		"failed":  manifest.Failed,
		"preview": string(preview),
	})
	entry := &domain.AuditLogEntry{
		Action:      domain.AuditActionNotificationSent,
		Module:      domain.AuditModuleNotifications,
		ActorID:     req.AdminID,
		Description: fmt.Sprintf("إرسال إشعار إلى %d عضو", manifest.Sent),
		Metadata:    nullString(string(meta)),
		IP:          req.IP,
		UserAgent:   req.UserAgent,
		CreatedAt:   s.now(),
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("audit append failed after notification run", zap.Error(err))
	}
}
