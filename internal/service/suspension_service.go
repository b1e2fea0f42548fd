package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"alshuail-fund/internal/domain"
	"alshuail-fund/internal/repository"
)

// SuspendRequest is the suspension input. Reason is mandatory.
type SuspendRequest struct {
	MemberID string `json:"memberId"`
	Reason   string `json:"reason"`
	AdminID  string `json:"adminId"`

	// set by the HTTP layer, not the request body
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// SuspendResult carries the suspension metadata back to the caller.
type SuspendResult struct {
	MemberID    string    `json:"memberId"`
	FullName    string    `json:"fullName"`
	Reason      string    `json:"reason"`
	SuspendedAt time.Time `json:"suspendedAt"`
	SuspendedBy string    `json:"suspendedBy"`
}

// SuspensionService applies the one-way active to suspended transition and
// records it in the audit log.
type SuspensionService struct {
	members repository.MembersRepository
	audit   repository.AuditRepository
	logger  *zap.Logger
	now     func() time.Time
}

func NewSuspensionService(members repository.MembersRepository, audit repository.AuditRepository, logger *zap.Logger) *SuspensionService {
	return &SuspensionService{members: members, audit: audit, logger: logger, now: time.Now}
}

// Suspend validates, flips the member, then appends the audit entry. The
// audit write happens only after the state change is confirmed, so a failed
// suspension never leaves a trail.
func (s *SuspensionService) Suspend(ctx context.Context, req SuspendRequest) (*SuspendResult, error) {
	if req.MemberID == "" {
		return nil, NewValidationError("memberId", "معرف العضو مطلوب")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, NewValidationError("reason", "سبب الإيقاف مطلوب")
	}

	m, err := s.members.Get(ctx, req.MemberID)
	if err != nil {
		return nil, classifyStoreErr(err, "member", req.MemberID)
	}

	at := s.now()
	if err := s.members.Suspend(ctx, req.MemberID, req.Reason, req.AdminID, at); err != nil {
		return nil, classifyStoreErr(err, "member", req.MemberID)
	}

	meta, _ := json.Marshal(map[string]string{
		"memberName": m.ResolveName(),
		"reason":     req.Reason,
	})
	entry := &domain.AuditLogEntry{
		Action:      domain.AuditActionMemberSuspended,
		Module:      domain.AuditModuleMonitoring,
		ActorID:     req.AdminID,
		MemberID:    nullString(req.MemberID),
		Description: "إيقاف عضوية " + m.ResolveName(),
		Metadata:    nullString(string(meta)),
		IP:          req.IP,
		UserAgent:   req.UserAgent,
		CreatedAt:   at,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		// the suspension itself committed; surface the audit failure
		s.logger.Error("audit append failed after suspension",
			zap.String("member_id", req.MemberID), zap.Error(err))
		return nil, classifyStoreErr(err, "audit for member", req.MemberID)
	}

	s.logger.Info("member suspended",
		zap.String("member_id", req.MemberID),
		zap.String("admin_id", req.AdminID))

	return &SuspendResult{
		MemberID:    req.MemberID,
		FullName:    m.ResolveName(),
		Reason:      req.Reason,
		SuspendedAt: at,
		SuspendedBy: req.AdminID,
	}, nil
}
