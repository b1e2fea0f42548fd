package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alshuail-fund/internal/domain"
	"alshuail-fund/internal/repository"
)

// paymentUnit is the minimum payment amount; amounts must be positive
// multiples of it.
const paymentUnit = 50

// PaymentRequest records one subscription payment.
type PaymentRequest struct {
	MemberID      string  `json:"memberId"`
	Amount        float64 `json:"amount"`
	Months        int     `json:"months"`
	PaymentMethod string  `json:"paymentMethod"`
	ReceiptNumber string  `json:"receiptNumber"`
	Notes         string  `json:"notes"`
	AdminID       string  `json:"adminId"`

	// set by the HTTP layer, not the request body
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// PaymentResponse reports the post-payment balance state.
type PaymentResponse struct {
	PaymentID   string  `json:"paymentId"`
	NewBalance  float64 `json:"newBalance"`
	MonthsAhead int     `json:"monthsAhead"`
}

// PaymentService validates and records payments. The lost-update guarantee
// lives in the repository; this layer owns validation, the confirmation
// notification and the audit entry.
type PaymentService struct {
	payments      repository.PaymentsRepository
	notifications repository.NotificationsRepository
	audit         repository.AuditRepository
	logger        *zap.Logger
	now           func() time.Time
}

func NewPaymentService(
	payments repository.PaymentsRepository,
	notifications repository.NotificationsRepository,
	audit repository.AuditRepository,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments:      payments,
		notifications: notifications,
		audit:         audit,
		logger:        logger,
		now:           time.Now,
	}
}

// RecordPayment applies the payment and, once the balance update committed,
// writes the member's confirmation notification and the audit entry.
func (s *PaymentService) RecordPayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	if req.MemberID == "" {
		return nil, NewValidationError("memberId", "معرف العضو مطلوب")
	}
	if req.Amount < paymentUnit || math.Mod(req.Amount, paymentUnit) != 0 {
		return nil, NewValidationError("amount", "المبلغ يجب أن يكون من مضاعفات 50 ريال")
	}
	if req.Months < 0 {
		return nil, NewValidationError("months", "عدد الأشهر غير صحيح")
	}
	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCash
	}
	receipt := req.ReceiptNumber
	if receipt == "" {
		receipt = "REC-" + uuid.NewString()[:8]
	}

	at := s.now()
	result, err := s.payments.RecordPayment(ctx, repository.RecordPaymentParams{
		MemberID:      req.MemberID,
		Amount:        req.Amount,
		Months:        req.Months,
		PaymentMethod: method,
		ReceiptNumber: receipt,
		Notes:         req.Notes,
		PaidAt:        at,
	})
	if err != nil {
		return nil, classifyStoreErr(err, "member", req.MemberID)
	}

	notification := &domain.Notification{
		MemberID: req.MemberID,
		Title:    "تأكيد استلام دفعة",
		Message: fmt.Sprintf("تم استلام دفعتك بمبلغ %g ريال. رصيدك الحالي %g ريال.",
			req.Amount, result.NewBalance),
		Type:      "payment_confirmation",
		CreatedAt: at,
	}
	if err := s.notifications.CreateInApp(ctx, notification); err != nil {
		s.logger.Warn("payment confirmation notification failed",
			zap.String("member_id", req.MemberID), zap.Error(err))
	}

	meta, _ := json.Marshal(map[string]any{
		"amount":     req.Amount,
		"newBalance": result.NewBalance,
		"method":     method,
		"receiptNo":  receipt,
	})
	entry := &domain.AuditLogEntry{
		Action:      domain.AuditActionPaymentRecorded,
		Module:      domain.AuditModuleSubscriptions,
		ActorID:     req.AdminID,
		MemberID:    nullString(req.MemberID),
		Description: fmt.Sprintf("تسجيل دفعة بمبلغ %g ريال", req.Amount),
		Metadata:    nullString(string(meta)),
		IP:          req.IP,
		UserAgent:   req.UserAgent,
		CreatedAt:   at,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("audit append failed after payment",
			zap.String("member_id", req.MemberID), zap.Error(err))
	}

	s.logger.Info("payment recorded",
		zap.String("member_id", req.MemberID),
		zap.Float64("amount", req.Amount),
		zap.Float64("new_balance", result.NewBalance))

	return &PaymentResponse{
		PaymentID:   result.PaymentID,
		NewBalance:  result.NewBalance,
		MonthsAhead: result.MonthsAhead,
	}, nil
}
