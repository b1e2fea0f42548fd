package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"alshuail-fund/internal/service"
)

// PaymentHandler records subscription payments.
type PaymentHandler struct {
	payments *service.PaymentService
	stats    *service.StatsService
	logger   *zap.Logger
}

func NewPaymentHandler(payments *service.PaymentService, stats *service.StatsService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, stats: stats, logger: logger}
}

// RecordPayment is POST /api/subscriptions/payments.
func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req service.PaymentRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("صيغة الطلب غير صحيحة"))
		return
	}
	req.IP = clientIP(r)
	req.UserAgent = r.UserAgent()

	resp, err := h.payments.RecordPayment(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// the cached dashboard is stale once a balance moved
	if h.stats != nil {
		h.stats.Invalidate(r.Context())
	}
	writeJSON(w, http.StatusOK, okMessage("تم تسجيل الدفعة بنجاح", resp))
}
