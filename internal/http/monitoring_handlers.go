package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"alshuail-fund/internal/repository"
	"alshuail-fund/internal/service"
)

// MonitoringHandler serves the compliance dashboard: member listing, export,
// statistics, suspension and notification dispatch.
type MonitoringHandler struct {
	query  *service.MemberQueryService
	stats  *service.StatsService
	susp   *service.SuspensionService
	notify *service.NotificationService
	audit  repository.AuditRepository
	logger *zap.Logger
}

func NewMonitoringHandler(
	query *service.MemberQueryService,
	stats *service.StatsService,
	susp *service.SuspensionService,
	notify *service.NotificationService,
	audit repository.AuditRepository,
	logger *zap.Logger,
) *MonitoringHandler {
	return &MonitoringHandler{
		query:  query,
		stats:  stats,
		susp:   susp,
		notify: notify,
		audit:  audit,
		logger: logger,
	}
}

// memberQueryFromRequest parses the shared filter shape of the list view and
// the export.
func memberQueryFromRequest(r *http.Request) (service.MemberQuery, error) {
	q := r.URL.Query()
	mq := service.MemberQuery{
		Status:          q.Get("status"),
		MemberID:        q.Get("memberId"),
		FullName:        q.Get("fullName"),
		PhoneNumber:     q.Get("phoneNumber"),
		TribalSection:   q.Get("tribalSection"),
		BalanceCategory: q.Get("balanceCategory"),
		BalanceOperator: q.Get("balanceOperator"),
		SortBy:          q.Get("sortBy"),
		SortOrder:       q.Get("sortOrder"),
		Page:            parseInt(q.Get("page"), 1),
		Limit:           parseInt(q.Get("limit"), 50),
	}

	var ok bool
	if mq.BalanceAmount, ok = parseFloatPtr(q.Get("balanceAmount")); !ok {
		return mq, service.NewValidationError("balanceAmount", "قيمة الرصيد يجب أن تكون رقماً")
	}
	if mq.BalanceMin, ok = parseFloatPtr(q.Get("balanceMin")); !ok {
		return mq, service.NewValidationError("balanceMin", "قيمة الرصيد يجب أن تكون رقماً")
	}
	if mq.BalanceMax, ok = parseFloatPtr(q.Get("balanceMax")); !ok {
		return mq, service.NewValidationError("balanceMax", "قيمة الرصيد يجب أن تكون رقماً")
	}
	return mq, nil
}

// ListMembers is GET /api/monitoring/members.
func (h *MonitoringHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	mq, err := memberQueryFromRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := h.query.ListMembers(r.Context(), mq)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(result))
}

// ExportMembers is GET /api/monitoring/members/export. Same filters as the
// list view, full set, Excel body by default or labeled JSON with
// ?format=json.
func (h *MonitoringHandler) ExportMembers(w http.ResponseWriter, r *http.Request) {
	mq, err := memberQueryFromRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	members, stats, err := h.query.FilteredMembers(r.Context(), mq)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, ok(map[string]any{
			"members":    ExportRows(members),
			"statistics": stats,
		}))
		return
	}

	payload, err := GenerateMembersExport(members, stats)
	if err != nil {
		h.logger.Error("excel generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, fail("فشل إنشاء ملف التصدير"))
		return
	}

	filename := fmt.Sprintf("members-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// Statistics is GET /api/monitoring/statistics. ?refresh=true bypasses the
// cache.
func (h *MonitoringHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "true"
	stats, err := h.stats.Dashboard(r.Context(), refresh)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(stats))
}

// TribalSections is GET /api/monitoring/tribal-sections.
func (h *MonitoringHandler) TribalSections(w http.ResponseWriter, r *http.Request) {
	dist, err := h.stats.TribalDistribution(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"distribution": dist}))
}

// Search is GET /api/monitoring/search?q=..., the autocomplete endpoint.
func (h *MonitoringHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(term)) < 2 {
		writeJSON(w, http.StatusBadRequest, fail("يجب إدخال حرفين على الأقل للبحث"))
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	members, err := h.query.SearchIdentifiers(r.Context(), term, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"results": members}))
}

// memberSubroute handles /api/monitoring/members/{id}/suspend.
func (h *MonitoringHandler) memberSubroute(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/monitoring/members/")
	parts := strings.Split(rest, "/")
	if len(parts) == 2 && parts[1] == "suspend" && parts[0] != "" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.suspend(w, r, parts[0])
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

type suspendPayload struct {
	Reason  string `json:"reason"`
	AdminID string `json:"adminId"`
}

func (h *MonitoringHandler) suspend(w http.ResponseWriter, r *http.Request, memberID string) {
	var payload suspendPayload
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("صيغة الطلب غير صحيحة"))
		return
	}

	result, err := h.susp.Suspend(r.Context(), service.SuspendRequest{
		MemberID:  memberID,
		Reason:    payload.Reason,
		AdminID:   payload.AdminID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okMessage("تم إيقاف العضوية بنجاح", result))
}

// Notify is POST /api/monitoring/members/notify.
func (h *MonitoringHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req service.NotifyRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fail("صيغة الطلب غير صحيحة"))
		return
	}
	req.IP = clientIP(r)
	req.UserAgent = r.UserAgent()

	manifest, err := h.notify.Notify(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(manifest))
}

type auditEntryResponse struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Module      string    `json:"module,omitempty"`
	ActorID     string    `json:"actorId,omitempty"`
	MemberID    string    `json:"memberId,omitempty"`
	Description string    `json:"description"`
	Metadata    string    `json:"metadata,omitempty"`
	IP          string    `json:"ip,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuditLog is GET /api/monitoring/audit-log.
func (h *MonitoringHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.AuditFilter{
		Action:   q.Get("action"),
		Module:   q.Get("module"),
		MemberID: q.Get("memberId"),
		ActorID:  q.Get("actorId"),
	}
	if from, _, okFrom := parseDate(q.Get("from")); okFrom {
		filter.From = &from
	}
	if to, dateOnly, okTo := parseDate(q.Get("to")); okTo {
		if dateOnly {
			// a bare date means the whole day, inclusive
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = &to
	}
	entries, total, err := h.audit.ListEntries(r.Context(), filter,
		parseInt(q.Get("page"), 1), parseInt(q.Get("limit"), 50))
	if err != nil {
		h.logger.Error("audit log listing failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, fail("الخدمة غير متاحة حالياً، يرجى المحاولة لاحقاً"))
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:          e.ID,
			Action:      e.Action,
			Module:      e.Module,
			ActorID:     e.ActorID,
			MemberID:    e.MemberID.String,
			Description: e.Description,
			Metadata:    e.Metadata.String,
			IP:          e.IP,
			UserAgent:   e.UserAgent,
			CreatedAt:   e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"entries": out, "total": total}))
}
