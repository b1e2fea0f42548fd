package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library mux; no third-party routing needed for
// this surface.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func requireMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterMonitoringRoutes wires the member compliance dashboard.
func (r *Router) RegisterMonitoringRoutes(h *MonitoringHandler) {
	r.Handle("/api/monitoring/members", requireMethod(http.MethodGet, h.ListMembers))
	r.Handle("/api/monitoring/members/export", requireMethod(http.MethodGet, h.ExportMembers))
	r.Handle("/api/monitoring/members/", h.memberSubroute)
	r.Handle("/api/monitoring/members/notify", requireMethod(http.MethodPost, h.Notify))
	r.Handle("/api/monitoring/statistics", requireMethod(http.MethodGet, h.Statistics))
	r.Handle("/api/monitoring/tribal-sections", requireMethod(http.MethodGet, h.TribalSections))
	r.Handle("/api/monitoring/search", requireMethod(http.MethodGet, h.Search))
	r.Handle("/api/monitoring/audit-log", requireMethod(http.MethodGet, h.AuditLog))
}

// RegisterStatementRoutes wires the member statement lookups.
func (r *Router) RegisterStatementRoutes(h *StatementHandler) {
	r.Handle("/api/statements/search/phone", requireMethod(http.MethodGet, h.ByPhone))
	r.Handle("/api/statements/search/name", requireMethod(http.MethodGet, h.ByName))
	r.Handle("/api/statements/search/member", requireMethod(http.MethodGet, h.ByMemberID))
}

// RegisterPaymentRoutes wires payment recording.
func (r *Router) RegisterPaymentRoutes(h *PaymentHandler) {
	r.Handle("/api/subscriptions/payments", requireMethod(http.MethodPost, h.RecordPayment))
}

// RegisterHealthRoute exposes liveness.
func (r *Router) RegisterHealthRoute() {
	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
