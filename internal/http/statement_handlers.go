package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"alshuail-fund/internal/service"
)

// StatementHandler serves the single-member statement lookups.
type StatementHandler struct {
	statements *service.StatementService
	logger     *zap.Logger
}

func NewStatementHandler(statements *service.StatementService, logger *zap.Logger) *StatementHandler {
	return &StatementHandler{statements: statements, logger: logger}
}

// ByPhone is GET /api/statements/search/phone?phone=05xxxxxxxx.
func (h *StatementHandler) ByPhone(w http.ResponseWriter, r *http.Request) {
	st, err := h.statements.GetByPhone(r.Context(), r.URL.Query().Get("phone"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(st))
}

// ByName is GET /api/statements/search/name?name=... A unique match returns
// the statement; multiple matches return candidates for disambiguation.
func (h *StatementHandler) ByName(w http.ResponseWriter, r *http.Request) {
	st, candidates, err := h.statements.SearchByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if st != nil {
		writeJSON(w, http.StatusOK, ok(st))
		return
	}
	writeJSON(w, http.StatusOK, okMessage("يرجى تحديد العضو المطلوب", map[string]any{
		"candidates": candidates,
	}))
}

// ByMemberID is GET /api/statements/search/member?memberId=...
func (h *StatementHandler) ByMemberID(w http.ResponseWriter, r *http.Request) {
	st, err := h.statements.GetByMemberID(r.Context(), r.URL.Query().Get("memberId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(st))
}
