package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alshuail-fund/internal/domain"
	"alshuail-fund/internal/repository"
	"alshuail-fund/internal/service"
)

func newTestServer(t *testing.T, members ...*domain.Member) (*Router, *repository.MemoryRepository) {
	t.Helper()

	repo := repository.NewMemoryRepository()
	repo.Seed(members...)

	logger := zap.NewNop()
	query := service.NewMemberQueryService(repo, logger)
	stats := service.NewStatsService(query, nil, time.Minute, logger)
	susp := service.NewSuspensionService(repo, repo, logger)
	notify := service.NewNotificationService(repo, repo, repo, nil, nil, logger)
	statements := service.NewStatementService(repo, logger)
	payments := service.NewPaymentService(repo, repo, repo, logger)

	router := NewRouter(logger)
	router.RegisterMonitoringRoutes(NewMonitoringHandler(query, stats, susp, notify, repo, logger))
	router.RegisterStatementRoutes(NewStatementHandler(statements, logger))
	router.RegisterPaymentRoutes(NewPaymentHandler(payments, stats, logger))
	router.RegisterHealthRoute()
	return router, repo
}

func testMember(id string, balance float64, name, phone string) *domain.Member {
	return &domain.Member{
		ID:             id,
		FullName:       sql.NullString{String: name, Valid: name != ""},
		Phone:          sql.NullString{String: phone, Valid: phone != ""},
		CurrentBalance: sql.NullFloat64{Float64: balance, Valid: true},
	}
}

func doJSON(t *testing.T, router *Router, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("User-Agent", "alshuail-admin-test")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func TestListMembersEndpoint(t *testing.T) {
	router, _ := newTestServer(t,
		testMember("m1", 1250, "محمد العيد", "0551234567"),
		testMember("m2", 4000, "سعد الرشيد", "0509876543"),
	)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/monitoring/members?page=1&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, payload["success"].(bool))

	data := payload["data"].(map[string]any)
	members := data["members"].([]any)
	assert.Len(t, members, 2)

	stats := data["statistics"].(map[string]any)
	assert.Equal(t, float64(2), stats["total"])

	filters := data["filters"].(map[string]any)
	assert.Len(t, filters["tribalSections"].([]any), 8)
}

func TestListMembersEndpoint_MalformedBalanceAmount(t *testing.T) {
	router, _ := newTestServer(t)

	rec, payload := doJSON(t, router, http.MethodGet,
		"/api/monitoring/members?balanceOperator=gte&balanceAmount=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, payload["success"].(bool))
}

func TestListMembersEndpoint_MethodNotAllowed(t *testing.T) {
	router, _ := newTestServer(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/monitoring/members", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSuspendEndpoint(t *testing.T) {
	router, repo := newTestServer(t, testMember("m1", 100, "محمد", ""))

	rec, payload := doJSON(t, router, http.MethodPost,
		"/api/monitoring/members/m1/suspend",
		`{"reason":"عدم السداد","adminId":"admin-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, payload["success"].(bool))

	entries := repo.AuditEntries(repository.AuditFilter{Action: domain.AuditActionMemberSuspended})
	assert.Len(t, entries, 1)
}

func TestSuspendEndpoint_EmptyReason(t *testing.T) {
	router, repo := newTestServer(t, testMember("m1", 100, "محمد", ""))

	rec, payload := doJSON(t, router, http.MethodPost,
		"/api/monitoring/members/m1/suspend", `{"reason":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, payload["success"].(bool))
	assert.Empty(t, repo.AuditEntries(repository.AuditFilter{}))
}

func TestSuspendEndpoint_NotFound(t *testing.T) {
	router, _ := newTestServer(t)

	rec, _ := doJSON(t, router, http.MethodPost,
		"/api/monitoring/members/missing/suspend", `{"reason":"سبب"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotifyEndpoint(t *testing.T) {
	router, repo := newTestServer(t, testMember("m1", 100, "محمد", "0551234567"))

	rec, payload := doJSON(t, router, http.MethodPost,
		"/api/monitoring/members/notify",
		`{"memberIds":["m1"],"channel":"sms","message":"يرجى السداد"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	data := payload["data"].(map[string]any)
	assert.Equal(t, float64(1), data["sent"])
	assert.Len(t, repo.Notifications(), 1)
	assert.Len(t, repo.SMSEntries(), 1)
}

func TestStatementByPhoneEndpoint(t *testing.T) {
	router, _ := newTestServer(t, testMember("m1", 1250, "محمد", "0551234567"))

	rec, payload := doJSON(t, router, http.MethodGet,
		"/api/statements/search/phone?phone=0551234567", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := payload["data"].(map[string]any)
	assert.Equal(t, float64(1250), data["currentBalance"])
	assert.Equal(t, float64(3000), data["targetBalance"])
	assert.Equal(t, "WARNING", data["alertLevel"])
	assert.NotEmpty(t, data["alertMessage"])
	assert.NotEmpty(t, data["recentTransactions"])
}

func TestStatementByPhoneEndpoint_InvalidPhone(t *testing.T) {
	router, _ := newTestServer(t)

	rec, _ := doJSON(t, router, http.MethodGet,
		"/api/statements/search/phone?phone=123", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatementByNameEndpoint_Candidates(t *testing.T) {
	router, _ := newTestServer(t,
		testMember("m1", 100, "سعد الرشيد", ""),
		testMember("m2", 200, "سعد المسعود", ""),
	)

	rec, payload := doJSON(t, router, http.MethodGet,
		"/api/statements/search/name?name=سعد", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := payload["data"].(map[string]any)
	assert.Len(t, data["candidates"].([]any), 2)
}

func TestStatementByMemberEndpoint_NotFound(t *testing.T) {
	router, _ := newTestServer(t)

	rec, _ := doJSON(t, router, http.MethodGet,
		"/api/statements/search/member?memberId=missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordPaymentEndpoint(t *testing.T) {
	router, repo := newTestServer(t, testMember("m1", 0, "محمد", ""))

	rec, payload := doJSON(t, router, http.MethodPost,
		"/api/subscriptions/payments",
		`{"memberId":"m1","amount":100,"months":2,"adminId":"admin-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	data := payload["data"].(map[string]any)
	assert.Equal(t, float64(100), data["newBalance"])
	assert.Equal(t, float64(2), data["monthsAhead"])
	assert.Len(t, repo.Payments(), 1)
}

func TestRecordPaymentEndpoint_InvalidAmount(t *testing.T) {
	router, _ := newTestServer(t, testMember("m1", 0, "محمد", ""))

	rec, payload := doJSON(t, router, http.MethodPost,
		"/api/subscriptions/payments", `{"memberId":"m1","amount":75}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["message"], "50")
}

func TestExportEndpoint(t *testing.T) {
	router, _ := newTestServer(t, testMember("m1", 1250, "محمد", ""))

	req := httptest.NewRequest(http.MethodGet, "/api/monitoring/members/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestExportEndpoint_JSONFormat(t *testing.T) {
	router, _ := newTestServer(t, testMember("m1", 1250, "محمد", ""))

	rec, payload := doJSON(t, router, http.MethodGet,
		"/api/monitoring/members/export?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := payload["data"].(map[string]any)
	rows := data["members"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, float64(1250), row["الرصيد"])
	assert.Equal(t, "غير ملتزم", row["التصنيف"])
}

func TestSearchEndpoint(t *testing.T) {
	router, _ := newTestServer(t, testMember("m1", 100, "محمد العقاب", ""))

	rec, payload := doJSON(t, router, http.MethodGet, "/api/monitoring/search?q=محمد", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := payload["data"].(map[string]any)
	assert.Len(t, data["results"].([]any), 1)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/monitoring/search?q=م", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatisticsEndpoint(t *testing.T) {
	router, _ := newTestServer(t,
		testMember("m1", 1000, "أ", ""),
		testMember("m2", 5000, "ب", ""),
	)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/monitoring/statistics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := payload["data"].(map[string]any)
	stats := data["statistics"].(map[string]any)
	assert.Equal(t, float64(2), stats["total"])
	assert.Equal(t, float64(50), stats["complianceRate"])
}

func TestTribalSectionsEndpoint(t *testing.T) {
	router, _ := newTestServer(t, testMember("m1", 100, "أ", ""))

	rec, payload := doJSON(t, router, http.MethodGet, "/api/monitoring/tribal-sections", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := payload["data"].(map[string]any)
	assert.Len(t, data["distribution"].([]any), 8)
}

func TestAuditLogEndpoint(t *testing.T) {
	router, _ := newTestServer(t, testMember("m1", 100, "محمد", ""))

	// generate one entry through a suspension
	doJSON(t, router, http.MethodPost, "/api/monitoring/members/m1/suspend",
		`{"reason":"سبب","adminId":"admin-1"}`)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/monitoring/audit-log", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := payload["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total"])
}

func TestAuditLogEndpoint_DateRange(t *testing.T) {
	router, repo := newTestServer(t)

	at := time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(context.Background(), &domain.AuditLogEntry{
		Action:    domain.AuditActionMemberSuspended,
		CreatedAt: at,
	}))

	// an RFC3339 bound is exact: noon excludes the 18:00 entry
	rec, payload := doJSON(t, router, http.MethodGet,
		"/api/monitoring/audit-log?to=2026-01-01T12:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), payload["data"].(map[string]any)["total"])

	// a bare date covers that whole day
	rec, payload = doJSON(t, router, http.MethodGet,
		"/api/monitoring/audit-log?to=2026-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), payload["data"].(map[string]any)["total"])

	rec, payload = doJSON(t, router, http.MethodGet,
		"/api/monitoring/audit-log?from=2026-01-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), payload["data"].(map[string]any)["total"])
}

func TestAuditLogEndpoint_EntryShape(t *testing.T) {
	router, repo := newTestServer(t, testMember("m1", 100, "محمد", ""))

	doJSON(t, router, http.MethodPost, "/api/monitoring/members/m1/suspend",
		`{"reason":"سبب","adminId":"admin-1"}`)

	entries := repo.AuditEntries(repository.AuditFilter{Action: domain.AuditActionMemberSuspended})
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditModuleMonitoring, entries[0].Module)
	assert.Equal(t, "192.0.2.1", entries[0].IP)
	assert.Equal(t, "alshuail-admin-test", entries[0].UserAgent)

	rec, payload := doJSON(t, router, http.MethodGet,
		"/api/monitoring/audit-log?module=monitoring", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := payload["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total"])

	entry := data["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, "m1", entry["memberId"])
	assert.Equal(t, "monitoring", entry["module"])
	assert.Equal(t, "admin-1", entry["actorId"])
	assert.NotContains(t, entry, "MemberID")
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
