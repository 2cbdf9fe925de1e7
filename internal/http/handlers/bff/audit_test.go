package bff

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/booky-next/internal/cache"
	"github.com/booky-next/internal/config"
	"github.com/booky-next/internal/http/response"
	"github.com/booky-next/internal/models"
	"github.com/booky-next/internal/repository"

	"github.com/gin-gonic/gin"
)

type stubAuditRepo struct {
	filters []repository.LoanAuditListFilter
	rows    []models.LoanAudit
	total   int64
	err     error
}

func (s *stubAuditRepo) Create(*models.LoanAudit) error { return nil }

func (s *stubAuditRepo) List(filter repository.LoanAuditListFilter) ([]models.LoanAudit, int64, error) {
	s.filters = append(s.filters, filter)
	return s.rows, s.total, s.err
}

func (s *stubAuditRepo) DeleteBefore(time.Time) (int64, error) { return 0, nil }

type envelope struct {
	StatusCode int                 `json:"status_code"`
	Msg        string              `json:"msg"`
	Data       json.RawMessage     `json:"data"`
	Pagination response.Pagination `json:"pagination"`
}

func decodeEnvelope(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope failed: %v body=%s", err, body)
	}
	return env
}

func setupAuditRoute(t *testing.T, token string, repo repository.LoanAuditRepository) *gin.Engine {
	t.Helper()
	_, h := setupBFF(t, &fakeUpstream{})
	h.Config.Audit.AdminToken = token
	h.LoanAuditRepo = repo
	r := gin.New()
	r.GET("/internal/loan-audits", h.ListLoanAudits)
	return r
}

func TestLoanAuditListDisabledWithoutToken(t *testing.T) {
	repo := &stubAuditRepo{}
	r := setupAuditRoute(t, "", repo)

	w := doRequest(r, http.MethodGet, "/internal/loan-audits", "", map[string]string{auditTokenHeader: "anything"})
	env := decodeEnvelope(t, w.Body.Bytes())
	if env.StatusCode != response.CodeNotFound {
		t.Fatalf("status_code want 404 got %d", env.StatusCode)
	}
	if len(repo.filters) != 0 {
		t.Fatalf("disabled listing must not query")
	}
}

func TestLoanAuditListRejectsWrongToken(t *testing.T) {
	repo := &stubAuditRepo{}
	r := setupAuditRoute(t, "ops-secret", repo)

	w := doRequest(r, http.MethodGet, "/internal/loan-audits", "", map[string]string{auditTokenHeader: "guess"})
	env := decodeEnvelope(t, w.Body.Bytes())
	if env.StatusCode != response.CodeForbidden || env.Msg != "Invalid audit token" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if len(repo.filters) != 0 {
		t.Fatalf("forbidden listing must not query")
	}
}

func TestLoanAuditListPaginatesAndFilters(t *testing.T) {
	repo := &stubAuditRepo{
		rows:  []models.LoanAudit{{ID: 9, UserID: "u1", BookID: "12", Days: 5, UpstreamStatus: 201}},
		total: 11,
	}
	r := setupAuditRoute(t, "ops-secret", repo)

	w := doRequest(r, http.MethodGet,
		"/internal/loan-audits?page=2&limit=5&user_id=u1&book_id=12&created_from=2024-01-01&created_to=2024-01-31T23:59:59Z",
		"", map[string]string{auditTokenHeader: "ops-secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	env := decodeEnvelope(t, w.Body.Bytes())
	if env.StatusCode != response.CodeOK {
		t.Fatalf("status_code want 0 got %d (%s)", env.StatusCode, env.Msg)
	}
	if env.Pagination != (response.Pagination{Page: 2, PageSize: 5, Total: 11, TotalPage: 3}) {
		t.Fatalf("unexpected pagination: %+v", env.Pagination)
	}
	var rows []models.LoanAudit
	if err := json.Unmarshal(env.Data, &rows); err != nil || len(rows) != 1 || rows[0].BookID != "12" {
		t.Fatalf("unexpected rows: %s err=%v", env.Data, err)
	}

	if len(repo.filters) != 1 {
		t.Fatalf("want one query got %d", len(repo.filters))
	}
	filter := repo.filters[0]
	if filter.Page != 2 || filter.PageSize != 5 || filter.UserID != "u1" || filter.BookID != "12" {
		t.Fatalf("unexpected filter: %+v", filter)
	}
	if filter.CreatedFrom == nil || !filter.CreatedFrom.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created_from: %v", filter.CreatedFrom)
	}
	if filter.CreatedTo == nil || !filter.CreatedTo.Equal(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("unexpected created_to: %v", filter.CreatedTo)
	}
}

func TestLoanAuditListRejectsBadTime(t *testing.T) {
	repo := &stubAuditRepo{}
	r := setupAuditRoute(t, "ops-secret", repo)

	w := doRequest(r, http.MethodGet, "/internal/loan-audits?created_from=yesterday", "", map[string]string{auditTokenHeader: "ops-secret"})
	env := decodeEnvelope(t, w.Body.Bytes())
	if env.StatusCode != response.CodeBadRequest || env.Msg != "Invalid created_from" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if len(repo.filters) != 0 {
		t.Fatalf("bad time must not query")
	}
}

func TestLoanAuditListStoreFailure(t *testing.T) {
	r := setupAuditRoute(t, "ops-secret", &stubAuditRepo{err: errors.New("disk full")})

	w := doRequest(r, http.MethodGet, "/internal/loan-audits", "", map[string]string{auditTokenHeader: "ops-secret"})
	env := decodeEnvelope(t, w.Body.Bytes())
	if env.StatusCode != response.CodeInternal || env.Msg != "Failed to query loan audits" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestLoanAuditListWithoutStore(t *testing.T) {
	r := setupAuditRoute(t, "ops-secret", nil)

	w := doRequest(r, http.MethodGet, "/internal/loan-audits", "", map[string]string{auditTokenHeader: "ops-secret"})
	env := decodeEnvelope(t, w.Body.Bytes())
	if env.StatusCode != response.CodeUnavailable {
		t.Fatalf("status_code want 503 got %d", env.StatusCode)
	}
}

func TestHealthReportsOK(t *testing.T) {
	_, h := setupBFF(t, &fakeUpstream{})
	r := gin.New()
	r.GET("/healthz", h.Health)

	env := decodeEnvelope(t, doRequest(r, http.MethodGet, "/healthz", "", nil).Body.Bytes())
	if env.StatusCode != response.CodeOK {
		t.Fatalf("status_code want 0 got %d (%s)", env.StatusCode, env.Msg)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(env.Data, &data); err != nil || data["status"] != "ok" {
		t.Fatalf("unexpected data: %s err=%v", env.Data, err)
	}
}

func TestHealthReportsRedisOutage(t *testing.T) {
	if err := cache.InitRedis(&config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}); err != nil {
		t.Fatalf("init redis failed: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	_, h := setupBFF(t, &fakeUpstream{})
	r := gin.New()
	r.GET("/healthz", h.Health)

	env := decodeEnvelope(t, doRequest(r, http.MethodGet, "/healthz", "", nil).Body.Bytes())
	if env.StatusCode != response.CodeUnavailable || env.Msg != "Redis unavailable" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
