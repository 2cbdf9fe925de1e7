package bff

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/booky-next/internal/http/handlers/shared"
	"github.com/booky-next/internal/http/response"
	"github.com/booky-next/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	auditTokenHeader     = "X-Audit-Token"
	defaultAuditPageSize = 20
)

var (
	errAuditDisabled  = response.NewError(response.CodeNotFound, "Loan audit listing is disabled")
	errAuditForbidden = response.NewError(response.CodeForbidden, "Invalid audit token")
	errAuditStoreNil  = response.NewError(response.CodeUnavailable, "Loan audit store is not configured")
)

// ListLoanAudits 分页查询借阅审计，需携带 audit.admin_token
func (h *Handler) ListLoanAudits(c *gin.Context) {
	if err := h.authorizeAudit(c); err != nil {
		shared.RespondError(c, err)
		return
	}
	if h.LoanAuditRepo == nil {
		shared.RespondError(c, errAuditStoreNil)
		return
	}

	page, pageSize := shared.QueryPagination(c, defaultAuditPageSize)
	filter := repository.LoanAuditListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   strings.TrimSpace(c.Query("user_id")),
		BookID:   strings.TrimSpace(c.Query("book_id")),
	}
	var err error
	if filter.CreatedFrom, err = queryTime(c, "created_from"); err != nil {
		shared.RespondError(c, err)
		return
	}
	if filter.CreatedTo, err = queryTime(c, "created_to"); err != nil {
		shared.RespondError(c, err)
		return
	}

	audits, total, err := h.LoanAuditRepo.List(filter)
	if err != nil {
		shared.RespondErrorWithMsg(c, response.CodeInternal, "Failed to query loan audits", err)
		return
	}
	response.SuccessWithPage(c, audits, response.BuildPagination(page, pageSize, total))
}

func (h *Handler) authorizeAudit(c *gin.Context) error {
	expected := ""
	if h.Container != nil && h.Config != nil {
		expected = h.Config.Audit.AdminToken
	}
	if expected == "" {
		return errAuditDisabled
	}
	given := strings.TrimSpace(c.GetHeader(auditTokenHeader))
	if subtle.ConstantTimeCompare([]byte(given), []byte(expected)) != 1 {
		shared.RequestLog(c).Warnw("loan_audit_list_forbidden", "client_ip", c.ClientIP())
		return errAuditForbidden
	}
	return nil
}

// queryTime 解析 RFC3339 或 YYYY-MM-DD 时间参数
func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, response.NewError(response.CodeBadRequest, "Invalid "+name)
}
