package bff

import (
	"encoding/hex"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/booky-next/internal/http/handlers/shared"
	"github.com/booky-next/internal/http/response"
	"github.com/booky-next/internal/proxy"
	"github.com/booky-next/internal/queue"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/blake2b"
)

const msgLoanFieldsRequired = "bookId and days are required"

// PostLoanBook 创建借阅，成功后异步写入审计
func (h *Handler) PostLoanBook(c *gin.Context) {
	raw, ok := readJSONBody(c)
	if !ok {
		return
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		// 非对象请求体等同于缺少字段
		body = nil
	}
	if !truthy(body["bookId"]) || !truthy(body["days"]) {
		response.ErrorPayload(c, http.StatusBadRequest, msgLoanFieldsRequired)
		return
	}

	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	result := h.forward(c, proxy.Request{
		Endpoint:      proxy.EndpointPostLoan,
		Method:        http.MethodPost,
		Body:          raw,
		Authorization: auth,
	})
	if !result.OK() {
		return
	}
	h.enqueueLoanAudit(c, body, auth, result.Status)
}

func (h *Handler) enqueueLoanAudit(c *gin.Context, body map[string]interface{}, auth string, status int) {
	if h.audits == nil {
		return
	}
	payload := queue.LoanAuditPayload{
		RequestID:        shared.GetRequestID(c),
		UserID:           shared.GetUserID(c),
		BookID:           scalarText(body["bookId"]),
		Days:             scalarInt(body["days"]),
		UpstreamStatus:   status,
		TokenFingerprint: tokenFingerprint(auth),
		ClientIP:         c.ClientIP(),
		OccurredAt:       h.now().UTC(),
	}
	if err := h.audits.EnqueueLoanAudit(payload); err != nil {
		shared.RequestLog(c).Warnw("proxy_loan_audit_enqueue_failed",
			"book_id", payload.BookID,
			"days", payload.Days,
			"error", err,
		)
	}
}

// truthy 按前端约定判断字段是否“有值”：缺失、null、false、0、空串都视为无值
func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	default:
		return true
	}
}

func scalarText(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func scalarInt(value interface{}) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// tokenFingerprint 令牌指纹，审计表不落明文令牌
func tokenFingerprint(auth string) string {
	token := strings.TrimSpace(auth)
	for len(token) >= len("bearer ") && strings.EqualFold(token[:len("bearer ")], "bearer ") {
		token = strings.TrimSpace(token[len("bearer "):])
	}
	if token == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
