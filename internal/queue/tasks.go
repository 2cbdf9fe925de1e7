package queue

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/booky-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskLoanAudit 借阅审计任务
	TaskLoanAudit = constants.TaskLoanAudit
)

// ErrLoanAuditPayloadInvalid 借阅审计载荷缺少必要字段
var ErrLoanAuditPayloadInvalid = errors.New("loan audit payload invalid")

// LoanAuditPayload 借阅审计任务载荷
type LoanAuditPayload struct {
	RequestID        string    `json:"request_id"`
	UserID           string    `json:"user_id"`
	BookID           string    `json:"book_id"`
	Days             int       `json:"days"`
	UpstreamStatus   int       `json:"upstream_status"`
	TokenFingerprint string    `json:"token_fingerprint"`
	ClientIP         string    `json:"client_ip"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Validate 校验载荷
func (p LoanAuditPayload) Validate() error {
	if strings.TrimSpace(p.BookID) == "" || p.Days <= 0 {
		return ErrLoanAuditPayloadInvalid
	}
	return nil
}

// NewLoanAuditTask 创建借阅审计任务
func NewLoanAuditTask(payload LoanAuditPayload) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLoanAudit, body), nil
}

// ParseLoanAuditPayload 解析借阅审计载荷
func ParseLoanAuditPayload(body []byte) (LoanAuditPayload, error) {
	var payload LoanAuditPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	return payload, payload.Validate()
}
