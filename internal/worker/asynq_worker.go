package worker

import (
	"context"
	"errors"
	"strings"

	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/logger"
	"github.com/booky-next/internal/models"
	"github.com/booky-next/internal/provider"
	"github.com/booky-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskLoanAudit, c.handleLoanAudit)
}

func (c *Consumer) handleLoanAudit(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_loan_audit_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseLoanAuditPayload(task.Payload())
	if err != nil {
		if errors.Is(err, queue.ErrLoanAuditPayloadInvalid) {
			logger.Debugw("worker_loan_audit_skip_invalid_payload", "book_id", payload.BookID, "days", payload.Days)
			return nil
		}
		logger.Warnw("worker_loan_audit_unmarshal_failed", "error", err)
		// 载荷损坏重试无意义
		return errors.Join(err, asynq.SkipRetry)
	}
	if c.Container == nil || c.LoanAuditRepo == nil {
		logger.Warnw("worker_loan_audit_skip_repo_nil", "request_id", payload.RequestID)
		return nil
	}
	audit := buildLoanAudit(payload)
	if err := c.LoanAuditRepo.Create(audit); err != nil {
		logger.Warnw("worker_loan_audit_persist_failed",
			"request_id", payload.RequestID,
			"book_id", payload.BookID,
			"error", err,
		)
		return err
	}
	logger.Debugw("worker_loan_audit_persisted", "request_id", payload.RequestID, "audit_id", audit.ID)
	return nil
}

func buildLoanAudit(payload queue.LoanAuditPayload) *models.LoanAudit {
	audit := &models.LoanAudit{
		RequestID:        strings.TrimSpace(payload.RequestID),
		UserID:           strings.TrimSpace(payload.UserID),
		BookID:           strings.TrimSpace(payload.BookID),
		Days:             payload.Days,
		UpstreamStatus:   payload.UpstreamStatus,
		TokenFingerprint: payload.TokenFingerprint,
		ClientIP:         payload.ClientIP,
		Source:           constants.LoanAuditSourceProxy,
	}
	if !payload.OccurredAt.IsZero() {
		audit.CreatedAt = payload.OccurredAt
	}
	return audit
}
