package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/models"
	"github.com/booky-next/internal/provider"
	"github.com/booky-next/internal/queue"
	"github.com/booky-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerConsumer(t *testing.T) (*Consumer, *repository.GormLoanAuditRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_loan_audit_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.LoanAudit{}); err != nil {
		t.Fatalf("migrate loan audit failed: %v", err)
	}
	repo := repository.NewLoanAuditRepository(db)
	return NewConsumer(&provider.Container{LoanAuditRepo: repo}), repo
}

func TestHandleLoanAuditPersistsRow(t *testing.T) {
	consumer, repo := setupWorkerConsumer(t)
	occurred := time.Date(2024, 1, 30, 10, 0, 0, 0, time.UTC)
	task, err := queue.NewLoanAuditTask(queue.LoanAuditPayload{
		RequestID:        " req-1 ",
		UserID:           "7",
		BookID:           "12",
		Days:             5,
		UpstreamStatus:   201,
		TokenFingerprint: "abc",
		ClientIP:         "1.2.3.4",
		OccurredAt:       occurred,
	})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}

	if err := consumer.handleLoanAudit(context.Background(), task); err != nil {
		t.Fatalf("handle loan audit failed: %v", err)
	}

	list, total, err := repo.List(repository.LoanAuditListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("total want 1 got %d", total)
	}
	row := list[0]
	if row.RequestID != "req-1" || row.BookID != "12" || row.Days != 5 || row.UpstreamStatus != 201 {
		t.Fatalf("unexpected audit row: %+v", row)
	}
	if row.Source != constants.LoanAuditSourceProxy {
		t.Fatalf("source want proxy got %s", row.Source)
	}
	if !row.CreatedAt.Equal(occurred) {
		t.Fatalf("created_at want %v got %v", occurred, row.CreatedAt)
	}
}

func TestHandleLoanAuditSkipsBrokenPayload(t *testing.T) {
	consumer, repo := setupWorkerConsumer(t)

	err := consumer.handleLoanAudit(context.Background(), asynq.NewTask(queue.TaskLoanAudit, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("broken payload should skip retry, got %v", err)
	}
	if err := consumer.handleLoanAudit(context.Background(), asynq.NewTask(queue.TaskLoanAudit, []byte(`{"book_id":"1"}`))); err != nil {
		t.Fatalf("invalid payload should be dropped silently, got %v", err)
	}
	_, total, err := repo.List(repository.LoanAuditListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("no rows expected, got %d", total)
	}
}

func TestPurgeLoanAudits(t *testing.T) {
	consumer, repo := setupWorkerConsumer(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.LoanAudit{
		{BookID: "old", Days: 3, CreatedAt: now.AddDate(0, 0, -91)},
		{BookID: "new", Days: 3, CreatedAt: now.AddDate(0, 0, -1)},
	}
	for i := range rows {
		if err := repo.Create(&rows[i]); err != nil {
			t.Fatalf("create audit failed: %v", err)
		}
	}

	if deleted := purgeLoanAudits(consumer, 90, now); deleted != 1 {
		t.Fatalf("deleted want 1 got %d", deleted)
	}
	if deleted := purgeLoanAudits(consumer, 0, now); deleted != 0 {
		t.Fatalf("retention 0 should not purge, got %d", deleted)
	}
}
