package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupLoanAuditRepositoryTest(t *testing.T) *GormLoanAuditRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:loan_audit_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.LoanAudit{}); err != nil {
		t.Fatalf("migrate loan audit failed: %v", err)
	}
	return NewLoanAuditRepository(db)
}

func TestLoanAuditRepositoryListFilters(t *testing.T) {
	repo := setupLoanAuditRepositoryTest(t)
	rows := []models.LoanAudit{
		{UserID: "u1", BookID: "b1", Days: 3, UpstreamStatus: 201, Source: constants.LoanAuditSourceProxy},
		{UserID: "u1", BookID: "b2", Days: 5, UpstreamStatus: 201, Source: constants.LoanAuditSourceProxy},
		{UserID: "u2", BookID: "b1", Days: 10, UpstreamStatus: 201, Source: constants.LoanAuditSourceProxy},
	}
	for i := range rows {
		if err := repo.Create(&rows[i]); err != nil {
			t.Fatalf("create audit failed: %v", err)
		}
	}

	list, total, err := repo.List(LoanAuditListFilter{UserID: "u1", Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("total want 2 got %d", total)
	}
	if len(list) != 1 || list[0].BookID != "b2" {
		t.Fatalf("expected newest u1 audit first, got %+v", list)
	}

	list, total, err = repo.List(LoanAuditListFilter{BookID: "b1"})
	if err != nil {
		t.Fatalf("list by book failed: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("book filter want 2 got total=%d len=%d", total, len(list))
	}
}

func TestLoanAuditRepositoryDeleteBefore(t *testing.T) {
	repo := setupLoanAuditRepositoryTest(t)
	now := time.Now()
	old := models.LoanAudit{BookID: "b1", Days: 3, CreatedAt: now.AddDate(0, 0, -100)}
	fresh := models.LoanAudit{BookID: "b2", Days: 3, CreatedAt: now}
	for _, row := range []*models.LoanAudit{&old, &fresh} {
		if err := repo.Create(row); err != nil {
			t.Fatalf("create audit failed: %v", err)
		}
	}

	deleted, err := repo.DeleteBefore(now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("delete before failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted want 1 got %d", deleted)
	}
	list, total, err := repo.List(LoanAuditListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || list[0].BookID != "b2" {
		t.Fatalf("expected fresh audit to remain, got %+v", list)
	}
}
