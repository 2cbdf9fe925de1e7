//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.ClientState{},
		&models.LoanAudit{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)
	if err := db.AutoMigrate(cleanupModels...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgresClientStateUpsertOverwrites(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewClientStateRepository(db)

	if err := repo.Upsert(constants.StoreKeyCartItems, `[{"bookId":1}]`); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := repo.Upsert(constants.StoreKeyCartItems, `[]`); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	state, err := repo.Get(constants.StoreKeyCartItems)
	if err != nil || state == nil {
		t.Fatalf("get failed: state=%v err=%v", state, err)
	}
	if state.Value != `[]` {
		t.Fatalf("upsert should overwrite, got %s", state.Value)
	}

	if err := repo.Delete(constants.StoreKeyCartItems, constants.StoreKeyToken); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if state, err := repo.Get(constants.StoreKeyCartItems); err != nil || state != nil {
		t.Fatalf("deleted key should be absent: state=%v err=%v", state, err)
	}
}

func TestPostgresLoanAuditListAndPurge(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewLoanAuditRepository(db)

	now := time.Now().UTC()
	rows := []models.LoanAudit{
		{UserID: "u1", BookID: "1", Days: 3, UpstreamStatus: 201, Source: constants.LoanAuditSourceProxy, CreatedAt: now.AddDate(0, 0, -120)},
		{UserID: "u1", BookID: "2", Days: 5, UpstreamStatus: 201, Source: constants.LoanAuditSourceProxy, CreatedAt: now.AddDate(0, 0, -1)},
		{UserID: "u2", BookID: "1", Days: 10, UpstreamStatus: 201, Source: constants.LoanAuditSourceProxy, CreatedAt: now},
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
	if total != 2 || len(list) != 1 || list[0].BookID != "2" {
		t.Fatalf("unexpected page: total=%d rows=%+v", total, list)
	}

	deleted, err := repo.DeleteBefore(now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("purge should remove the expired row, removed %d", deleted)
	}
}
