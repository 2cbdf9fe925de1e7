package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/booky-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupClientStateRepositoryTest(t *testing.T) *GormClientStateRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:client_state_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.ClientState{}); err != nil {
		t.Fatalf("migrate client state failed: %v", err)
	}
	return NewClientStateRepository(db)
}

func TestClientStateRepositoryUpsertAndGet(t *testing.T) {
	repo := setupClientStateRepositoryTest(t)

	missing, err := repo.Get("token")
	if err != nil {
		t.Fatalf("get missing failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing key should return nil, got %+v", missing)
	}

	if err := repo.Upsert("token", `"Bearer a"`); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Upsert("token", `"Bearer b"`); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, err := repo.Get("token")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.Value != `"Bearer b"` {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestClientStateRepositoryDelete(t *testing.T) {
	repo := setupClientStateRepositoryTest(t)
	for _, key := range []string{"token", "user", "cartItems"} {
		if err := repo.Upsert(key, "null"); err != nil {
			t.Fatalf("upsert %s failed: %v", key, err)
		}
	}
	if err := repo.Delete("token", "user"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := repo.Delete(); err != nil {
		t.Fatalf("empty delete failed: %v", err)
	}
	for _, key := range []string{"token", "user"} {
		got, err := repo.Get(key)
		if err != nil {
			t.Fatalf("get %s failed: %v", key, err)
		}
		if got != nil {
			t.Fatalf("%s should be deleted", key)
		}
	}
	kept, err := repo.Get("cartItems")
	if err != nil || kept == nil {
		t.Fatalf("cartItems should be kept, err=%v", err)
	}
}
