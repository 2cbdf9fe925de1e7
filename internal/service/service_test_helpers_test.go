package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/booky-next/internal/apiclient"
	"github.com/booky-next/internal/models"
	"github.com/booky-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestClientStore(t *testing.T) *ClientStore {
	t.Helper()
	dsn := fmt.Sprintf("file:service_client_store_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateClientState(db); err != nil {
		t.Fatalf("migrate client state failed: %v", err)
	}
	return NewClientStore(repository.NewClientStateRepository(db))
}

func sampleCartInput(id int) CartItemInput {
	return CartItemInput{
		BookID:       id,
		BookName:     fmt.Sprintf("Book %d", id),
		CategoryName: PlainCategory("Fiction"),
		AuthorName:   "Author",
		BookImage:    fmt.Sprintf("https://img.example.com/%d.png", id),
	}
}

func fillCart(t *testing.T, cart *CartService, ids ...int) {
	t.Helper()
	for _, id := range ids {
		if _, err := cart.Add(sampleCartInput(id)); err != nil {
			t.Fatalf("add %d failed: %v", id, err)
		}
	}
}

type loanCall struct {
	req apiclient.LoanRequest
}

type fakeLoanSubmitter struct {
	calls   []loanCall
	respond func(index int, req apiclient.LoanRequest) (*apiclient.Envelope, error)
}

func (f *fakeLoanSubmitter) CreateLoan(_ context.Context, req apiclient.LoanRequest) (*apiclient.Envelope, error) {
	index := len(f.calls)
	f.calls = append(f.calls, loanCall{req: req})
	if f.respond == nil {
		ok := true
		return &apiclient.Envelope{Success: &ok}, nil
	}
	return f.respond(index, req)
}
