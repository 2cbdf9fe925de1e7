package service

import (
	"testing"

	"github.com/booky-next/internal/constants"
)

func TestCartServiceAddDeduplicatesByBookID(t *testing.T) {
	store := newTestClientStore(t)
	cart := NewCartService(store)
	cart.Load()

	sequence := []int{3, 1, 3, 2, 1, 3}
	for _, id := range sequence {
		if _, err := cart.Add(sampleCartInput(id)); err != nil {
			t.Fatalf("add %d failed: %v", id, err)
		}
	}
	// 字段不全的条目不会写入
	incomplete := sampleCartInput(9)
	incomplete.BookImage = ""
	added, err := cart.Add(incomplete)
	if err != nil || added {
		t.Fatalf("incomplete add should be ignored, added=%v err=%v", added, err)
	}

	if cart.Count() != 3 {
		t.Fatalf("count want 3 got %d", cart.Count())
	}
	ids := cart.IDs()
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 1 || ids[2] != 2 {
		t.Fatalf("unexpected order: %v", ids)
	}
}

func TestCartServiceAcceptsAnyIntegerBookID(t *testing.T) {
	store := newTestClientStore(t)
	cart := NewCartService(store)
	cart.Load()

	for _, id := range []int{0, -4} {
		added, err := cart.Add(sampleCartInput(id))
		if err != nil || !added {
			t.Fatalf("book id %d should be added, added=%v err=%v", id, added, err)
		}
	}
	if added, _ := cart.Add(sampleCartInput(0)); added {
		t.Fatalf("re-adding id 0 should be a no-op")
	}

	reloaded := NewCartService(store)
	items := reloaded.Load()
	if len(items) != 2 || items[0].BookID != 0 || items[1].BookID != -4 {
		t.Fatalf("unexpected persisted cart: %+v", items)
	}
}

func TestCartServiceReAddKeepsFirstFields(t *testing.T) {
	store := newTestClientStore(t)
	cart := NewCartService(store)
	fillCart(t, cart, 1)

	again := sampleCartInput(1)
	again.BookName = "Renamed"
	added, err := cart.Add(again)
	if err != nil || added {
		t.Fatalf("re-add should be a no-op, added=%v err=%v", added, err)
	}
	if cart.Items()[0].BookName != "Book 1" {
		t.Fatalf("fields should not change, got %s", cart.Items()[0].BookName)
	}
}

func TestCartServicePersistsAcrossInstances(t *testing.T) {
	store := newTestClientStore(t)
	fillCart(t, NewCartService(store), 5, 6)

	reloaded := NewCartService(store)
	items := reloaded.Load()
	if len(items) != 2 || items[0].BookID != 5 || items[1].BookID != 6 {
		t.Fatalf("unexpected reloaded items: %+v", items)
	}
	count, ok, err := store.GetString(constants.StoreKeyCartCount)
	if err != nil || !ok || count != "2" {
		t.Fatalf("legacy cartCount want 2 got %q ok=%v err=%v", count, ok, err)
	}
}

func TestCartServiceLoadCorruptResetsToEmpty(t *testing.T) {
	store := newTestClientStore(t)
	if err := store.SetString(constants.StoreKeyCartItems, "{not-json"); err != nil {
		t.Fatalf("seed corrupt cart failed: %v", err)
	}
	cart := NewCartService(store)
	if items := cart.Load(); len(items) != 0 {
		t.Fatalf("corrupt cart should load empty, got %+v", items)
	}
	added, err := cart.Add(sampleCartInput(1))
	if err != nil || !added {
		t.Fatalf("add after corrupt load failed: added=%v err=%v", added, err)
	}
}

func TestCartServiceNotifiesSubscribersAfterPersist(t *testing.T) {
	store := newTestClientStore(t)
	cart := NewCartService(store)
	cart.Load()

	var seen [][]int
	unsubscribe := cart.Subscribe(func(ids []int) {
		var persisted []CartItem
		if _, err := store.GetJSON(constants.StoreKeyCartItems, &persisted); err != nil {
			t.Errorf("read persisted cart failed: %v", err)
		}
		if len(persisted) != len(ids) {
			t.Errorf("subscriber ran before persist: persisted=%d ids=%d", len(persisted), len(ids))
		}
		seen = append(seen, ids)
	})
	fillCart(t, cart, 1, 2)
	unsubscribe()
	fillCart(t, cart, 3)

	if len(seen) != 2 || len(seen[1]) != 2 {
		t.Fatalf("unexpected notifications: %v", seen)
	}
}

func TestCartServiceRemoveIDs(t *testing.T) {
	store := newTestClientStore(t)
	cart := NewCartService(store)
	fillCart(t, cart, 1, 2, 3)

	if err := cart.RemoveIDs([]int{2, 42}); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	ids := cart.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("unexpected ids after remove: %v", ids)
	}
	if err := cart.RemoveIDs([]int{1, 3}); err != nil {
		t.Fatalf("remove rest failed: %v", err)
	}
	if _, ok, _ := store.GetString(constants.StoreKeyCartItems); ok {
		t.Fatalf("cartItems key should be deleted when cart becomes empty")
	}
}
