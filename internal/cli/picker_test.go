package cli

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/booky-next/internal/models"
	"github.com/booky-next/internal/repository"
	"github.com/booky-next/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	gormlogger "gorm.io/gorm/logger"
)

func newTestCart(t *testing.T, ids ...int) (*service.ClientStore, *service.CartService) {
	t.Helper()
	dsn := fmt.Sprintf("file:cli_picker_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := models.OpenDB("sqlite", dsn, models.DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateClientState(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	store := service.NewClientStore(repository.NewClientStateRepository(db))
	cart := service.NewCartService(store)
	for _, id := range ids {
		added, err := cart.Add(service.CartItemInput{
			BookID:       id,
			BookName:     fmt.Sprintf("Book %d", id),
			CategoryName: service.PlainCategory("Fiction"),
			AuthorName:   "Ann",
			BookImage:    fmt.Sprintf("https://img.example.com/%d.png", id),
		})
		if err != nil || !added {
			t.Fatalf("add book %d failed: added=%v err=%v", id, added, err)
		}
	}
	return store, cart
}

func runeKey(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func pressAll(m pickerModel, msgs ...tea.Msg) (pickerModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(pickerModel)
	}
	return m, cmd
}

func TestPickerTogglesItemsAtCursor(t *testing.T) {
	_, cart := newTestCart(t, 1, 2, 3)
	selection := service.NewCartSelection()
	defer selection.Bind(cart)()

	m := newPickerModel(cart.Items(), selection, newStyles())
	m, _ = pressAll(m, runeKey("x"), runeKey("j"), runeKey("j"), runeKey("x"))

	if !selection.IsSelected(1) || selection.IsSelected(2) || !selection.IsSelected(3) {
		t.Fatalf("unexpected selection: %v", selection.SelectedIDs())
	}
	if selection.AllSelected() {
		t.Fatalf("two of three should not render as all selected")
	}
	m, _ = pressAll(m, runeKey("k"), runeKey("x"))
	if !selection.AllSelected() {
		t.Fatalf("all items toggled individually should render select all")
	}
	if selection.SelectAllFlag() {
		t.Fatalf("select all flag should only change through ToggleSelectAll")
	}
	if !strings.Contains(m.View(), "[x] Select All") {
		t.Fatalf("view should show select all checked:\n%s", m.View())
	}
}

func TestPickerCursorStaysInBounds(t *testing.T) {
	_, cart := newTestCart(t, 1, 2)
	selection := service.NewCartSelection()
	defer selection.Bind(cart)()

	m := newPickerModel(cart.Items(), selection, newStyles())
	m, _ = pressAll(m, runeKey("k"), runeKey("k"))
	if m.cursor != 0 {
		t.Fatalf("cursor should stay at top, got %d", m.cursor)
	}
	m, _ = pressAll(m, runeKey("j"), runeKey("j"), runeKey("j"))
	if m.cursor != 1 {
		t.Fatalf("cursor should stay at bottom, got %d", m.cursor)
	}
}

func TestPickerSelectAllThenConfirm(t *testing.T) {
	_, cart := newTestCart(t, 4, 5)
	selection := service.NewCartSelection()
	defer selection.Bind(cart)()

	m := newPickerModel(cart.Items(), selection, newStyles())
	m, cmd := pressAll(m, runeKey("a"), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.confirmed || cmd == nil {
		t.Fatalf("enter with a selection should confirm and quit")
	}
	if selection.SelectedCount() != 2 || !selection.SelectAllFlag() {
		t.Fatalf("select all should pick every cart item, got %v", selection.SelectedIDs())
	}
	if !strings.Contains(m.View(), "Total Book: 2") {
		t.Fatalf("view should count selected books:\n%s", m.View())
	}
}

func TestPickerConfirmRequiresSelection(t *testing.T) {
	_, cart := newTestCart(t, 1)
	selection := service.NewCartSelection()
	defer selection.Bind(cart)()

	m := newPickerModel(cart.Items(), selection, newStyles())
	m, cmd := pressAll(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.confirmed || cmd != nil {
		t.Fatalf("enter without selection must not confirm")
	}
	if !strings.Contains(m.View(), "Select at least one book") {
		t.Fatalf("view should explain the empty selection:\n%s", m.View())
	}

	m, cmd = pressAll(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.cancelled || cmd == nil {
		t.Fatalf("esc should cancel and quit")
	}
}

func TestPickerSnapshotIsIndependentOfCart(t *testing.T) {
	store, cart := newTestCart(t, 1, 2)
	selection := service.NewCartSelection()
	defer selection.Bind(cart)()

	m := newPickerModel(cart.Items(), selection, newStyles())
	m, _ = pressAll(m, runeKey("j"), runeKey("x"), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.confirmed {
		t.Fatalf("expected confirmation")
	}
	snapshot, err := selection.TakeSnapshot(store, cart.Items(), time.Now())
	if err != nil {
		t.Fatalf("take snapshot failed: %v", err)
	}
	if err := cart.Clear(); err != nil {
		t.Fatalf("clear cart failed: %v", err)
	}
	if len(snapshot.Items) != 1 || snapshot.Items[0].BookID != 2 {
		t.Fatalf("unexpected snapshot: %+v", snapshot.Items)
	}
	if selection.SelectedCount() != 0 {
		t.Fatalf("clearing the cart should prune the selection")
	}
}
