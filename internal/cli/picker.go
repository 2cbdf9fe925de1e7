package cli

import (
	"fmt"
	"strings"

	"github.com/booky-next/internal/service"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// pickerModel 购物车勾选界面，勾选状态全部交给 CartSelection
type pickerModel struct {
	items     []service.CartItem
	selection *service.CartSelection
	keys      keyMap
	styles    styles

	cursor    int
	notice    string
	confirmed bool
	cancelled bool
}

func newPickerModel(items []service.CartItem, selection *service.CartSelection, st styles) pickerModel {
	return pickerModel{
		items:     items,
		selection: selection,
		keys:      defaultKeyMap(),
		styles:    st,
	}
}

// Init implements tea.Model.
func (m pickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.notice = ""
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		if m.cursor < len(m.items) {
			m.selection.ToggleItem(m.items[m.cursor].BookID)
		}
	case key.Matches(keyMsg, m.keys.ToggleAll):
		m.selection.ToggleSelectAll()
	case key.Matches(keyMsg, m.keys.Confirm):
		if m.selection.SelectedCount() == 0 {
			m.notice = "Select at least one book to borrow."
			return m, nil
		}
		m.confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("My Cart"))
	b.WriteString("\n\n")
	if len(m.items) == 0 {
		b.WriteString(m.styles.Muted.Render("No books found."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("  ")
	b.WriteString(checkbox(m.selection.AllSelected()))
	b.WriteString(" Select All\n")
	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Cursor.Render("> ")
		}
		box := checkbox(false)
		if m.selection.IsSelected(item.BookID) {
			box = m.styles.Selected.Render(checkbox(true))
		}
		b.WriteString(cursor)
		b.WriteString(fmt.Sprintf("%s %s  %s", box, item.BookName,
			m.styles.Muted.Render(item.CategoryName.DisplayName()+" · "+item.AuthorName)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total Book: %d", m.selection.SelectedCount()))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(m.styles.Danger.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Muted.Render(helpLine(m.keys)))
	b.WriteString("\n")
	return b.String()
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func helpLine(k keyMap) string {
	parts := make([]string, 0, len(k.shortHelp()))
	for _, binding := range k.shortHelp() {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
