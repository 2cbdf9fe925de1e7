package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/booky-next/internal/logger"
	"github.com/booky-next/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var errSelectionCancelled = errors.New("selection cancelled")

func (a *app) cartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart of books to borrow",
	}
	cmd.AddCommand(
		a.cartAddCommand(),
		a.cartListCommand(),
		a.cartCountCommand(),
		a.cartClearCommand(),
		a.cartSelectCommand(),
	)
	return cmd
}

func (a *app) cartAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <bookId>",
		Short: "Add a book to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			view, err := a.catalog.BookDetail(cmd.Context(), id)
			if err != nil {
				return a.fail(err, fmt.Sprintf("retry with: booky cart add %d", id))
			}
			return a.addBookToCart(service.CartInputFromBook(view.Book))
		},
	}
}

// addBookToCart 重复或字段不全时不会加入
func (a *app) addBookToCart(input service.CartItemInput) error {
	added, err := a.cart.Add(input)
	if err != nil {
		return err
	}
	switch {
	case added:
		fmt.Fprintln(a.out, a.styles.Success.Render(fmt.Sprintf("Added \"%s\" to cart.", input.BookName)))
	case a.cartContains(input.BookID):
		fmt.Fprintln(a.out, a.styles.Muted.Render("Already in cart."))
	default:
		fmt.Fprintln(a.out, a.styles.Muted.Render("Book details are incomplete, not added."))
	}
	fmt.Fprintf(a.out, "Cart: %d book(s)\n", a.cart.Count())
	return nil
}

func (a *app) cartContains(bookID int) bool {
	for _, id := range a.cart.IDs() {
		if id == bookID {
			return true
		}
	}
	return false
}

func (a *app) cartListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printTitle("My Cart")
			a.printCartItems(a.cart.Load())
			return nil
		},
	}
}

func (a *app) cartCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Number of books in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.out, a.cart.Count())
			return nil
		},
	}
}

func (a *app) cartClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cart.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Cart cleared.")
			return nil
		},
	}
}

func (a *app) cartSelectCommand() *cobra.Command {
	var (
		all bool
		ids []int
	)
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Pick the books to check out",
		Long: "Pick the books to check out. Without flags an interactive picker opens; " +
			"--all or --ids select without a terminal. The picked books are frozen for `booky checkout`.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := a.cart.Load()
			if len(items) == 0 {
				a.printEmpty("No books found.")
				return nil
			}
			selection := service.NewCartSelection()
			unbind := selection.Bind(a.cart)
			defer unbind()

			if all || len(ids) > 0 {
				if all {
					selection.ToggleSelectAll()
				}
				for _, id := range ids {
					if !selection.IsSelected(id) {
						selection.ToggleItem(id)
					}
				}
			} else if err := a.runPicker(items, selection); err != nil {
				if errors.Is(err, errSelectionCancelled) {
					fmt.Fprintln(a.out, "Selection cancelled.")
					return nil
				}
				return err
			}

			snapshot, err := selection.TakeSnapshot(a.store, items, a.now())
			if err != nil {
				return a.fail(err, "")
			}
			logger.Debugw("cli_checkout_snapshot_taken", "items", len(snapshot.Items))
			fmt.Fprintf(a.out, "%d book(s) ready for checkout: %s\n", len(snapshot.Items), bookIDList(snapshot.Items))
			fmt.Fprintln(a.out, a.styles.Muted.Render("Continue with: booky checkout --agree-return --accept-policy"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "select every book in the cart")
	cmd.Flags().IntSliceVar(&ids, "ids", nil, "book ids to select, comma separated")
	return cmd
}

// runPicker 交互式勾选，取消时返回 errSelectionCancelled
func (a *app) runPicker(items []service.CartItem, selection *service.CartSelection) error {
	program := tea.NewProgram(
		newPickerModel(items, selection, a.styles),
		tea.WithInput(a.opts.In),
		tea.WithOutput(a.out),
	)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("run cart picker: %w", err)
	}
	model, ok := final.(pickerModel)
	if !ok || !model.confirmed {
		return errSelectionCancelled
	}
	return nil
}

func bookIDList(items []service.CartItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, "#"+strconv.Itoa(item.BookID))
	}
	return strings.Join(parts, ", ")
}
