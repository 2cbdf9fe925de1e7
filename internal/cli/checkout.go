package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/booky-next/internal/service"

	"github.com/spf13/cobra"
)

func (a *app) checkoutCommand() *cobra.Command {
	var (
		date         string
		days         int
		agreeReturn  bool
		acceptPolicy bool
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Borrow the books picked with `booky cart select`",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checkout := service.NewCheckoutService(a.store, a.cart, a.client, service.CheckoutOptions{
				ClearPolicy:     a.cfg.Checkout.ClearPolicy,
				DefaultDuration: a.cfg.Checkout.DefaultDuration,
				Now:             a.now,
			})
			items := checkout.LoadSnapshot()
			if len(items) == 0 {
				return a.fail(service.ErrEmptySelection, "pick books first: booky cart select")
			}
			if strings.TrimSpace(date) != "" {
				borrowDate, err := service.ParseCalendarDate(date)
				if err != nil {
					return err
				}
				checkout.SetBorrowDate(borrowDate)
			}
			if cmd.Flags().Changed("days") {
				if err := checkout.SetDuration(days); err != nil {
					return err
				}
			}
			checkout.SetAgreeReturn(agreeReturn)
			checkout.SetAcceptPolicy(acceptPolicy)

			a.printTitle("Checkout")
			if user, err := a.session.CurrentUser(); err == nil && user != nil {
				a.printHeading("User Information")
				fmt.Fprintf(a.out, "%s <%s>\n", nonEmpty(user.Name, "-"), user.Email)
			}
			a.printHeading("Book List")
			a.printCartItems(checkout.Items())
			fmt.Fprintln(a.out)
			fmt.Fprintf(a.out, "Borrow Date: %s\n", checkout.BorrowDate().Long())
			fmt.Fprintf(a.out, "Borrow Duration: %d Days\n", checkout.Duration())
			fmt.Fprintf(a.out, "Return Date: %s\n", checkout.ReturnDate().Long())

			if !checkout.CanSubmit() {
				return a.fail(service.ErrValidationBlocked,
					"confirm with: booky checkout --agree-return --accept-policy")
			}
			result, err := checkout.Submit(cmd.Context())
			if err != nil {
				hint := ""
				if errors.Is(err, service.ErrAuthenticationRequired) {
					hint = "log in with: booky login"
				}
				return a.fail(err, hint)
			}
			fmt.Fprintln(a.out)
			a.printBorrowSuccess(result.DueDate)
			fmt.Fprintln(a.out, a.styles.Muted.Render("checkout-success?"+result.HandoffQuery()))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "borrow date YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&days, "days", 0, "borrow duration in days: 3, 5 or 10")
	cmd.Flags().BoolVar(&agreeReturn, "agree-return", false, "I agree to return the book(s) before the due date")
	cmd.Flags().BoolVar(&acceptPolicy, "accept-policy", false, "I accept the library borrowing policy")
	return cmd
}

func (a *app) checkoutSuccessCommand() *cobra.Command {
	var due string
	cmd := &cobra.Command{
		Use:   "checkout-success",
		Short: "Show the borrow confirmation for a due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printBorrowSuccess(service.ParseDueParam(due, a.now()))
			return nil
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date YYYY-MM-DD or epoch milliseconds (default today + 7 days)")
	return cmd
}

func (a *app) printBorrowSuccess(due service.CalendarDate) {
	message := fmt.Sprintf("Your book has been successfully borrowed. Please return it by %s.",
		a.styles.Danger.Render(due.Long()))
	fmt.Fprintln(a.out, a.styles.Box.Render(a.styles.Success.Render("Borrowing Successful!")+"\n"+message))
	fmt.Fprintln(a.out, a.styles.Muted.Render("See Borrowed List: booky loans"))
}
