package cli

import (
	"fmt"

	"github.com/booky-next/internal/constants"

	"github.com/spf13/cobra"
)

func (a *app) profileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Your profile and borrowed books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.catalog.Profile(cmd.Context())
			if err != nil {
				return a.fail(err, "log in with: booky login")
			}
			a.printTitle("Profile")
			if p := view.Profile; p != nil {
				fmt.Fprintf(a.out, "Name: %s\n", nonEmpty(p.Name, "-"))
				fmt.Fprintf(a.out, "Email: %s\n", nonEmpty(p.Email, "-"))
				fmt.Fprintf(a.out, "Nomor Handphone: %s\n", nonEmpty(p.PhoneNumber(), "-"))
			}
			a.printHeading("Borrowed List")
			a.printLoans(view.Loans)
			return nil
		},
	}
}

func (a *app) loansCommand() *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:     "loans",
		Aliases: []string{"borrowed"},
		Short:   "Your borrowed books",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loans, err := a.catalog.MyLoans(cmd.Context(), page, limit)
			if err != nil {
				return a.fail(err, fmt.Sprintf("retry with: booky loans --page %d", max(page, constants.DefaultPage)))
			}
			a.printTitle("Borrowed List")
			a.printLoans(loans)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", constants.DefaultPage, "page number")
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultLoanPageSize, "loans per page")
	return cmd
}
