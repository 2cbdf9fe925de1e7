package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/logger"
	"github.com/booky-next/internal/service"

	"github.com/spf13/cobra"
)

// categoryPageLimit 分类页一次拉取的图书数量，筛选在本地完成
const categoryPageLimit = 100

func (a *app) homeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Categories, recommended books and popular authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.catalog.Home(cmd.Context())
			if err != nil {
				logger.Warnw("cli_home_load_failed", "error", err)
				return a.fail(err, "retry with: booky home")
			}
			a.printTitle("Booky")
			a.printHeading("Categories")
			a.printCategories(view.Categories)
			a.printHeading("Recommendation")
			a.printBooks(view.Books)
			a.printHeading("Popular Authors")
			a.printAuthors(view.Authors)
			return nil
		},
	}
}

func (a *app) booksCommand() *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List books page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.catalog.Books(cmd.Context(), page, limit)
			if err != nil {
				logger.Warnw("cli_books_load_failed", "page", page, "error", err)
				return a.fail(err, fmt.Sprintf("retry with: booky books --page %d", max(page, constants.DefaultPage)))
			}
			a.printBooks(result.Books)
			if result.TotalPages > 0 {
				fmt.Fprintln(a.out, a.styles.Muted.Render(
					fmt.Sprintf("Page %d of %d (%d books)", result.Page, result.TotalPages, result.Total)))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", constants.DefaultPage, "page number")
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultBookPageSize, "books per page")
	return cmd
}

func (a *app) bookCommand() *cobra.Command {
	var addToCart bool
	cmd := &cobra.Command{
		Use:   "book <id>",
		Short: "Book detail with reviews and recommendations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			view, err := a.catalog.BookDetail(cmd.Context(), id)
			if err != nil {
				logger.Warnw("cli_book_detail_load_failed", "book_id", id, "error", err)
				return a.fail(err, fmt.Sprintf("retry with: booky book %d", id))
			}
			book := view.Book
			a.printTitle(book.Title)
			fmt.Fprintln(a.out, a.styles.Muted.Render(joinNonEmpty(" · ", view.Category.DisplayName(), book.Author.Name)))
			if rating := ratingText(book.Rating); rating != "" {
				fmt.Fprintln(a.out, a.styles.Rating.Render(rating))
			}
			if book.Pages > 0 || book.ReviewCount > 0 {
				fmt.Fprintf(a.out, "%d pages · %d ratings · %d reviews\n", book.Pages, book.RatingCount, book.ReviewCount)
			}
			if desc := strings.TrimSpace(book.Description); desc != "" {
				fmt.Fprintln(a.out)
				fmt.Fprintln(a.out, desc)
			}
			a.printHeading("Review")
			a.printReviews(view.Reviews)
			a.printHeading("Related Books")
			a.printBooks(view.Recommended)

			if addToCart {
				fmt.Fprintln(a.out)
				return a.addBookToCart(service.CartInputFromBook(book))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&addToCart, "add", false, "add the book to the cart")
	return cmd
}

func (a *app) authorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "authors",
		Short: "List authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			authors, err := a.catalog.Authors(cmd.Context())
			if err != nil {
				return a.fail(err, "retry with: booky authors")
			}
			a.printAuthors(authors)
			return nil
		},
	}
}

func (a *app) authorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "author <id>",
		Short: "Books written by an author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "author")
			if err != nil {
				return err
			}
			books, err := a.catalog.BooksByAuthor(cmd.Context(), id)
			if err != nil {
				return a.fail(err, fmt.Sprintf("retry with: booky author %d", id))
			}
			if len(books) > 0 && books[0].Author.Name != "" {
				a.printTitle(books[0].Author.Name)
			}
			a.printBooks(books)
			return nil
		},
	}
}

func (a *app) categoriesCommand() *cobra.Command {
	var (
		names  []string
		rating int
	)
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories, or filter books by category and rating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(names) == 0 && rating == 0 {
				categories, err := a.catalog.Categories(cmd.Context())
				if err != nil {
					return a.fail(err, "retry with: booky categories")
				}
				a.printCategories(categories)
				return nil
			}
			if rating < 0 || rating > 5 {
				return fmt.Errorf("rating must be between 1 and 5")
			}
			result, err := a.catalog.Books(cmd.Context(), constants.DefaultPage, categoryPageLimit)
			if err != nil {
				return a.fail(err, "retry with: booky categories")
			}
			a.printBooks(service.FilterBooks(result.Books, service.BookFilter{Categories: names, Rating: rating}))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&names, "category", nil, "category names to include (repeatable)")
	cmd.Flags().IntVar(&rating, "rating", 0, "only books whose rating rounds down to this value")
	return cmd
}

func (a *app) reviewsCommand() *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "reviews <bookId>",
		Short: "Reviews of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			reviews, err := a.catalog.Reviews(cmd.Context(), id, page, limit)
			if err != nil {
				return a.fail(err, fmt.Sprintf("retry with: booky reviews %d --page %d", id, max(page, constants.DefaultPage)))
			}
			a.printReviews(reviews)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", constants.DefaultPage, "page number")
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultReviewPageSize, "reviews per page")
	return cmd
}

func parseID(raw, kind string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %q", kind, raw)
	}
	return id, nil
}
