package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/booky-next/internal/apiclient"
	"github.com/booky-next/internal/service"
)

func (a *app) printTitle(title string) {
	fmt.Fprintln(a.out, a.styles.Title.Render(title))
}

func (a *app) printHeading(heading string) {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, a.styles.Heading.Render(heading))
}

func (a *app) printEmpty(text string) {
	fmt.Fprintln(a.out, a.styles.Muted.Render(text))
}

func (a *app) printBooks(books []apiclient.Book) {
	if len(books) == 0 {
		a.printEmpty("No books found.")
		return
	}
	for _, book := range books {
		a.printBookLine(a.out, book)
	}
}

func (a *app) printBookLine(w io.Writer, book apiclient.Book) {
	category := categoryName(book)
	fmt.Fprintf(w, "%s %s  %s  %s\n",
		a.styles.Accent.Render(fmt.Sprintf("#%d", book.ID)),
		book.Title,
		a.styles.Muted.Render(joinNonEmpty(" · ", category, book.Author.Name)),
		a.styles.Rating.Render(ratingText(book.Rating)),
	)
}

func (a *app) printAuthors(authors []apiclient.Author) {
	if len(authors) == 0 {
		a.printEmpty("No authors found.")
		return
	}
	for _, author := range authors {
		line := fmt.Sprintf("%s %s", a.styles.Accent.Render(fmt.Sprintf("#%d", author.ID)), author.Name)
		if author.BooksCount > 0 {
			line += a.styles.Muted.Render(fmt.Sprintf("  %d books", author.BooksCount))
		}
		fmt.Fprintln(a.out, line)
	}
}

func (a *app) printCategories(categories []apiclient.CategoryRecord) {
	if len(categories) == 0 {
		a.printEmpty("No categories found.")
		return
	}
	for _, category := range categories {
		fmt.Fprintf(a.out, "%s %s\n", a.styles.Accent.Render(fmt.Sprintf("#%d", category.ID)), category.Name)
	}
}

func (a *app) printReviews(reviews []apiclient.Review) {
	if len(reviews) == 0 {
		a.printEmpty("No reviews yet.")
		return
	}
	for _, review := range reviews {
		name := strings.TrimSpace(review.User.Name)
		if name == "" {
			name = "Anonymous"
		}
		fmt.Fprintf(a.out, "%s  %s\n", name, a.styles.Rating.Render(ratingText(review.Rating)))
		if comment := strings.TrimSpace(review.Comment); comment != "" {
			fmt.Fprintf(a.out, "  %s\n", comment)
		}
	}
}

func (a *app) printLoans(loans []apiclient.Loan) {
	if len(loans) == 0 {
		a.printEmpty("No borrowed books yet.")
		return
	}
	for _, loan := range loans {
		status := loan.Status
		if status == "" {
			status = "-"
		}
		title := loan.Book.Title
		if title == "" {
			title = fmt.Sprintf("Book #%d", loan.BookID)
		}
		fmt.Fprintf(a.out, "%s %s  %s  %s\n",
			a.styles.Accent.Render(fmt.Sprintf("#%d", loan.ID)),
			title,
			a.styles.Success.Render(status),
			a.styles.Muted.Render(joinNonEmpty(" · ",
				labelled("borrowed", displayDate(loan.BorrowedAt)),
				labelled("due", displayDate(loan.DueAt)))),
		)
	}
}

func (a *app) printCartItems(items []service.CartItem) {
	if len(items) == 0 {
		a.printEmpty("No books found.")
		return
	}
	for _, item := range items {
		fmt.Fprintf(a.out, "%s %s  %s\n",
			a.styles.Accent.Render(fmt.Sprintf("#%d", item.BookID)),
			item.BookName,
			a.styles.Muted.Render(joinNonEmpty(" · ", item.CategoryName.DisplayName(), item.AuthorName)),
		)
	}
}

// categoryName 分类可能是字符串或对象，统一走 Category.DisplayName
func categoryName(book apiclient.Book) string {
	category, err := service.ParseCategory(book.Category)
	if err != nil {
		return ""
	}
	return category.DisplayName()
}

func ratingText(rating float64) string {
	if rating <= 0 {
		return ""
	}
	return fmt.Sprintf("★ %.1f", math.Round(rating*10)/10)
}

// displayDate 后端时间戳只取日期部分
func displayDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) >= 10 {
		if d, err := service.ParseCalendarDate(trimmed[:10]); err == nil {
			return d.Long()
		}
	}
	return trimmed
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + " " + value
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, sep)
}
