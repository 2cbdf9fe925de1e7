package service

import (
	"context"
	"fmt"
	"math"

	"github.com/booky-next/internal/apiclient"
	"github.com/booky-next/internal/constants"
)

// CatalogGateway 目录类只读接口
type CatalogGateway interface {
	Books(ctx context.Context, page, limit int) (*apiclient.BookPage, error)
	RecommendedBooks(ctx context.Context, page, limit int) ([]apiclient.Book, error)
	BookDetail(ctx context.Context, id int) (*apiclient.Book, error)
	BooksByAuthor(ctx context.Context, authorID int) ([]apiclient.Book, error)
	Categories(ctx context.Context) ([]apiclient.CategoryRecord, error)
	Authors(ctx context.Context) ([]apiclient.Author, error)
	Reviews(ctx context.Context, bookID, page, limit int) ([]apiclient.Review, error)
	Profile(ctx context.Context) (*apiclient.Profile, error)
	MyLoans(ctx context.Context, page, limit int) ([]apiclient.Loan, error)
}

// HomeView 首页数据
type HomeView struct {
	Categories []apiclient.CategoryRecord
	Books      []apiclient.Book
	Authors    []apiclient.Author
}

// BookDetailView 详情页数据
type BookDetailView struct {
	Book        *apiclient.Book
	Category    Category
	Reviews     []apiclient.Review
	Recommended []apiclient.Book
}

// ProfileView 个人页数据
type ProfileView struct {
	Profile *apiclient.Profile
	Loans   []apiclient.Loan
}

// CatalogService 浏览类页面的数据聚合
type CatalogService struct {
	gateway CatalogGateway
}

// NewCatalogService 创建目录服务
func NewCatalogService(gateway CatalogGateway) *CatalogService {
	return &CatalogService{gateway: gateway}
}

// Home 分类、推荐图书、作者
func (s *CatalogService) Home(ctx context.Context) (*HomeView, error) {
	categories, err := s.gateway.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	books, err := s.gateway.RecommendedBooks(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load recommended books: %w", err)
	}
	authors, err := s.gateway.Authors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	return &HomeView{Categories: categories, Books: books, Authors: authors}, nil
}

// Books 分页图书
func (s *CatalogService) Books(ctx context.Context, page, limit int) (*apiclient.BookPage, error) {
	page, limit = normalizePage(page, limit, constants.DefaultBookPageSize)
	return s.gateway.Books(ctx, page, limit)
}

// BookDetail 详情、首页评论、推荐
func (s *CatalogService) BookDetail(ctx context.Context, id int) (*BookDetailView, error) {
	book, err := s.gateway.BookDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load book %d: %w", id, err)
	}
	if book == nil {
		return nil, fmt.Errorf("book %d not found", id)
	}
	category, err := ParseCategory(book.Category)
	if err != nil {
		category = Category{}
	}
	reviews, err := s.gateway.Reviews(ctx, id, constants.DefaultPage, constants.DefaultReviewPageSize)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	recommended, err := s.gateway.RecommendedBooks(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}
	return &BookDetailView{Book: book, Category: category, Reviews: reviews, Recommended: recommended}, nil
}

// CartInputFromBook 详情页加入购物车的参数
func CartInputFromBook(book *apiclient.Book) CartItemInput {
	if book == nil {
		return CartItemInput{}
	}
	category, err := ParseCategory(book.Category)
	if err != nil {
		category = Category{}
	}
	return CartItemInput{
		BookID:       book.ID,
		BookName:     book.Title,
		CategoryName: category,
		AuthorName:   book.Author.Name,
		BookImage:    book.ImageURL(),
	}
}

// BooksByAuthor 作者的图书
func (s *CatalogService) BooksByAuthor(ctx context.Context, authorID int) ([]apiclient.Book, error) {
	return s.gateway.BooksByAuthor(ctx, authorID)
}

// Authors 作者列表
func (s *CatalogService) Authors(ctx context.Context) ([]apiclient.Author, error) {
	return s.gateway.Authors(ctx)
}

// Categories 分类列表
func (s *CatalogService) Categories(ctx context.Context) ([]apiclient.CategoryRecord, error) {
	return s.gateway.Categories(ctx)
}

// Reviews 评论分页
func (s *CatalogService) Reviews(ctx context.Context, bookID, page, limit int) ([]apiclient.Review, error) {
	page, limit = normalizePage(page, limit, constants.DefaultReviewPageSize)
	return s.gateway.Reviews(ctx, bookID, page, limit)
}

// Profile 个人资料与借阅记录
func (s *CatalogService) Profile(ctx context.Context) (*ProfileView, error) {
	profile, err := s.gateway.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile load failed: %w", err)
	}
	loans, err := s.gateway.MyLoans(ctx, constants.DefaultPage, constants.DefaultLoanPageSize)
	if err != nil {
		return nil, fmt.Errorf("loans load failed: %w", err)
	}
	return &ProfileView{Profile: profile, Loans: loans}, nil
}

// MyLoans 借阅记录分页
func (s *CatalogService) MyLoans(ctx context.Context, page, limit int) ([]apiclient.Loan, error) {
	page, limit = normalizePage(page, limit, constants.DefaultLoanPageSize)
	return s.gateway.MyLoans(ctx, page, limit)
}

// BookFilter 分类页筛选条件，Categories 为空表示不限，Rating 为 0 表示不限
type BookFilter struct {
	Categories []string
	Rating     int
}

// FilterBooks 分类名任一匹配且评分向下取整等于所选评分
func FilterBooks(books []apiclient.Book, filter BookFilter) []apiclient.Book {
	allowed := make(map[string]struct{}, len(filter.Categories))
	for _, name := range filter.Categories {
		allowed[name] = struct{}{}
	}
	out := make([]apiclient.Book, 0, len(books))
	for _, book := range books {
		if len(allowed) > 0 {
			category, err := ParseCategory(book.Category)
			if err != nil {
				continue
			}
			if _, ok := allowed[category.DisplayName()]; !ok {
				continue
			}
		}
		if filter.Rating > 0 && int(math.Floor(book.Rating)) != filter.Rating {
			continue
		}
		out = append(out, book)
	}
	return out
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = constants.DefaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}
