package bff

import (
	"net/http"
	"strings"

	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/http/handlers/shared"
	"github.com/booky-next/internal/http/response"
	"github.com/booky-next/internal/proxy"

	"github.com/gin-gonic/gin"
)

// 参数校验错误文案
const (
	msgBookIDRequired   = "Book ID is required"
	msgAuthorIDRequired = "Author ID is required"
)

// reviewValidationError 评论接口的校验错误结构与其他接口不同，保持原有形状
type reviewValidationError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GetBooks 图书列表
func (h *Handler) GetBooks(c *gin.Context) {
	page, limit := shared.QueryPagination(c, constants.DefaultBookPageSize)
	h.forwardCached(c, proxy.Request{
		Endpoint: proxy.EndpointBooks,
		Query:    pageQuery(page, limit),
	})
}

// GetRecommendBooks 推荐图书
func (h *Handler) GetRecommendBooks(c *gin.Context) {
	page, limit := shared.QueryPagination(c, constants.DefaultRecommendPageSize)
	h.forwardCached(c, proxy.Request{
		Endpoint: proxy.EndpointRecommendBook,
		Query:    pageQuery(page, limit),
	})
}

// GetBookDetail 图书详情
func (h *Handler) GetBookDetail(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		response.ErrorPayload(c, http.StatusBadRequest, msgBookIDRequired)
		return
	}
	h.forwardCached(c, proxy.Request{Endpoint: proxy.EndpointBookDetail, ID: id})
}

// GetBooksByAuthor 作者的图书
func (h *Handler) GetBooksByAuthor(c *gin.Context) {
	authorID := strings.TrimSpace(c.Query("authorId"))
	if authorID == "" {
		response.ErrorPayload(c, http.StatusBadRequest, msgAuthorIDRequired)
		return
	}
	h.forwardCached(c, proxy.Request{Endpoint: proxy.EndpointBookByAuthor, ID: authorID})
}

// GetCategories 分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	h.forwardCached(c, proxy.Request{Endpoint: proxy.EndpointCategories})
}

// GetAuthors 作者列表
func (h *Handler) GetAuthors(c *gin.Context) {
	h.forwardCached(c, proxy.Request{Endpoint: proxy.EndpointAuthors})
}

// GetBookReviews 图书评论（不缓存，评论需要及时可见）
func (h *Handler) GetBookReviews(c *gin.Context) {
	bookID := strings.TrimSpace(c.Query("bookId"))
	if bookID == "" {
		response.ErrorPayload(c, http.StatusBadRequest, reviewValidationError{Success: false, Message: msgBookIDRequired})
		return
	}
	page, limit := shared.QueryPagination(c, constants.DefaultReviewPageSize)
	h.forward(c, proxy.Request{
		Endpoint: proxy.EndpointBookReview,
		ID:       bookID,
		Query:    pageQuery(page, limit),
	})
}
