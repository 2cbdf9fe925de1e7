package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/logger"
)

// BFF 路由
const (
	PathBooks        = "/api/get-book"
	PathRecommend    = "/api/get-recommend-book"
	PathBookDetail   = "/api/get-book-detail"
	PathBookByAuthor = "/api/get-book-by-author"
	PathCategories   = "/api/get-categories"
	PathAuthors      = "/api/get-author"
	PathReviews      = "/api/get-reviews-book"
	PathProfile      = "/api/get-profile"
	PathMyLoans      = "/api/get-my-loans"
	PathLogin        = "/api/login"
	PathRegister     = "/api/register"
	PathPostLoan     = "/api/post-loan-book"
)

const (
	defaultUserAgent  = "booky-cli/1.0"
	defaultTimeout    = 15 * time.Second
	maxErrorBodyBytes = 64 << 10
)

// SessionStore 令牌来源，收到 401 时清空会话
type SessionStore interface {
	Token() (string, error)
	ClearSession() error
}

// StatusError 非 2xx 响应
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// Client 访问 BFF 的 HTTP 客户端
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	session   SessionStore
}

// Options 客户端配置
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// HTTPClient 为空时按 Timeout 新建
	HTTPClient *http.Client
}

// New 创建客户端
func New(opts Options, session SessionStore) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: userAgent,
		session:   session,
	}, nil
}

// Books 分页图书
func (c *Client) Books(ctx context.Context, page, limit int) (*BookPage, error) {
	raw, err := c.Get(ctx, PathBooks, pageQuery(page, limit))
	if err != nil {
		return nil, err
	}
	result, err := ExtractObject[BookPage](raw, "")
	if err != nil {
		// data 可能直接是数组
		books, listErr := ExtractList[Book](raw, "books")
		if listErr != nil {
			return nil, err
		}
		return &BookPage{Books: books, Page: page, Limit: limit}, nil
	}
	if result == nil {
		return &BookPage{Books: []Book{}, Page: page, Limit: limit}, nil
	}
	if result.Books == nil {
		result.Books = []Book{}
	}
	return result, nil
}

// RecommendedBooks 推荐图书
func (c *Client) RecommendedBooks(ctx context.Context, page, limit int) ([]Book, error) {
	raw, err := c.Get(ctx, PathRecommend, pageQuery(page, limit))
	if err != nil {
		return nil, err
	}
	return ExtractList[Book](raw, "books")
}

// BookDetail 图书详情
func (c *Client) BookDetail(ctx context.Context, id int) (*Book, error) {
	raw, err := c.Get(ctx, PathBookDetail, url.Values{"id": {strconv.Itoa(id)}})
	if err != nil {
		return nil, err
	}
	return ExtractObject[Book](raw, "book")
}

// BooksByAuthor 作者的图书
func (c *Client) BooksByAuthor(ctx context.Context, authorID int) ([]Book, error) {
	raw, err := c.Get(ctx, PathBookByAuthor, url.Values{"authorId": {strconv.Itoa(authorID)}})
	if err != nil {
		return nil, err
	}
	return ExtractList[Book](raw, "books")
}

// Categories 全部分类
func (c *Client) Categories(ctx context.Context) ([]CategoryRecord, error) {
	raw, err := c.Get(ctx, PathCategories, nil)
	if err != nil {
		return nil, err
	}
	return ExtractList[CategoryRecord](raw, "categories")
}

// Authors 全部作者
func (c *Client) Authors(ctx context.Context) ([]Author, error) {
	raw, err := c.Get(ctx, PathAuthors, nil)
	if err != nil {
		return nil, err
	}
	return ExtractList[Author](raw, "authors")
}

// Reviews 图书评论
func (c *Client) Reviews(ctx context.Context, bookID, page, limit int) ([]Review, error) {
	query := pageQuery(page, limit)
	query.Set("bookId", strconv.Itoa(bookID))
	raw, err := c.Get(ctx, PathReviews, query)
	if err != nil {
		return nil, err
	}
	return ExtractList[Review](raw, "reviews")
}

// Profile 当前用户资料
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	raw, err := c.Get(ctx, PathProfile, nil)
	if err != nil {
		return nil, err
	}
	return ExtractObject[Profile](raw, "profile")
}

// MyLoans 当前用户借阅记录
func (c *Client) MyLoans(ctx context.Context, page, limit int) ([]Loan, error) {
	raw, err := c.Get(ctx, PathMyLoans, pageQuery(page, limit))
	if err != nil {
		return nil, err
	}
	return ExtractList[Loan](raw, "loans")
}

// Login 登录
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Post(ctx, PathLogin, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register 注册
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Post(ctx, PathRegister, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateLoan 提交一条借阅
func (c *Client) CreateLoan(ctx context.Context, req LoanRequest) (*Envelope, error) {
	var resp Envelope
	if err := c.Post(ctx, PathPostLoan, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get 发送 GET 请求并返回原始响应体
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	rel := &url.URL{Path: path}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	return c.doURL(ctx, http.MethodGet, rel, nil)
}

// Post 发送 JSON POST 请求，dest 非空时解码响应
func (c *Client) Post(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	raw, err := c.doURL(ctx, http.MethodPost, &url.URL{Path: path}, body)
	if err != nil {
		return err
	}
	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body []byte) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	reqURL := c.resolve(rel)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth := c.authorization(); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.clearSession(rel.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) > maxErrorBodyBytes {
			raw = raw[:maxErrorBodyBytes]
		}
		return nil, &StatusError{
			Method:     method,
			Path:       rel.Path,
			StatusCode: resp.StatusCode,
			Message:    ExtractMessage(raw),
			Body:       raw,
		}
	}
	return raw, nil
}

func (c *Client) resolve(rel *url.URL) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + rel.Path
	u.RawQuery = rel.RawQuery
	return u.String()
}

// authorization 统一为 "Bearer <jwt>"，兼容历史上未带前缀或重复前缀的存储值
func (c *Client) authorization() string {
	if c.session == nil {
		return ""
	}
	token, err := c.session.Token()
	if err != nil {
		logger.Warnw("apiclient_token_read_failed", "error", err)
		return ""
	}
	return NormalizeBearer(token)
}

func (c *Client) clearSession(path string) {
	if c.session == nil {
		return
	}
	if err := c.session.ClearSession(); err != nil {
		logger.Warnw("apiclient_session_clear_failed", "path", path, "error", err)
		return
	}
	logger.Infow("apiclient_session_cleared", "path", path)
}

// NormalizeBearer 规范化令牌，空令牌返回空串
func NormalizeBearer(token string) string {
	trimmed := strings.TrimSpace(token)
	for {
		lower := strings.ToLower(trimmed)
		if !strings.HasPrefix(lower, "bearer ") {
			break
		}
		trimmed = strings.TrimSpace(trimmed[len("bearer "):])
	}
	if trimmed == "" {
		return ""
	}
	return constants.BearerPrefix + trimmed
}

func pageQuery(page, limit int) url.Values {
	values := url.Values{}
	if page > 0 {
		values.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	return values
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
