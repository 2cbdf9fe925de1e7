package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/booky-next/internal/config"
)

var (
	ErrBaseURLInvalid   = errors.New("upstream base url invalid")
	ErrEndpointUnknown  = errors.New("upstream endpoint unknown")
	ErrRequestFailed    = errors.New("upstream request failed")
	ErrResponseTooLarge = errors.New("upstream response too large")
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 8 << 20
	idPlaceholder   = ":id"
)

// Endpoint 上游接口标识
type Endpoint string

// 上游接口
const (
	EndpointBooks         Endpoint = "books"
	EndpointRecommendBook Endpoint = "recommend_books"
	EndpointBookDetail    Endpoint = "book_detail"
	EndpointBookByAuthor  Endpoint = "book_by_author"
	EndpointBookReview    Endpoint = "book_review"
	EndpointCategories    Endpoint = "categories"
	EndpointAuthors       Endpoint = "authors"
	EndpointProfile       Endpoint = "profile"
	EndpointMyLoans       Endpoint = "my_loans"
	EndpointLogin         Endpoint = "login"
	EndpointRegister      Endpoint = "register"
	EndpointPostLoan      Endpoint = "post_loan"
)

// Request 转发请求
type Request struct {
	Endpoint      Endpoint
	Method        string
	ID            string     // 替换路径中的 :id
	Query         url.Values // 查询参数
	Body          []byte     // JSON 请求体
	Authorization string     // 原样转发的 Authorization 头
	RequestID     string
}

// Result 上游响应
type Result struct {
	Status int
	Body   []byte
}

// OK 判断是否为 2xx
func (r *Result) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Forwarder 上游转发接口
type Forwarder interface {
	Do(ctx context.Context, req Request) (*Result, error)
}

// Upstream 后端 REST API 转发器
type Upstream struct {
	baseURL   string
	endpoints map[Endpoint]string
	http      *http.Client
}

// New 创建转发器，httpClient 为空时按配置超时创建
func New(cfg config.UpstreamConfig, httpClient *http.Client) (*Upstream, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURLInvalid, cfg.BaseURL)
	}
	if httpClient == nil {
		timeout := defaultTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Upstream{
		baseURL:   base,
		endpoints: endpointTable(cfg.Endpoints),
		http:      httpClient,
	}, nil
}

func endpointTable(e config.UpstreamEndpoints) map[Endpoint]string {
	return map[Endpoint]string{
		EndpointBooks:         e.Books,
		EndpointRecommendBook: e.RecommendBook,
		EndpointBookDetail:    e.BookDetail,
		EndpointBookByAuthor:  e.BookByAuthor,
		EndpointBookReview:    e.BookReview,
		EndpointCategories:    e.Categories,
		EndpointAuthors:       e.Authors,
		EndpointProfile:       e.Profile,
		EndpointMyLoans:       e.MyLoans,
		EndpointLogin:         e.Login,
		EndpointRegister:      e.Register,
		EndpointPostLoan:      e.PostLoan,
	}
}

// ResolveURL 生成上游完整地址
func (u *Upstream) ResolveURL(endpoint Endpoint, id string, query url.Values) (string, error) {
	path := strings.TrimSpace(u.endpoints[endpoint])
	if path == "" {
		return "", fmt.Errorf("%w: %s", ErrEndpointUnknown, endpoint)
	}
	if strings.Contains(path, idPlaceholder) {
		path = strings.ReplaceAll(path, idPlaceholder, url.PathEscape(strings.TrimSpace(id)))
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := u.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target, nil
}

// Do 转发请求；仅在拿不到上游响应时返回 error，非 2xx 通过 Result.Status 表达
func (u *Upstream) Do(ctx context.Context, req Request) (*Result, error) {
	target, err := u.ResolveURL(req.Endpoint, req.ID, req.Query)
	if err != nil {
		return nil, err
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	httpReq.Header.Set("Accept", "*/*")
	httpReq.Header.Set("Content-Type", "application/json")
	if auth := strings.TrimSpace(req.Authorization); auth != "" {
		httpReq.Header.Set("Authorization", auth)
	}
	if req.RequestID != "" {
		httpReq.Header.Set("X-Request-ID", req.RequestID)
	}

	resp, err := u.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if len(payload) > maxResponseSize {
		return nil, ErrResponseTooLarge
	}
	return &Result{Status: resp.StatusCode, Body: payload}, nil
}
