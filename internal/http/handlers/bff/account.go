package bff

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/http/handlers/shared"
	"github.com/booky-next/internal/http/response"
	"github.com/booky-next/internal/proxy"

	"github.com/gin-gonic/gin"
)

const (
	msgAuthorizationRequired = "Authorization header is required"
	msgInvalidJSONBody       = "Invalid JSON body"
	maxRequestBodySize       = 1 << 20
)

// loginBody 登录只转发邮箱与密码
type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GetProfile 当前用户资料
func (h *Handler) GetProfile(c *gin.Context) {
	auth, ok := requireAuthorization(c)
	if !ok {
		return
	}
	h.forward(c, proxy.Request{Endpoint: proxy.EndpointProfile, Authorization: auth})
}

// GetMyLoans 当前用户借阅记录
func (h *Handler) GetMyLoans(c *gin.Context) {
	auth, ok := requireAuthorization(c)
	if !ok {
		return
	}
	page, limit := shared.QueryPagination(c, constants.DefaultLoanPageSize)
	h.forward(c, proxy.Request{
		Endpoint:      proxy.EndpointMyLoans,
		Query:         pageQuery(page, limit),
		Authorization: auth,
	})
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	raw, ok := readJSONBody(c)
	if !ok {
		return
	}
	var body loginBody
	if err := json.Unmarshal(raw, &body); err != nil {
		response.ErrorPayload(c, http.StatusBadRequest, msgInvalidJSONBody)
		return
	}
	payload, err := json.Marshal(body)
	if err != nil {
		shared.RespondProxyError(c, http.StatusInternalServerError, response.MsgInternalServerError, err)
		return
	}
	h.forward(c, proxy.Request{Endpoint: proxy.EndpointLogin, Method: http.MethodPost, Body: payload})
}

// Register 注册，请求体原样转发
func (h *Handler) Register(c *gin.Context) {
	raw, ok := readJSONBody(c)
	if !ok {
		return
	}
	h.forward(c, proxy.Request{Endpoint: proxy.EndpointRegister, Method: http.MethodPost, Body: raw})
}

func requireAuthorization(c *gin.Context) (string, bool) {
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	if auth == "" {
		response.ErrorPayload(c, http.StatusUnauthorized, msgAuthorizationRequired)
		return "", false
	}
	return auth, true
}

// readJSONBody 读取并校验 JSON 请求体
func readJSONBody(c *gin.Context) ([]byte, bool) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBodySize))
	if err != nil {
		shared.RespondProxyError(c, http.StatusBadRequest, msgInvalidJSONBody, err)
		return nil, false
	}
	if !json.Valid(raw) {
		response.ErrorPayload(c, http.StatusBadRequest, msgInvalidJSONBody)
		return nil, false
	}
	return raw, true
}
