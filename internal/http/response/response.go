package response

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构（BFF 自身接口使用）
type Response struct {
	StatusCode int         `json:"status_code"` // 业务状态码
	Msg        string      `json:"msg"`         // 提示消息
	Data       interface{} `json:"data"`        // 数据内容
}

// PageResponse 分页响应结构
type PageResponse struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// BuildPagination 根据总数计算分页信息
func BuildPagination(page, pageSize int, total int64) Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPage: totalPage}
}

// ErrorBody 代理层错误结构，与前端约定的 {error: ...} 保持一致
type ErrorBody struct {
	Error interface{} `json:"error"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: CodeOK,
		Msg:        "success",
		Data:       data,
	})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		StatusCode: CodeOK,
		Msg:        "success",
		Data:       data,
		Pagination: pagination,
	})
}

// Error 错误响应
func Error(c *gin.Context, statusCode int, msg string) {
	c.JSON(http.StatusOK, Response{
		StatusCode: statusCode,
		Msg:        msg,
		Data:       attachRequestID(c, nil),
	})
}

// Relay 原样转发上游响应体
func Relay(c *gin.Context, status int, body []byte) {
	if status <= 0 {
		status = http.StatusOK
	}
	if len(body) == 0 {
		c.Status(status)
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

// ErrorPayload 以 {error: payload} 返回错误，payload 可以是文本或任意 JSON
func ErrorPayload(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, ErrorBody{Error: payload})
}

// RelayError 将上游非 2xx 响应包装为 {error: <上游载荷>}
// 上游返回合法 JSON 时原样嵌入，否则作为文本嵌入
func RelayError(c *gin.Context, status int, body []byte) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		ErrorPayload(c, status, MsgInternalServerError)
		return
	}
	if json.Valid([]byte(trimmed)) {
		ErrorPayload(c, status, json.RawMessage(trimmed))
		return
	}
	ErrorPayload(c, status, trimmed)
}

func attachRequestID(c *gin.Context, data interface{}) interface{} {
	requestID := ""
	if c != nil {
		if value, ok := c.Get("request_id"); ok {
			if id, ok := value.(string); ok {
				requestID = id
			}
		}
	}
	if requestID == "" {
		return data
	}
	if data == nil {
		return gin.H{"request_id": requestID}
	}
	switch v := data.(type) {
	case gin.H:
		if _, ok := v["request_id"]; !ok {
			v["request_id"] = requestID
		}
		return v
	case map[string]interface{}:
		if _, ok := v["request_id"]; !ok {
			v["request_id"] = requestID
		}
		return v
	default:
		return gin.H{
			"request_id": requestID,
			"data":       data,
		}
	}
}
