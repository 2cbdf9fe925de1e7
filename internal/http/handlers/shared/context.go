package shared

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextKeyRequestID = "request_id"
	ContextKeyUserID    = "user_id"
)

// GetContextString 从上下文读取字符串值，不存在或类型不符时返回空串。
func GetContextString(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	value, exists := c.Get(key)
	if !exists {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

// GetRequestID 读取请求 ID
func GetRequestID(c *gin.Context) string {
	return GetContextString(c, ContextKeyRequestID)
}

// GetUserID 读取令牌中窥探到的用户 ID（未校验签名，仅用于日志与审计）
func GetUserID(c *gin.Context) string {
	return GetContextString(c, ContextKeyUserID)
}
