package shared

import (
	"github.com/booky-next/internal/http/response"
	"github.com/booky-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	kv := make([]interface{}, 0, 4)
	if id := GetRequestID(c); id != "" {
		kv = append(kv, "request_id", id)
	}
	if userID := GetUserID(c); userID != "" {
		kv = append(kv, "user_id", userID)
	}
	return logger.SW(kv...)
}

// RespondError 以信封格式返回 AppError，非 AppError 统一为内部错误。
func RespondError(c *gin.Context, err error) {
	appErr := response.AsAppError(err)
	if appErr.Err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", appErr.Err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondErrorWithMsg 返回信封格式的错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	RespondError(c, response.WrapError(code, msg, err))
}

// RespondProxyError 返回 {error: msg} 格式的错误，状态码即 HTTP 状态。
func RespondProxyError(c *gin.Context, status int, payload interface{}, err error) {
	if err != nil {
		RequestLog(c).Errorw("proxy_handler_error",
			"status", status,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	response.ErrorPayload(c, status, payload)
}
