package bff

import (
	"errors"
	"strings"

	"github.com/booky-next/internal/http/handlers/shared"
	"github.com/booky-next/internal/http/response"
	"github.com/booky-next/internal/proxy"

	"github.com/gin-gonic/gin"
)

// mappedProxyError 定义上游调用错误到 {error} 响应的映射关系
type mappedProxyError struct {
	target  error
	code    int
	message string
}

// upstreamErrorRules 配置类错误不把内部地址暴露给前端
var upstreamErrorRules = []mappedProxyError{
	{target: proxy.ErrBaseURLInvalid, code: response.CodeInternal, message: "Upstream is not configured"},
	{target: proxy.ErrEndpointUnknown, code: response.CodeInternal, message: "Upstream endpoint is not configured"},
	{target: proxy.ErrResponseTooLarge, code: response.CodeBadGateway, message: "Upstream response too large"},
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedProxyError) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			shared.RespondProxyError(c, rule.code, rule.message, err)
			return
		}
	}
	shared.RespondProxyError(c, response.CodeInternal, transportMessage(err), err)
}

// transportMessage 传输失败时返回给前端的消息
func transportMessage(err error) string {
	if err == nil {
		return response.MsgInternalServerError
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return response.MsgInternalServerError
	}
	return msg
}
