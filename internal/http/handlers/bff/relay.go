package bff

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/booky-next/internal/http/handlers/shared"
	"github.com/booky-next/internal/http/response"
	"github.com/booky-next/internal/proxy"

	"github.com/gin-gonic/gin"
)

const cacheHeader = "X-Cache"

// cachedResponse 缓存的上游成功响应
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// forward 转发请求并按约定写回响应，返回上游结果（传输失败时为 nil）
func (h *Handler) forward(c *gin.Context, req proxy.Request) *proxy.Result {
	if h.Container == nil || h.Upstream == nil {
		shared.RespondProxyError(c, response.CodeInternal, response.MsgInternalServerError, errors.New("upstream not configured"))
		return nil
	}
	req.RequestID = shared.GetRequestID(c)
	result, err := h.Upstream.Do(c.Request.Context(), req)
	if err != nil {
		respondWithMappedError(c, err, upstreamErrorRules)
		return nil
	}
	if !result.OK() {
		shared.RequestLog(c).Warnw("proxy_upstream_rejected",
			"endpoint", req.Endpoint,
			"status", result.Status,
		)
		response.RelayError(c, result.Status, result.Body)
		return result
	}
	response.Relay(c, result.Status, result.Body)
	return result
}

// forwardCached 公共只读接口：优先读缓存，成功响应回填缓存
func (h *Handler) forwardCached(c *gin.Context, req proxy.Request) {
	if h.cacheTTL <= 0 || h.responses == nil || !h.responses.Enabled() {
		h.forward(c, req)
		return
	}
	key := proxyCacheKey(req)
	var cached cachedResponse
	if hit, err := h.responses.GetJSON(c.Request.Context(), key, &cached); err == nil && hit {
		c.Header(cacheHeader, "HIT")
		response.Relay(c, cached.Status, cached.Body)
		return
	} else if err != nil {
		shared.RequestLog(c).Warnw("proxy_cache_read_failed", "key", key, "error", err)
	}

	c.Header(cacheHeader, "MISS")
	result := h.forward(c, req)
	if !result.OK() || !json.Valid(result.Body) {
		return
	}
	entry := cachedResponse{Status: result.Status, Body: json.RawMessage(result.Body)}
	if err := h.responses.SetJSON(c.Request.Context(), key, entry, h.cacheTTL); err != nil {
		shared.RequestLog(c).Warnw("proxy_cache_write_failed", "key", key, "error", err)
	}
}

func proxyCacheKey(req proxy.Request) string {
	parts := []string{"proxy", string(req.Endpoint)}
	if id := strings.TrimSpace(req.ID); id != "" {
		parts = append(parts, url.PathEscape(id))
	}
	if encoded := req.Query.Encode(); encoded != "" {
		parts = append(parts, encoded)
	}
	return strings.Join(parts, ":")
}

func pageQuery(page, limit int) url.Values {
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
}
