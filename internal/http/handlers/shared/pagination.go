package shared

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// NormalizePagination 归一化分页参数，pageSize 非法时使用 defaultSize。
func NormalizePagination(page, pageSize, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if defaultSize <= 0 {
		defaultSize = 20
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// QueryPagination 读取 page/limit 查询参数并归一化。
func QueryPagination(c *gin.Context, defaultSize int) (int, int) {
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page")))
	limit, _ := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	return NormalizePagination(page, limit, defaultSize)
}
