package shared

import (
	"strconv"
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"

	"github.com/gin-gonic/gin"
)

// NormalizePagination 归一化分页参数。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// QueryPagination 读取 page / page_size 查询参数
func QueryPagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return NormalizePagination(page, pageSize)
}

// RespondPage 分页成功响应
func RespondPage(c *gin.Context, data interface{}, page, pageSize int, total int64) {
	response.SuccessWithPage(c, data, response.BuildPagination(page, pageSize, total))
}

// ParseIDParam 解析路径中的正整数 ID，失败时直接响应
func ParseIDParam(c *gin.Context, name, invalidKey string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, invalidKey, err)
		return 0, false
	}
	return uint(id), true
}

// ParseOptionalUint 解析可选的正整数（空串返回 nil）
func ParseOptionalUint(raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return nil, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	id := uint(value)
	return &id, nil
}

// ParseOptionalBool 解析可选布尔（空串返回 nil）
func ParseOptionalBool(raw string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// ParseDateNullable 解析 YYYY-MM-DD（业务时区）或 RFC3339
func ParseDateNullable(raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
