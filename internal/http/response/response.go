package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务状态码；HTTP 状态恒为 200，客户端以 status_code 判断结果
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

// Envelope 响应外层结构，列表接口额外携带 pagination
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// BuildPagination pageSize <= 0 时总页数为 0
func BuildPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return p
}

func write(c *gin.Context, env Envelope) {
	c.JSON(http.StatusOK, env)
}

// Success 成功
func Success(c *gin.Context, data interface{}) {
	write(c, Envelope{StatusCode: CodeOK, Msg: "success", Data: data})
}

// SuccessWithMsg 成功但带提示（例如无变化的警告）
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	write(c, Envelope{StatusCode: CodeOK, Msg: msg, Data: data})
}

// SuccessWithPage 列表
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	write(c, Envelope{StatusCode: CodeOK, Msg: "success", Data: data, Pagination: &pagination})
}

// Error 失败；data 中附带 request_id 便于排查
func Error(c *gin.Context, statusCode int, msg string) {
	ErrorWithData(c, statusCode, msg, nil)
}

// ErrorWithData 失败并附带数据
func ErrorWithData(c *gin.Context, statusCode int, msg string, data interface{}) {
	write(c, Envelope{StatusCode: statusCode, Msg: msg, Data: withRequestID(c, data)})
}

// Unauthorized 401
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

// Forbidden 403
func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}

func withRequestID(c *gin.Context, data interface{}) interface{} {
	if c == nil {
		return data
	}
	id := c.GetString("request_id")
	if id == "" {
		return data
	}
	if data == nil {
		return gin.H{"request_id": id}
	}
	if h, ok := data.(gin.H); ok {
		if _, exists := h["request_id"]; !exists {
			h["request_id"] = id
		}
		return h
	}
	return gin.H{"request_id": id, "data": data}
}
