// Package response 统一的 HTTP 响应包装
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 响应体
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success 200 成功响应
func Success(c *gin.Context, data any) {
	SuccessWithStatus(c, http.StatusOK, data)
}

// SuccessWithStatus 指定状态码的成功响应
func SuccessWithStatus(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Code: "OK", Message: "success", Data: data})
}

// ErrorWithStatus 错误响应并终止后续处理；code 为空时使用状态码文本
func ErrorWithStatus(c *gin.Context, status int, message, code string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, Response{Code: code, Message: message})
}
