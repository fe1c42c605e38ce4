/*
 * @Description: 统一的 API 返回结构
 */
package response

import (
	"errors"
	"net/http"

	"github.com/binary-blogs/binary-blogs/pkg/constant"

	"github.com/gin-gonic/gin"
)

// Response 是统一的API返回结构体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// SuccessWithStatus 成功响应，但允许自定义 HTTP 状态码，例如 201 Created。
func SuccessWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// StatusFromError 将业务错误映射为 HTTP 状态码
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, constant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, constant.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, constant.ErrBadRequest), errors.Is(err, constant.ErrInvalidPublicID),
		errors.Is(err, constant.ErrInvalidSnapshot), errors.Is(err, constant.ErrUnsupportedVersion):
		return http.StatusBadRequest
	case errors.Is(err, constant.ErrUnauthorized), errors.Is(err, constant.ErrInvalidToken),
		errors.Is(err, constant.ErrSessionEnded):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// FailWithError 按错误类型选择状态码
func FailWithError(c *gin.Context, prefix string, err error) {
	code := StatusFromError(err)
	msg := err.Error()
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	Fail(c, code, msg)
}
