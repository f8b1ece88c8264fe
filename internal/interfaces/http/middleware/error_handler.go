package middleware

import (
	"net/http"

	apperrors "github.com/franklioxygen/MyTube-sub001/internal/shared/errors"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler 统一错误处理中间件
// 捕获handler中通过c.Error设置的错误,按业务错误码转换为HTTP响应
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if serviceErr, ok := apperrors.AsServiceError(err); ok {
			status := mapErrorCodeToHTTPStatus(serviceErr.Code)
			if status >= http.StatusInternalServerError {
				logger.Error("request failed", "method", c.Request.Method,
					"path", c.Request.URL.Path, "error", err)
			}
			body := gin.H{
				"code":    serviceErr.Code,
				"message": serviceErr.Message,
			}
			if len(serviceErr.Details) > 0 {
				body["details"] = serviceErr.Details
			}
			c.JSON(status, body)
			return
		}

		// 非业务错误一律500,细节只进日志不出响应
		logger.Error("unhandled error", "method", c.Request.Method,
			"path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    apperrors.ErrorCodeInternalError,
			"message": "internal server error",
		})
	}
}

// mapErrorCodeToHTTPStatus 将业务错误码映射到HTTP状态码
func mapErrorCodeToHTTPStatus(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrorCodeInvalidRequest:
		return http.StatusBadRequest
	case apperrors.ErrorCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorCodeConflict:
		return http.StatusConflict
	case apperrors.ErrorCodeCancelled:
		return http.StatusConflict
	case apperrors.ErrorCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrorCodeTimeout:
		return http.StatusRequestTimeout
	case apperrors.ErrorCodeRateLimit:
		return http.StatusTooManyRequests
	case apperrors.ErrorCodeQuotaExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Recovery 恢复中间件,捕获panic并转换为500错误
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered in handler", "method", c.Request.Method,
					"path", c.Request.URL.Path, "panic", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    apperrors.ErrorCodeInternalError,
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
