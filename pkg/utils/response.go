package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一成功响应信封
// 错误响应由HTTP中间件按业务错误码统一生成
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}
