package util

import (
	"errors"
	"net/http"
	"seclink_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	InternalServerError(c)
}

var errorStatus = []struct {
	category error
	status   int
}{
	{ErrValidation, http.StatusBadRequest},
	{ErrUnauthenticated, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrNotFound, http.StatusNotFound},
	{ErrConflict, http.StatusUnprocessableEntity},
}

// StatusFor 返回错误对应的 HTTP 状态码，未分类的错误视为 500
func StatusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.category) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// HandleError 按错误分类输出响应；内部错误只记录日志，不向调用方暴露细节
func HandleError(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.category) {
			Error(c, e.status, publicMessage(err, e.category))
			return
		}
	}
	LogInternalError(c, err)
}

func publicMessage(err, category error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+category.Error())
	if msg == "" {
		return category.Error()
	}
	return msg
}
