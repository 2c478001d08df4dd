package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/dailyreport-gin/internal/report"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
		}
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// domainError 将领域错误映射为 HTTP 响应,未识别的错误返回 500
func domainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, report.ErrNotFound):
		Error(c, http.StatusNotFound, "report not found", err.Error())
	case errors.Is(err, report.ErrDuplicateReport):
		Error(c, http.StatusConflict, "report already exists for this date", err.Error())
	case errors.Is(err, report.ErrAlreadyVerified):
		Error(c, http.StatusConflict, "report has already been verified", err.Error())
	case errors.Is(err, report.ErrInvalidState):
		Error(c, http.StatusConflict, "report is verified and immutable", err.Error())
	case errors.Is(err, report.ErrUpload):
		Error(c, http.StatusBadRequest, "attachment upload failed", err.Error())
	case errors.Is(err, report.ErrInvalidURL), errors.Is(err, report.ErrIndexOutOfRange):
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
	default:
		Error(c, http.StatusInternalServerError, "internal server error", err.Error())
	}
}
