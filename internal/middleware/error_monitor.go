package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashyenugu/NeonGram/internal/errors"
)

// ErrorMonitor 收集请求处理中产生的应用错误
type ErrorMonitor struct {
	analytics *errors.ErrorAnalytics
}

func NewErrorMonitor() *ErrorMonitor {
	return &ErrorMonitor{
		analytics: errors.NewErrorAnalytics(),
	}
}

func (m *ErrorMonitor) Stats() map[string]interface{} {
	return m.analytics.GetStats()
}

func ErrorMonitorMiddleware(monitor *ErrorMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			userID := c.GetInt("user_id")
			for _, e := range c.Errors {
				traced := errors.NewTracedError(e.Err, errors.ErrorContext{
					UserID: userID,
					Path:   c.Request.URL.Path,
					Method: c.Request.Method,
				})
				monitor.analytics.Record(traced)

				if appErr, ok := e.Err.(*errors.AppError); ok {
					zap.L().Error("请求处理错误",
						zap.Int("error_code", int(appErr.Code)),
						zap.String("error_message", appErr.Message),
						zap.Error(appErr.Err),
						zap.String("path", c.Request.URL.Path),
						zap.String("method", c.Request.Method))
				}
			}
		}
	}
}
