package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ctxKey struct{}

// loggerKey is the key under which the request-scoped logger is stored in
// the echo context
const loggerKey = "logger"

// WithContext returns a context carrying the given logger
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, falling back to the global
// logger when none is set
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}

// ToEcho stores a request-scoped logger in the echo context and the
// underlying request context
func ToEcho(c echo.Context, l *zap.Logger) {
	c.Set(loggerKey, l)
	c.SetRequest(c.Request().WithContext(WithContext(c.Request().Context(), l)))
}

// FromEcho returns the request-scoped logger from the echo context
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(loggerKey).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}
