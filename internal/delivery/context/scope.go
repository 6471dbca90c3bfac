// Package context carries request-scoped values between the HTTP layer and the services.
package context

import (
	"context"
	"log/slog"

	"shopreg/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// HeaderXRequestID carries the request id in both directions.
const HeaderXRequestID = echo.HeaderXRequestID

type scopeKey int

const (
	requestIDKey scopeKey = iota
	loggerKey
	claimsKey
)

// Keys on echo.Context, namespaced so handlers cannot clash with them.
const (
	echoRequestIDKey = "shopreg.request_id"
	echoClaimsKey    = "shopreg.claims"
)

// BindRequestID records requestID on c and echoes it on the response.
// The request context gains the id and a logger annotated with it.
func BindRequestID(c echo.Context, requestID string, base *slog.Logger) {
	c.Set(echoRequestIDKey, requestID)
	c.Response().Header().Set(HeaderXRequestID, requestID)

	ctx := WithRequestID(c.Request().Context(), requestID)
	ctx = context.WithValue(ctx, loggerKey, base.With(slog.String("request_id", requestID)))
	c.SetRequest(c.Request().WithContext(ctx))
}

// WithRequestID attaches requestID to ctx for work started outside an HTTP request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the id bound to c, or "" when none was bound.
func RequestID(c echo.Context) string {
	id, _ := c.Get(echoRequestIDKey).(string)

	return id
}

// RequestIDFrom returns the id carried by ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

// Logger returns the request-scoped logger carried by ctx, or fallback.
func Logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// BindClaims records verified token claims on c and on its request context.
func BindClaims(c echo.Context, claims *service.Claims) {
	c.Set(echoClaimsKey, claims)
	c.SetRequest(c.Request().WithContext(context.WithValue(c.Request().Context(), claimsKey, claims)))
}

// Claims returns the claims bound to c, or nil.
func Claims(c echo.Context) *service.Claims {
	claims, _ := c.Get(echoClaimsKey).(*service.Claims)

	return claims
}

// ClaimsFrom returns the claims carried by ctx, or nil.
func ClaimsFrom(ctx context.Context) *service.Claims {
	claims, _ := ctx.Value(claimsKey).(*service.Claims)

	return claims
}
