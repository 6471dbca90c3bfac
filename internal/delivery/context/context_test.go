package context

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopreg/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newEchoContext() (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()

	return echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func TestBindRequestID(t *testing.T) {
	c, rec := newEchoContext()
	assert.Empty(t, RequestID(c))
	assert.Empty(t, RequestIDFrom(c.Request().Context()))

	var buf bytes.Buffer
	BindRequestID(c, "req-1", slog.New(slog.NewTextHandler(&buf, nil)))

	assert.Equal(t, "req-1", RequestID(c))
	assert.Equal(t, "req-1", RequestIDFrom(c.Request().Context()))
	assert.Equal(t, "req-1", rec.Header().Get(HeaderXRequestID))

	Logger(c.Request().Context(), nil).Info("scoped")
	assert.Contains(t, buf.String(), "request_id=req-1")
}

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "job-7")
	assert.Equal(t, "job-7", RequestIDFrom(ctx))
	assert.Nil(t, Logger(ctx, nil))
}

func TestLogger_Fallback(t *testing.T) {
	fallback := slog.New(slog.DiscardHandler)

	assert.Nil(t, Logger(context.Background(), nil))
	assert.Same(t, fallback, Logger(context.Background(), fallback))
}

func TestBindClaims(t *testing.T) {
	c, _ := newEchoContext()
	claims := &service.Claims{UserID: uuid.New(), Username: "alamin"}

	assert.Nil(t, Claims(c))
	assert.Nil(t, ClaimsFrom(c.Request().Context()))

	BindClaims(c, claims)
	assert.Same(t, claims, Claims(c))
	assert.Same(t, claims, ClaimsFrom(c.Request().Context()))
}

func TestScopeKeysDoNotCollide(t *testing.T) {
	c, _ := newEchoContext()

	// Plain string keys used by other code must not shadow bound values.
	c.Set("request_id", "spoofed")
	c.Set("claims", &service.Claims{Username: "spoofed"})
	assert.Empty(t, RequestID(c))
	assert.Nil(t, Claims(c))
}
