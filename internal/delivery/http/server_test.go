package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shopreg/config"
	deliverycontext "shopreg/internal/delivery/context"
	"shopreg/internal/delivery/http/middleware"
	"shopreg/internal/delivery/http/response"
	"shopreg/internal/delivery/http/router"
	"shopreg/internal/delivery/http/router/handler"
	"shopreg/internal/domain/service"
	"shopreg/internal/infra/auth"
	"shopreg/internal/infra/metrics"
	"shopreg/internal/infra/persistence/memory"
	"shopreg/internal/infra/pubsub"
	"shopreg/internal/infra/qrcode"
	"shopreg/internal/usecase/impl"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool                `json:"success"`
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

type accountData struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	ShopNames []string  `json:"shopNames"`
}

type shopData struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type userData struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	CreatedAt time.Time  `json:"createdAt"`
	ShopNames []shopData `json:"shopNames"`
}

// memoryLimiter counts attempts per key without expiry.
type memoryLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (l *memoryLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++

	return l.counts[key] <= limit, nil
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Env.ServiceName = "shopreg"
	cfg.SecretKey.Access = testSecret
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Auth = &config.AuthConfig{BcryptCost: 4}
	cfg.QRCode = &config.QRCodeConfig{Size: 128, BaseURL: "https://shops.example"}
	cfg.ApplyDefaults()

	return cfg
}

// newTestServer wires the full HTTP stack over the in-memory store.
func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *echo.Echo {
	t.Helper()

	cfg := newTestConfig()
	if mutate != nil {
		mutate(cfg)
	}
	logger := slog.New(slog.DiscardHandler)
	lc := fxtest.NewLifecycle(t)

	tokenSvc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)
	publisher, err := pubsub.NewEventPublisher(pubsub.PublisherParams{Lc: lc, Config: cfg, Logger: logger})
	require.NoError(t, err)

	m := metrics.New()
	userRepo := memory.NewUserRepository()

	authUsecase := impl.NewAuthService(impl.AuthServiceParams{
		UserRepo:       userRepo,
		Hasher:         auth.NewBcryptHasher(cfg),
		TokenService:   tokenSvc,
		EventPublisher: publisher,
		Metrics:        m,
		Config:         cfg,
		Logger:         logger,
	})
	shopUsecase := impl.NewShopService(impl.ShopServiceParams{
		UserRepo: userRepo,
		QRCode:   qrcode.NewQRCodeService(cfg),
		Logger:   logger,
	})

	return NewEcho(HTTPParams{
		Config:              cfg,
		Logger:              logger,
		ErrorMiddleware:     middleware.NewErrorMiddleware(logger),
		MetricsMiddleware:   middleware.NewMetricsMiddleware(m),
		RequestIDMiddleware: middleware.NewRequestIDMiddleware(logger),
		LoggerMiddleware:    middleware.NewLoggerMiddleware(logger, cfg),
		RouterParams: router.RouterParams{
			AuthHandler:         handler.NewAuthHandler(authUsecase),
			UserHandler:         handler.NewUserHandler(shopUsecase),
			AuthMiddleware:      middleware.NewAuthMiddleware(tokenSvc, cfg),
			RateLimitMiddleware: middleware.NewRateLimitMiddleware(&memoryLimiter{counts: map[string]int{}}, cfg, logger),
			Metrics:             m,
		},
	})
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec, env
}

func signup(t *testing.T, e *echo.Echo, username string, shops ...string) accountData {
	t.Helper()

	body, err := json.Marshal(map[string]any{"username": username, "password": "!1asdfgh", "shopNames": shops})
	require.NoError(t, err)

	rec, env := doJSON(t, e, http.MethodPost, "/api/signup", string(body), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data accountData
	require.NoError(t, json.Unmarshal(env.Data, &data))

	return data
}

func TestSignup(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := doJSON(t, e, http.MethodPost, "/api/signup",
		`{"username":"alamin","password":"!1asdfgh","shopNames":["a","b","c"]}`, "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.Code)
	assert.Equal(t, "User registered successfully", env.Message)
	assert.NotEmpty(t, rec.Header().Get(deliverycontext.HeaderXRequestID))

	var data accountData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEqual(t, uuid.Nil, data.ID)
	assert.Equal(t, "alamin", data.Username)
	assert.NotEmpty(t, data.Token)
	assert.False(t, data.CreatedAt.IsZero())
	assert.Nil(t, data.ShopNames, "signup does not echo shop names")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	assert.NotContains(t, raw, "password")
}

func TestSignup_Rejections(t *testing.T) {
	e := newTestServer(t, nil)
	signup(t, e, "alamin", "a", "b", "c")

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "username taken",
			body:        `{"username":"alamin","password":"!1asdfgh","shopNames":["x","y","z"]}`,
			wantStatus:  http.StatusConflict,
			wantCode:    "USERNAME_TAKEN",
			wantMessage: "Username already exists",
		},
		{
			name:        "shop names taken",
			body:        `{"username":"karim","password":"!1asdfgh","shopNames":["c","x","a"]}`,
			wantStatus:  http.StatusConflict,
			wantCode:    "SHOP_NAMES_TAKEN",
			wantMessage: "Shop names already exist: a, c",
		},
		{
			name:        "too few shops",
			body:        `{"username":"karim","password":"!1asdfgh","shopNames":["x","y"]}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    "VALIDATION_FAILED",
			wantMessage: "You must enter at least 3 shop names",
		},
		{
			name:        "weak password",
			body:        `{"username":"karim","password":"abcdefgh","shopNames":["x","y","z"]}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    "VALIDATION_FAILED",
			wantMessage: "Password must contain at least one number; Password must contain at least one special character",
		},
		{
			name:        "malformed json",
			body:        `{"username":`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    "INVALID_INPUT",
			wantMessage: "Request body is malformed",
		},
		{
			name:        "wrong json type",
			body:        `{"username":"karim","password":"!1asdfgh","shopNames":"x,y,z"}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    "INVALID_INPUT",
			wantMessage: "Request body is malformed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doJSON(t, e, http.MethodPost, "/api/signup", tt.body, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMessage, env.Message)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}

	// A rejected signup leaves the first account intact.
	rec, _ := doJSON(t, e, http.MethodPost, "/api/signin", `{"username":"karim","password":"!1asdfgh"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSignin(t *testing.T) {
	e := newTestServer(t, nil)
	created := signup(t, e, "alamin", "a", "b", "c")

	rec, env := doJSON(t, e, http.MethodPost, "/api/signin", `{"username":"alamin","password":"!1asdfgh"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User signed in successfully", env.Message)

	var data accountData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, created.ID, data.ID)
	assert.Equal(t, "alamin", data.Username)
	assert.Equal(t, []string{"a", "b", "c"}, data.ShopNames)

	claims := parseClaims(t, data.Token)
	assert.Equal(t, created.ID, claims.UserID)
	assert.InDelta(t, (30 * time.Minute).Seconds(), claims.ExpiresAt.Sub(claims.IssuedAt.Time).Seconds(), 1)

	_, env = doJSON(t, e, http.MethodPost, "/api/signin", `{"username":"alamin","password":"!1asdfgh","rememberMe":true}`, "")
	require.NoError(t, json.Unmarshal(env.Data, &data))
	claims = parseClaims(t, data.Token)
	assert.InDelta(t, (7 * 24 * time.Hour).Seconds(), claims.ExpiresAt.Sub(claims.IssuedAt.Time).Seconds(), 1)
}

func TestSignin_Rejections(t *testing.T) {
	e := newTestServer(t, nil)
	signup(t, e, "alamin", "a", "b", "c")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "unknown user", body: `{"username":"nobody","password":"!1asdfgh"}`, wantStatus: http.StatusNotFound, wantCode: "USER_NOT_FOUND"},
		{name: "username is case sensitive", body: `{"username":"Alamin","password":"!1asdfgh"}`, wantStatus: http.StatusNotFound, wantCode: "USER_NOT_FOUND"},
		{name: "wrong password", body: `{"username":"alamin","password":"!1asdfgx"}`, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "missing password", body: `{"username":"alamin"}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doJSON(t, e, http.MethodPost, "/api/signin", tt.body, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestUserLookup(t *testing.T) {
	e := newTestServer(t, nil)
	account := signup(t, e, "alamin", "a", "b", "c")
	userPath := "/api/user/" + account.ID.String()

	t.Run("missing token", func(t *testing.T) {
		rec, env := doJSON(t, e, http.MethodGet, userPath, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		rec, env := doJSON(t, e, http.MethodGet, userPath, "", expiredToken(t, account.ID))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_EXPIRED", env.Error.Code)
	})

	t.Run("forged token", func(t *testing.T) {
		rec, env := doJSON(t, e, http.MethodGet, userPath, "", "Bearer "+account.Token+"x")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_TOKEN", env.Error.Code)
	})

	for name, header := range map[string]string{"bearer": "Bearer " + account.Token, "bare": account.Token} {
		t.Run(name+" token", func(t *testing.T) {
			rec, env := doJSON(t, e, http.MethodGet, userPath, "", header)
			require.Equal(t, http.StatusOK, rec.Code)

			var data userData
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Equal(t, account.ID, data.ID)
			assert.Equal(t, "alamin", data.Username)
			require.Len(t, data.ShopNames, 3)
			names := make([]string, 0, 3)
			for _, shop := range data.ShopNames {
				assert.NotEqual(t, uuid.Nil, shop.ID)
				names = append(names, shop.Name)
			}
			assert.ElementsMatch(t, []string{"a", "b", "c"}, names)
		})
	}

	t.Run("unknown user", func(t *testing.T) {
		rec, env := doJSON(t, e, http.MethodGet, "/api/user/"+uuid.NewString(), "", account.Token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "USER_NOT_FOUND", env.Error.Code)
	})

	t.Run("malformed user id", func(t *testing.T) {
		rec, env := doJSON(t, e, http.MethodGet, "/api/user/not-a-uuid", "", account.Token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("shop matched case-insensitively", func(t *testing.T) {
		rec, env := doJSON(t, e, http.MethodGet, userPath+"/shops/B", "", account.Token)
		require.Equal(t, http.StatusOK, rec.Code)

		var data shopData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "b", data.Name)
	})

	t.Run("shop not owned", func(t *testing.T) {
		rec, env := doJSON(t, e, http.MethodGet, userPath+"/shops/zzz", "", account.Token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "SHOP_NOT_FOUND", env.Error.Code)
	})

	t.Run("shop qr code", func(t *testing.T) {
		rec, _ := doJSON(t, e, http.MethodGet, userPath+"/shops/a/qrcode", "", account.Token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
		assert.Equal(t, "https://shops.example/shop/a", rec.Header().Get("X-Shop-Url"))

		_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
		assert.NoError(t, err)
	})
}

func TestUserLookup_OwnershipEnforced(t *testing.T) {
	e := newTestServer(t, func(cfg *config.Config) {
		cfg.Auth.EnforceOwnership = true
	})
	alamin := signup(t, e, "alamin", "a", "b", "c")
	karim := signup(t, e, "karim", "x", "y", "z")

	rec, _ := doJSON(t, e, http.MethodGet, "/api/user/"+alamin.ID.String(), "", alamin.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := doJSON(t, e, http.MethodGet, "/api/user/"+alamin.ID.String(), "", karim.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestSignin_RateLimited(t *testing.T) {
	e := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = &config.RateLimitConfig{Enabled: true, Limit: 2, Window: time.Minute}
	})

	for range 2 {
		rec, _ := doJSON(t, e, http.MethodPost, "/api/signin", `{"username":"nobody","password":"x"}`, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec, env := doJSON(t, e, http.MethodPost, "/api/signin", `{"username":"nobody","password":"x"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func signinFrom(t *testing.T, e *echo.Echo, remoteAddr, forwardedFor string) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/signin", strings.NewReader(`{"username":"nobody","password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec.Code
}

func TestSignin_RateLimitIgnoresForwardedFor(t *testing.T) {
	e := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = &config.RateLimitConfig{Enabled: true, Limit: 2, Window: time.Minute}
	})

	statuses := make([]int, 0, 6)
	for i := range 6 {
		statuses = append(statuses, signinFrom(t, e, "203.0.113.7:5555", fmt.Sprintf("198.51.100.%d", i+1)))
	}

	assert.Equal(t, []int{
		http.StatusNotFound,
		http.StatusNotFound,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, statuses)
}

func TestSignin_RateLimitBehindTrustedProxy(t *testing.T) {
	e := newTestServer(t, func(cfg *config.Config) {
		cfg.HTTP.TrustedProxies = []string{"192.0.2.0/24"}
		cfg.RateLimit = &config.RateLimitConfig{Enabled: true, Limit: 2, Window: time.Minute}
	})

	// Clients behind the proxy get separate budgets.
	for range 2 {
		assert.Equal(t, http.StatusNotFound, signinFrom(t, e, "192.0.2.10:4000", "198.51.100.1"))
		assert.Equal(t, http.StatusNotFound, signinFrom(t, e, "192.0.2.10:4000", "198.51.100.2"))
	}
	assert.Equal(t, http.StatusTooManyRequests, signinFrom(t, e, "192.0.2.10:4000", "198.51.100.1"))

	// A peer outside the trusted range cannot choose its address.
	assert.Equal(t, http.StatusNotFound, signinFrom(t, e, "203.0.113.9:5555", "198.51.100.3"))
	assert.Equal(t, http.StatusNotFound, signinFrom(t, e, "203.0.113.9:5555", "198.51.100.4"))
	assert.Equal(t, http.StatusTooManyRequests, signinFrom(t, e, "203.0.113.9:5555", "198.51.100.5"))
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestServer(t, nil)
	signup(t, e, "alamin", "a", "b", "c")

	rec, env := doJSON(t, e, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shopreg_auth_signups_total{outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), `shopreg_http_requests_total{method="POST",route="/api/signup",status="201"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := doJSON(t, e, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "HTTP_ERROR", env.Error.Code)
}

func parseClaims(t *testing.T, token string) *service.Claims {
	t.Helper()

	claims := &service.Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	return claims
}

func expiredToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	issued := time.Now().Add(-time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{
		UserID:   userID,
		Username: "alamin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(30 * time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	return token
}
