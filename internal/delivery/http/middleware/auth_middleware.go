package middleware

import (
	"strings"

	"shopreg/config"
	deliverycontext "shopreg/internal/delivery/context"
	domainerrors "shopreg/internal/domain/errors"
	"shopreg/internal/domain/service"
	"shopreg/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const bearerScheme = "Bearer"

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc         service.TokenService
	enforceOwnership bool
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, cfg *config.Config) *AuthMiddleware {
	m := &AuthMiddleware{tokenSvc: tokenSvc}
	if cfg != nil && cfg.Auth != nil {
		m.enforceOwnership = cfg.Auth.EnforceOwnership
	}

	return m
}

// Authenticate validates the access token carried in the Authorization header.
// Both "Bearer <token>" and a bare token are accepted. On failure the
// downstream handler is never invoked.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := extractToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if tokenString == "" {
			return domainerrors.ErrUnauthorized
		}

		claims, err := m.tokenSvc.ValidateToken(tokenString)
		if err != nil {
			return errors.WithStack(err)
		}

		deliverycontext.BindClaims(c, claims)

		return next(c)
	}
}

// RequireOwner rejects requests whose path parameter param differs from the
// authenticated user id. It is a no-op unless ownership enforcement is
// configured, and must be used after Authenticate.
func (m *AuthMiddleware) RequireOwner(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !m.enforceOwnership {
			return next
		}

		return func(c echo.Context) error {
			claims := deliverycontext.Claims(c)
			if claims == nil {
				return domainerrors.ErrUnauthorized
			}

			id, err := uuid.Parse(c.Param(param))
			if err != nil || id != claims.UserID {
				return domainerrors.ErrForbidden
			}

			return next(c)
		}
	}
}

func extractToken(header string) string {
	header = strings.TrimSpace(header)
	if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, bearerScheme) {
		return strings.TrimSpace(rest)
	}

	return header
}
