package middleware

import (
	"context"
	"errors"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-nutrition/app/dto/http"
	"github.com/vibast-solutions/ms-go-nutrition/app/entity"
	"github.com/vibast-solutions/ms-go-nutrition/app/service"
	"github.com/vibast-solutions/ms-go-nutrition/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const msgInvalidCredentials = "could not validate credentials"

type currentUserResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*entity.User, error)
}

type AuthMiddleware struct {
	authService currentUserResolver
}

func NewAuthMiddleware(authService currentUserResolver) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAuth resolves the bearer access token to a user and stores it under
// "user" and its id under "user_id".
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			logrus.Debug("Missing authorization header")
			return unauthorized(c)
		}

		tokenString, ok := types.ParseBearerToken(authHeader)
		if !ok {
			logrus.Debug("Invalid authorization header format")
			return unauthorized(c)
		}

		user, err := m.authService.CurrentUser(c.Request().Context(), tokenString)
		if err != nil {
			if errors.Is(err, service.ErrInvalidOrExpiredToken) {
				logrus.Debug("Invalid or expired access token")
				return unauthorized(c)
			}
			logrus.WithError(err).Error("Failed to resolve current user")
			return c.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)

		return next(c)
	}
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: msgInvalidCredentials})
}
