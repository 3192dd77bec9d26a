package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-nutrition/app/dto/http"
	"github.com/vibast-solutions/ms-go-nutrition/app/service"
	"github.com/vibast-solutions/ms-go-nutrition/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	msgInvalidBody         = "invalid request body"
	msgInternalError       = "internal server error"
	msgInvalidRefreshToken = "invalid or expired refresh token"
	msgInvalidCredentials  = "incorrect email or password"
	bearerChallenge        = "Bearer"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

func (c *AuthController) Register(ctx echo.Context) error {
	req, err := types.NewRegisterRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind register request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: msgInvalidBody})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Register validation failed")
		return validationError(ctx, err)
	}

	logrus.WithField("email", req.Email).Info("Register request received")
	result, err := c.authService.Register(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			logrus.WithField("email", req.Email).Warn("Register failed: email already registered")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: service.ErrDuplicateEmail.Error()})
		}
		if errors.Is(err, service.ErrValidation) {
			logrus.WithField("email", req.Email).Warn("Register failed: password rejected by policy")
			return validationError(ctx, err)
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Register failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: msgInternalError})
	}

	logrus.WithField("email", req.Email).Info("User registered")
	return ctx.JSON(http.StatusCreated, result)
}

func (c *AuthController) Login(ctx echo.Context) error {
	req, err := types.NewLoginRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: msgInvalidBody})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed")
		return validationError(ctx, err)
	}

	logrus.WithField("email", req.Email).Info("Login request received")
	result, err := c.authService.Login(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials")
			return unauthorized(ctx, msgInvalidCredentials)
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: msgInternalError})
	}

	logrus.WithField("email", req.Email).Info("Login successful")
	return ctx.JSON(http.StatusOK, result)
}

func (c *AuthController) Refresh(ctx echo.Context) error {
	req, err := types.NewRefreshTokenRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind refresh request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: msgInvalidBody})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Refresh validation failed")
		return validationError(ctx, err)
	}

	logrus.Info("Refresh request received")
	result, err := c.authService.Refresh(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			logrus.Warn("Refresh failed: invalid or expired token")
			return unauthorized(ctx, msgInvalidRefreshToken)
		}
		logrus.WithError(err).Error("Refresh failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: msgInternalError})
	}

	logrus.Info("Refresh successful")
	return ctx.JSON(http.StatusOK, result)
}

// Logout always answers with success, even for an unreadable body or an
// unknown token.
func (c *AuthController) Logout(ctx echo.Context) error {
	req, err := types.NewRefreshTokenRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind logout request")
	} else {
		_ = c.authService.Logout(ctx.Request().Context(), req)
	}

	logrus.Info("Logout processed")
	return ctx.JSON(http.StatusOK, httpdto.LogoutResponse{Message: httpdto.LogoutMessage})
}

func validationError(ctx echo.Context, err error) error {
	resp := httpdto.ErrorResponse{Error: err.Error()}

	var fields types.FieldErrors
	if errors.As(err, &fields) {
		resp.Error = service.ErrValidation.Error()
		resp.Fields = fields
	}

	return ctx.JSON(http.StatusBadRequest, resp)
}

func unauthorized(ctx echo.Context, message string) error {
	ctx.Response().Header().Set(echo.HeaderWWWAuthenticate, bearerChallenge)
	return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: message})
}
