package controller

import (
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-nutrition/app/dto/http"
	"github.com/vibast-solutions/ms-go-nutrition/app/entity"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type UserController struct{}

func NewUserController() *UserController {
	return &UserController{}
}

// Me returns the profile resolved by the auth middleware.
func (c *UserController) Me(ctx echo.Context) error {
	user, ok := ctx.Get("user").(*entity.User)
	if !ok || user == nil {
		logrus.Warn("Me failed: missing user in context")
		return unauthorized(ctx, "unauthorized")
	}

	return ctx.JSON(http.StatusOK, httpdto.NewUserResponse(user))
}
