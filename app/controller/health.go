package controller

import (
	"context"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-nutrition/app/dto/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	db Pinger
}

func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

func (c *HealthController) Health(ctx echo.Context) error {
	if err := c.db.PingContext(ctx.Request().Context()); err != nil {
		logrus.WithError(err).Error("Health check failed: database unreachable")
		return ctx.JSON(http.StatusServiceUnavailable, httpdto.HealthResponse{Status: "unhealthy"})
	}

	return ctx.JSON(http.StatusOK, httpdto.HealthResponse{Status: "healthy"})
}
