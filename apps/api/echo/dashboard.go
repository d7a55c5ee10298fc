package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/dashboard"
)

func registerDashboardAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *dashboard.Service) {
	g.GET("/dashboard", func(ctx echo.Context) error {
		t, err := contextTeacher(ctx)
		if err != nil {
			return err
		}
		d, err := svc.Get(ctx.Request().Context(), t.ID)
		if err != nil {
			return errors.Wrap(err, "building dashboard")
		}
		return ctx.JSON(http.StatusOK, d)
	}, authed...)
}
