package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/dashboard"
	"github.com/trezcool/mwalimu/core/training"
)

type trainingApi struct {
	svc          *training.Service
	dashboardSvc *dashboard.Service
	validate     *validator.Validate
}

func registerTrainingAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	svc *training.Service,
	dashboardSvc *dashboard.Service,
	validate *validator.Validate,
) {
	api := trainingApi{svc: svc, dashboardSvc: dashboardSvc, validate: validate}

	tg := g.Group("/training", authed...)
	tg.GET("/courses", api.courses)
	tg.PUT("/courses/:id/progress", api.updateProgress)
	tg.GET("/badges", api.badges)
}

func (api *trainingApi) courses(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	courses, err := api.svc.Courses(ctx.Request().Context(), t.ID)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *trainingApi) updateProgress(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data training.UpdateProgress
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProgress")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	cp, err := api.svc.UpdateProgress(ctx.Request().Context(), t.ID, id, data)
	if err != nil {
		return errors.Wrap(err, "updating progress")
	}
	return ctx.JSON(http.StatusOK, cp)
}

// badges needs the teacher's activity, gathered by the dashboard.
func (api *trainingApi) badges(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	badges, err := api.dashboardSvc.Badges(ctx.Request().Context(), t.ID)
	if err != nil {
		return errors.Wrap(err, "computing badges")
	}
	return ctx.JSON(http.StatusOK, badges)
}
