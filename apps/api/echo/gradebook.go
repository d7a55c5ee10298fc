package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/gradebook"
)

type gradebookApi struct {
	svc      *gradebook.Service
	validate *validator.Validate
}

func registerGradebookAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *gradebook.Service, validate *validator.Validate) {
	api := gradebookApi{svc: svc, validate: validate}

	sg := g.Group("/students", authed...)
	sg.GET("", api.query)
	sg.POST("", api.enroll)
	sg.GET("/:id", api.retrieve)
	sg.POST("/:id/grades", api.recordAssignment)

	g.GET("/analytics/class-performance", api.classPerformance, authed...)
}

func (api *gradebookApi) query(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	students, err := api.svc.Query(ctx.Request().Context(), t.ID)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *gradebookApi) enroll(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	var data gradebook.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	student, err := api.svc.Enroll(ctx.Request().Context(), t.ID, data)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, student)
}

func (api *gradebookApi) retrieve(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	student, err := api.svc.Get(ctx.Request().Context(), t.ID, id)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, student)
}

func (api *gradebookApi) recordAssignment(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data gradebook.NewAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	student, err := api.svc.RecordAssignment(ctx.Request().Context(), t.ID, id, data)
	if err != nil {
		return errors.Wrap(err, "recording assignment")
	}
	return ctx.JSON(http.StatusOK, student)
}

func (api *gradebookApi) classPerformance(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	report, err := api.svc.Report(ctx.Request().Context(), t.ID)
	if err != nil {
		return errors.Wrap(err, "reporting class performance")
	}
	return ctx.JSON(http.StatusOK, report)
}
