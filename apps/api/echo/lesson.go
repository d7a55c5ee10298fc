package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/lessonplan"
)

type lessonApi struct {
	svc      *lessonplan.Service
	validate *validator.Validate
}

func registerLessonAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *lessonplan.Service, validate *validator.Validate) {
	api := lessonApi{svc: svc, validate: validate}

	g.GET("/curriculum", api.curriculum, authed...)

	lg := g.Group("/lessons", authed...)
	lg.GET("", api.query)
	lg.POST("", api.create)
	lg.POST("/generate", api.generate)
	lg.GET("/:id", api.retrieve)
}

func (api *lessonApi) query(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	lessons, err := api.svc.Query(ctx.Request().Context(), t.ID, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *lessonApi) create(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	var data lessonplan.NewLesson
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	lesson, err := api.svc.Create(ctx.Request().Context(), t.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, lesson)
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	lesson, err := api.svc.Get(ctx.Request().Context(), t.ID, id)
	if err != nil {
		return errors.Wrap(err, "finding lesson")
	}
	return ctx.JSON(http.StatusOK, lesson)
}

func (api *lessonApi) generate(ctx echo.Context) error {
	var data lessonplan.Request
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Request")
	}

	plan, err := api.svc.Generate(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, plan)
}

func (api *lessonApi) curriculum(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Curriculum())
}
