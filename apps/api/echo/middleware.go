package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/teacher"
)

// teacherMiddleware loads the authenticated teacher into the context. It must run after the JWT middleware.
func (a *authenticator) teacherMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(claims.Subject)
		if err != nil {
			return errUnauthorized
		}

		t, err := a.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			if core.IsNotFound(err) {
				return errUnauthorized
			}
			return errors.Wrap(err, "finding teacher by ID")
		}
		if !t.IsActive {
			return errAccountDeactivated
		}
		ctx.Set(contextTeacherKey, t)
		return next(ctx)
	}
}

// contextTeacher returns the teacher set by teacherMiddleware.
func contextTeacher(ctx echo.Context) (teacher.Teacher, error) {
	if t, ok := ctx.Get(contextTeacherKey).(teacher.Teacher); ok {
		return t, nil
	}
	return teacher.Teacher{}, errUnauthorized
}
