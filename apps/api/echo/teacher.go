package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/teacher"
)

type teacherApi struct {
	auth     *authenticator
	resetter *teacher.PasswordResetter
	validate *validator.Validate
}

func registerTeacherAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	auth *authenticator,
	resetter *teacher.PasswordResetter,
	validate *validator.Validate,
) {
	api := teacherApi{auth: auth, resetter: resetter, validate: validate}

	tg := g.Group("/teachers")

	// un-authed endpoints
	tg.POST("/login", api.login)
	tg.POST("/password-reset", api.passwordReset)
	tg.POST("/password-reset-confirm", api.passwordResetConfirm)

	// authed endpoints
	ag := tg.Group("", authed...)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
}

type LoginResponse struct {
	Token string `json:"token"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (api *teacherApi) login(ctx echo.Context) error {
	var data teacher.Login
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Login")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	token, err := api.auth.login(ctx, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *teacherApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *teacherApi) me(ctx echo.Context) error {
	t, err := contextTeacher(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

// passwordReset always succeeds for a valid email so that accounts can not be enumerated.
func (api *teacherApi) passwordReset(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	if err := api.resetter.Request(ctx.Request().Context(), data.Email); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Password reset email sent"})
}

func (api *teacherApi) passwordResetConfirm(ctx echo.Context) error {
	var data teacher.PasswordResetConfirm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetConfirm")
	}
	rctx := ctx.Request().Context()
	if err := data.Validate(rctx, api.validate, api.resetter); err != nil {
		return err
	}

	if err := api.resetter.Confirm(rctx, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset"})
}
