package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/resource"
)

type resourceApi struct {
	svc *resource.Service
}

func registerResourceAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *resource.Service) {
	api := resourceApi{svc: svc}

	rg := g.Group("/resources", authed...)
	rg.GET("", api.query)
	rg.POST("/:id/download", api.download)
}

type DownloadResponse struct {
	Message  string            `json:"message"`
	Resource resource.Resource `json:"resource"`
}

func (api *resourceApi) query(ctx echo.Context) error {
	filter := new(resource.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	resources, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying resources")
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *resourceApi) download(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	r, err := api.svc.Download(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "downloading resource")
	}
	return ctx.JSON(http.StatusOK, DownloadResponse{Message: "Download initiated", Resource: r})
}
