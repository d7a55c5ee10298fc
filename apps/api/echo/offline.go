package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/offline"
)

type offlineApi struct {
	lib *offline.Library
}

// registerOfflineAPI registers the offline bundle endpoints. They are public so that they can be pre-cached.
func registerOfflineAPI(g *echo.Group, lib *offline.Library) {
	api := offlineApi{lib: lib}

	og := g.Group("/offline")
	og.GET("/manifest", api.manifest)
	og.GET("/documents/:id", api.document)
}

func (api *offlineApi) manifest(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.lib.Manifest())
}

func (api *offlineApi) document(ctx echo.Context) error {
	doc, err := api.lib.Document(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding offline document")
	}
	return ctx.JSON(http.StatusOK, doc)
}
