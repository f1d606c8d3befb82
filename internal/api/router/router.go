// Package router wires middleware and route groups onto the server.
package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/caspercreds/go-deploy/internal/api"
	"github/caspercreds/go-deploy/internal/api/handlers/common"
	"github/caspercreds/go-deploy/internal/api/handlers/deploys"
	"github/caspercreds/go-deploy/internal/api/httperrors"
	"github/caspercreds/go-deploy/internal/util"
)

// Init attaches middleware, groups and routes to the server's echo instance.
func Init(s *api.Server) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(s)

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	if s.Config.Echo.EnableMetricsMiddleware {
		e.Use(echoprometheus.NewMiddleware("creds_api"))
	}

	s.Echo = e
	s.Router = &api.Router{
		Root:         e.Group(""),
		Management:   e.Group("/-"),
		APIV1Deploys: e.Group("/api/v1/deploys"),
	}

	s.Router.Management.GET("/metrics", echoprometheus.NewHandler())

	s.Router.Routes = []*echo.Route{
		common.GetReadyRoute(s),
		deploys.PostSubmitDeployRoute(s),
		deploys.GetDeployStatusRoute(s),
	}
}

// requestLogger attaches a request-scoped zerolog logger carrying a request
// id to the context.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := log.With().
				Str("request_id", uuid.NewString()).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Logger()
			ctx := util.WithLogger(c.Request().Context(), l)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// errorHandler renders *httperrors.HTTPError bodies and hides internal
// details for everything else when configured to.
func errorHandler(s *api.Server) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var httpErr *httperrors.HTTPError
		if errors.As(err, &httpErr) {
			writeJSONError(c, httpErr)
			return
		}

		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			writeJSONError(c, httperrors.NewHTTPError(echoErr.Code, httperrors.TypeGeneric, http.StatusText(echoErr.Code)))
			return
		}

		log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
		title := http.StatusText(http.StatusInternalServerError)
		if !s.Config.Echo.HideInternalServerErrorDetails {
			title = err.Error()
		}
		writeJSONError(c, httperrors.NewHTTPError(http.StatusInternalServerError, httperrors.TypeGeneric, title))
	}
}

func writeJSONError(c echo.Context, httpErr *httperrors.HTTPError) {
	if err := c.JSON(httpErr.Code, httpErr); err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}
