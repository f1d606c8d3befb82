package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/caspercreds/go-deploy/internal/api"
)

// statusNotReady mirrors the conventional "web server is down" code used by
// load balancers for readiness probes.
const statusNotReady = 521

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// getReadyHandler only reports the server's own wiring; node reachability is
// deliberately excluded so a flaky node does not flap the readiness probe.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.String(statusNotReady, "Not ready.")
		}
		return c.String(http.StatusOK, "Ready.")
	}
}
