package deploys

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/caspercreds/go-deploy/internal/api"
	"github/caspercreds/go-deploy/internal/api/httperrors"
	"github/caspercreds/go-deploy/internal/deploy/codec"
	"github/caspercreds/go-deploy/internal/types"
	"github/caspercreds/go-deploy/internal/util"
)

func GetDeployStatusRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Deploys.GET("/:hash", getDeployStatusHandler(s))
}

func getDeployStatusHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		hash := c.Param("hash")
		if _, err := codec.FromHex(hash); err != nil || len(hash) != 64 {
			return httperrors.NewHTTPError(http.StatusBadRequest, httperrors.TypeGeneric, "Deploy hash must be 32 bytes of hex.")
		}

		status, err := s.Node.DeployStatus(ctx, hash)
		if err != nil {
			log.Debug().Err(err).Str("deploy_hash", hash).Msg("Deploy status query failed")
			return err
		}

		response := &types.GetDeployStatusResponse{
			DeployHash: swag.String(hash),
			Terminal:   status.Terminal(),
			Success:    status.Succeeded(),
		}
		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
