package deploys

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/caspercreds/go-deploy/internal/api"
	"github/caspercreds/go-deploy/internal/api/httperrors"
	"github/caspercreds/go-deploy/internal/deploy/gateway"
	"github/caspercreds/go-deploy/internal/deploy/provider"
	"github/caspercreds/go-deploy/internal/deploy/sign"
	"github/caspercreds/go-deploy/internal/types"
	"github/caspercreds/go-deploy/internal/util"
)

func PostSubmitDeployRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Deploys.POST("", postSubmitDeployHandler(s))
}

// postSubmitDeployHandler reconciles a raw wallet result forwarded by the
// browser into a signed deploy and submits it.
func postSubmitDeployHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSubmitDeployPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		signer := swag.StringValue(body.SignerPublicKey)
		res := toSigningResult(body.ProviderResult)

		hash, err := s.Flow.Reconcile(ctx, body.Deploy, res, signer)
		if err != nil {
			log.Debug().Err(err).Msg("Deploy reconciliation failed")
			return translateFlowError(err)
		}

		response := &types.PostSubmitDeployResponse{
			DeployHash:  swag.String(hash),
			SubmittedAt: strfmt.DateTime(s.Clock.Now()),
		}

		if body.Await {
			success, err := s.Flow.AwaitOutcome(ctx, hash, s.Config.Signing.AwaitTimeout)
			if err != nil {
				log.Warn().Err(err).Msg("Awaiting deploy outcome failed")
			} else {
				// success=false with Executed=false means still pending
				response.Success = success
				response.Executed = success
			}
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}

// toSigningResult translates the wire payload into the tagged union, the
// same boundary translation every in-process adapter performs.
func toSigningResult(p *types.ProviderResultPayload) sign.SigningResult {
	switch {
	case p.Cancelled:
		return sign.Cancelled()
	case p.Error != "":
		return sign.Failed(p.Error)
	case p.DeployHash != "":
		return sign.Submitted(p.DeployHash)
	case p.SignedDeploy != nil:
		return sign.Signed(p.SignedDeploy)
	case p.SignatureHex != "":
		return sign.Raw(p.SignatureHex)
	default:
		return sign.Raw(p.Signature)
	}
}

// translateFlowError maps the flow's error taxonomy onto public HTTP errors.
func translateFlowError(err error) error {
	var rejected *gateway.NodeRejectedError
	switch {
	case errors.Is(err, provider.ErrUserCancelled):
		return httperrors.NewHTTPError(http.StatusConflict, httperrors.TypeSigningCancelled, "Signing was cancelled by the user.")
	case errors.Is(err, provider.ErrNoProviderAvailable):
		return httperrors.NewHTTPError(http.StatusBadGateway, httperrors.TypeNoProvider, "No signing provider is available. Install or connect a wallet.")
	case errors.Is(err, provider.ErrAllProvidersExhausted):
		return httperrors.NewHTTPError(http.StatusBadGateway, httperrors.TypeProvidersExhausted, "All signing providers failed. Reconnect your wallet and retry.")
	case errors.As(err, &rejected):
		return httperrors.NewHTTPErrorWithDetail(http.StatusUnprocessableEntity, httperrors.TypeNodeRejected, "The node rejected the deploy.", rejected.Error())
	case errors.Is(err, sign.ErrUnsupportedSignatureLength),
		errors.Is(err, sign.ErrMalformedResult),
		errors.Is(err, sign.ErrUnknownAlgorithmTag):
		return httperrors.NewHTTPErrorWithDetail(http.StatusBadRequest, httperrors.TypeGeneric, "The provider result could not be normalized.", err.Error())
	default:
		return err
	}
}
