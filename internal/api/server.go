package api

import (
	"context"
	"net/http"

	"github.com/dropbox/godropbox/time2"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/caspercreds/go-deploy/internal/config"
	"github/caspercreds/go-deploy/internal/deploy/flow"
	"github/caspercreds/go-deploy/internal/deploy/gateway"
	"github/caspercreds/go-deploy/internal/deploy/node"
	"github/caspercreds/go-deploy/internal/deploy/provider"
)

// Router keeps the echo route groups handlers attach to.
type Router struct {
	Routes       []*echo.Route
	Root         *echo.Group
	Management   *echo.Group
	APIV1Deploys *echo.Group
}

// FlowService runs the signing/submission protocol for the relay endpoints.
type FlowService = flow.Service

// GatewayService submits deploys and polls outcomes.
type GatewayService = gateway.Service

// Server is a central struct keeping all the dependencies.
type Server struct {
	// initialized by router.Init(s)
	Echo   *echo.Echo
	Router *Router

	Config  config.Server
	Clock   time2.Clock
	Node    node.Client
	Gateway GatewayService
	Flow    FlowService
}

// NewServer wires the service graph from configuration: node client,
// submission gateway, provider chain (signer bridge or local key, when
// configured) and the reconciliation flow.
func NewServer(cfg config.Server) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	client, err := node.NewClient(cfg.Node.URLs)
	if err != nil {
		return nil, errors.Wrap(err, "connect node client")
	}

	gw := gateway.NewService(client, gateway.WithPollInterval(cfg.Signing.PollInterval))

	chain, err := BuildProviderChain(cfg.Signing)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &Server{
		Config:  cfg,
		Clock:   time2.DefaultClock,
		Node:    client,
		Gateway: gw,
		Flow:    flow.NewService(chain, gw, cfg.Node.ChainName),
	}, nil
}

// BuildProviderChain plugs configured integrations into the cascade. The
// relay endpoints work without any: the browser runs the wallet interaction
// and posts the raw result for reconciliation.
func BuildProviderChain(cfg config.SigningServer) (*provider.Chain, error) {
	var walletDesc *provider.Descriptor

	switch {
	case cfg.BridgeURL != "":
		desc, err := provider.NewBridge(cfg.BridgeURL)
		if err != nil {
			return nil, errors.Wrap(err, "connect signer bridge")
		}
		walletDesc = desc
	case cfg.LocalKeyPath != "":
		key, err := provider.LoadLocalKey(cfg.LocalKeyPath)
		if err != nil {
			return nil, errors.Wrap(err, "load local signing key")
		}
		walletDesc, err = provider.NewLocalKey(key)
		if err != nil {
			return nil, errors.Wrap(err, "build local signer")
		}
	}

	return provider.DefaultOrder(nil, nil, walletDesc), nil
}

// Ready reports whether the router has been initialized.
func (s *Server) Ready() bool {
	return s.Echo != nil && s.Router != nil
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	log.Info().Str("listen_address", s.Config.Echo.ListenAddress).Msg("Starting HTTP server")
	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return errors.Wrap(err, "failed to start echo server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Node != nil {
		log.Debug().Msg("Closing node connections")
		s.Node.Close()
	}

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	return errs
}
