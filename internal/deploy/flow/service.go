// Package flow orchestrates one signing and submission attempt: provider
// cascade, signature normalization, approval assembly, node submission.
package flow

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/gateway"
	"github/caspercreds/go-deploy/internal/deploy/provider"
	"github/caspercreds/go-deploy/internal/deploy/sign"
)

// Service runs the full reconciliation protocol for constructed deploys.
type Service interface {
	// SignAndSubmit obtains a signature through the provider cascade, merges
	// it into the deploy and submits. Returns the network-assigned hash.
	SignAndSubmit(ctx context.Context, d *deploy.Deploy, signerPublicKeyHex string) (string, error)

	// Reconcile merges an externally-obtained provider result into the
	// deploy and submits it, for callers that ran the wallet interaction
	// themselves (the browser relay path).
	Reconcile(ctx context.Context, d *deploy.Deploy, res sign.SigningResult, signerPublicKeyHex string) (string, error)

	// AwaitOutcome polls for the deploy's execution result.
	AwaitOutcome(ctx context.Context, deployHash string, timeout time.Duration) (bool, error)
}

type service struct {
	chain     *provider.Chain
	gw        gateway.Service
	chainName string
}

// NewService creates the signing flow over a provider chain and gateway.
// chainName is the configured target network, checked (warn-only) against
// each deploy's header.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(chain *provider.Chain, gw gateway.Service, chainName string) Service {
	return &service{
		chain:     chain,
		gw:        gw,
		chainName: chainName,
	}
}

func (s *service) SignAndSubmit(ctx context.Context, d *deploy.Deploy, signerPublicKeyHex string) (string, error) {
	if d == nil {
		return "", deploy.ErrMissingHeader
	}
	s.warnOnChainMismatch(d)

	res, err := s.chain.RequestSignature(ctx, d, signerPublicKeyHex)
	if err != nil {
		return "", err
	}
	return s.Reconcile(ctx, d, res, signerPublicKeyHex)
}

func (s *service) Reconcile(ctx context.Context, d *deploy.Deploy, res sign.SigningResult, signerPublicKeyHex string) (string, error) {
	switch res.Kind {
	case sign.KindCancelled:
		return "", provider.ErrUserCancelled
	case sign.KindFailed:
		return "", errors.Errorf("provider reported error: %s", res.Reason)
	case sign.KindSubmitted:
		// the federated SDK already put the deploy on the network
		return res.DeployHash, nil
	default:
	}

	normalized, err := sign.Normalize(res, signerPublicKeyHex)
	if err != nil {
		return "", errors.Wrap(err, "normalize signing result")
	}

	signed := normalized.Deploy
	if !normalized.AlreadySigned() {
		signed, err = deploy.Assemble(d, signerPublicKeyHex, normalized.SignatureHex)
		if err != nil {
			return "", errors.Wrap(err, "assemble deploy")
		}
	}

	return s.gw.Submit(ctx, signed)
}

func (s *service) AwaitOutcome(ctx context.Context, deployHash string, timeout time.Duration) (bool, error) {
	return s.gw.AwaitOutcome(ctx, deployHash, timeout)
}

// warnOnChainMismatch tolerates provider quirks around network naming: a
// mismatch is logged, never fatal.
func (s *service) warnOnChainMismatch(d *deploy.Deploy) {
	if s.chainName == "" || d.Header.ChainName == s.chainName {
		return
	}
	log.Warn().
		Str("component", "deploy_flow").
		Str("deploy_chain", d.Header.ChainName).
		Str("configured_chain", s.chainName).
		Msg("Deploy targets a different chain than configured")
}
