package provider

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/sign"
	"github/caspercreds/go-deploy/internal/metrics"
)

// Chain tries adapters strictly sequentially in construction order. A user
// cancellation from any adapter is terminal; every other failure falls
// through to the next adapter. Sequential order matters twice over: an
// earlier success must short-circuit later adapters, and concurrent wallet
// prompts would stack popups on the user.
type Chain struct {
	adapters []Adapter
}

// NewChain builds a chain over the given adapters in priority order. Use
// DefaultOrder to assemble the standard cascade.
func NewChain(adapters ...Adapter) *Chain {
	return &Chain{adapters: adapters}
}

// DefaultOrder assembles the standard cascade: federated multi-wallet SDK,
// then legacy signer extension, then general-purpose wallet extension.
// Families known to handle whole-deploy signing come first because the
// bare-signature path carries more reconstruction risk.
func DefaultOrder(federatedDesc, legacyDesc, walletDesc *Descriptor) *Chain {
	return NewChain(
		NewFederated(federatedDesc),
		NewLegacy(legacyDesc),
		NewWallet(walletDesc),
	)
}

// RequestSignature runs the cascade for one deploy and signer.
func (c *Chain) RequestSignature(ctx context.Context, d *deploy.Deploy, publicKeyHex string) (sign.SigningResult, error) {
	logger := log.With().Str("component", "provider_chain").Logger()

	available := make([]Adapter, 0, len(c.adapters))
	for _, a := range c.adapters {
		if a.Available() {
			available = append(available, a)
		}
	}
	if len(available) == 0 {
		return sign.SigningResult{}, ErrNoProviderAvailable
	}

	for _, a := range available {
		res, err := a.RequestSignature(ctx, d, publicKeyHex)
		if err == nil {
			metrics.ProviderAttempts.WithLabelValues(a.Name(), resultLabel(res)).Inc()
			logger.Debug().
				Str("provider", a.Name()).
				Str("deploy_hash", d.Hash).
				Msg("Provider produced a signing result")
			return res, nil
		}

		if errors.Is(err, ErrUserCancelled) {
			metrics.ProviderAttempts.WithLabelValues(a.Name(), "cancelled").Inc()
			return sign.SigningResult{}, err
		}

		metrics.ProviderAttempts.WithLabelValues(a.Name(), "failed").Inc()
		logger.Warn().
			Str("provider", a.Name()).
			Err(err).
			Msg("Provider failed, trying next adapter")
	}

	return sign.SigningResult{}, ErrAllProvidersExhausted
}

func resultLabel(res sign.SigningResult) string {
	switch res.Kind {
	case sign.KindSubmitted:
		return "submitted"
	case sign.KindSignedDeploy:
		return "signed_deploy"
	case sign.KindRawSignature:
		return "raw_signature"
	default:
		return "other"
	}
}
