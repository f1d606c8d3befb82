package provider

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/sign"
)

// federated wraps the multi-wallet SDK. It is tried first because it is the
// only family that can submit the deploy itself, avoiding the bare-signature
// reconstruction path entirely. Sub-attempts: Send, then SignDeploy.
type federated struct {
	desc    Descriptor
	caps    Capability
	present bool
}

// NewFederated builds the federated multi-wallet adapter. Pass nil when the
// SDK session is absent from the environment.
func NewFederated(desc *Descriptor) Adapter {
	if desc == nil {
		return &federated{}
	}
	return &federated{desc: *desc, caps: desc.Capabilities(), present: true}
}

func (f *federated) Name() string { return "federated" }

func (f *federated) Available() bool { return f.present }

func (f *federated) RequestSignature(ctx context.Context, d *deploy.Deploy, publicKeyHex string) (sign.SigningResult, error) {
	if !f.present {
		return sign.SigningResult{}, ErrProviderUnavailable
	}
	logger := log.With().Str("component", "provider_federated").Logger()

	var lastErr error

	if f.caps.Has(CanSubmit) {
		res, err := interpret(f.desc.Send(ctx, d, publicKeyHex))
		if err == nil {
			return res, nil
		}
		if errors.Is(err, ErrUserCancelled) {
			return sign.SigningResult{}, err
		}
		logger.Warn().Err(err).Msg("Send attempt failed, falling back to sign")
		lastErr = err
	}

	if f.caps.Has(CanSignDeploy) {
		res, err := interpret(f.desc.SignDeploy(ctx, d, publicKeyHex))
		if err == nil {
			return res, nil
		}
		if errors.Is(err, ErrUserCancelled) {
			return sign.SigningResult{}, err
		}
		logger.Warn().Err(err).Msg("SignDeploy attempt failed")
		lastErr = err
	}

	if lastErr != nil {
		return sign.SigningResult{}, lastErr
	}
	return sign.SigningResult{}, ErrCapabilityMissing
}
