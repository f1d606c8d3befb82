package provider

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/sign"
)

// wallet wraps the general-purpose wallet extension. SignDeploy is preferred
// over Sign: the former is specified to sign the deploy hash, while the
// generic message operation's semantics vary between provider versions and
// have produced invalid signatures in the field.
type wallet struct {
	desc    Descriptor
	caps    Capability
	present bool
}

// NewWallet builds the general-purpose wallet-extension adapter. Pass nil
// when the extension is absent.
func NewWallet(desc *Descriptor) Adapter {
	if desc == nil {
		return &wallet{}
	}
	return &wallet{desc: *desc, caps: desc.Capabilities(), present: true}
}

func (w *wallet) Name() string { return "wallet" }

func (w *wallet) Available() bool { return w.present }

func (w *wallet) RequestSignature(ctx context.Context, d *deploy.Deploy, publicKeyHex string) (sign.SigningResult, error) {
	if !w.present {
		return sign.SigningResult{}, ErrProviderUnavailable
	}

	if err := ensureConnected(ctx, w.desc); err != nil {
		return sign.SigningResult{}, err
	}

	logger := log.With().Str("component", "provider_wallet").Logger()

	if w.caps.Has(CanSignDeploy) {
		res, err := interpret(w.desc.SignDeploy(ctx, d, publicKeyHex))
		if err == nil || errors.Is(err, ErrUserCancelled) {
			return res, err
		}
		logger.Warn().Err(err).Msg("SignDeploy attempt failed, falling back to message signing")
	}

	if w.caps.Has(CanSignMessage) {
		return interpret(w.desc.Sign(ctx, d.Hash, publicKeyHex))
	}

	return sign.SigningResult{}, ErrCapabilityMissing
}
