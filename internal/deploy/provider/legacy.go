package provider

import (
	"context"

	"github.com/pkg/errors"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/sign"
)

// legacy wraps the single-purpose signer extension. It only knows one
// operation: sign the deploy and hand back a fully signed deploy, after a
// connection handshake.
type legacy struct {
	desc    Descriptor
	caps    Capability
	present bool
}

// NewLegacy builds the legacy signer-extension adapter. Pass nil when the
// extension is absent.
func NewLegacy(desc *Descriptor) Adapter {
	if desc == nil {
		return &legacy{}
	}
	return &legacy{desc: *desc, caps: desc.Capabilities(), present: true}
}

func (l *legacy) Name() string { return "legacy" }

func (l *legacy) Available() bool { return l.present }

func (l *legacy) RequestSignature(ctx context.Context, d *deploy.Deploy, publicKeyHex string) (sign.SigningResult, error) {
	if !l.present {
		return sign.SigningResult{}, ErrProviderUnavailable
	}
	if !l.caps.Has(CanSignDeploy) {
		return sign.SigningResult{}, ErrCapabilityMissing
	}

	if err := ensureConnected(ctx, l.desc); err != nil {
		return sign.SigningResult{}, err
	}

	res, err := interpret(l.desc.SignDeploy(ctx, d, publicKeyHex))
	if err != nil {
		return sign.SigningResult{}, err
	}

	// The legacy extension is contractually a whole-deploy signer; a bare
	// signature here means a version mismatch.
	if res.Kind != sign.KindSignedDeploy {
		return sign.SigningResult{}, errors.Wrap(ErrMalformedResult, "legacy signer did not return a signed deploy")
	}
	return res, nil
}
