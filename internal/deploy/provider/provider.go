// Package provider implements the ordered cascade of signing-provider
// adapters. Each adapter wraps one provider family behind a uniform
// "request a signature or a signed deploy" operation; the chain tries them
// in a fixed priority order and falls through on capability failures.
package provider

import (
	"context"

	"github.com/pkg/errors"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/sign"
)

var (
	// ErrUserCancelled is terminal for the whole chain: the user declined a
	// prompt, so no further adapter may be tried.
	ErrUserCancelled = errors.New("user cancelled signing")

	// ErrProviderUnavailable means the provider family is not present in
	// this environment; the chain moves on.
	ErrProviderUnavailable = errors.New("signing provider unavailable")

	// ErrCapabilityMissing means the provider is present but lacks the
	// requested operation; the adapter tries its next operation, then the
	// chain moves on.
	ErrCapabilityMissing = errors.New("signing capability missing")

	// ErrMalformedResult means the provider returned an unrecognized shape.
	ErrMalformedResult = errors.New("provider returned malformed result")

	// ErrNoProviderAvailable means no adapter at all is present.
	ErrNoProviderAvailable = errors.New("no signing provider available, install or connect a wallet")

	// ErrAllProvidersExhausted means every present adapter failed without a
	// user cancellation. Reconnecting the wallet usually clears it.
	ErrAllProvidersExhausted = errors.New("all signing providers failed, reconnect your wallet and retry")
)

// Capability is the bitset of operations a provider exposes. It is resolved
// once from the Descriptor at adapter construction, never probed per call.
type Capability uint8

const (
	// CanSubmit signs and submits the deploy in one provider call.
	CanSubmit Capability = 1 << iota

	// CanSignDeploy signs the deploy hash and returns a signature or a
	// signed deploy.
	CanSignDeploy

	// CanSignMessage signs an arbitrary payload; semantics are provider
	// defined, so it is only used as a last resort.
	CanSignMessage
)

// Has reports whether all bits of want are set.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// Descriptor is the typed integration surface a provider family supplies.
// A nil function means the capability is absent, not an error.
type Descriptor struct {
	IsConnected       func(ctx context.Context) (bool, error)
	RequestConnection func(ctx context.Context) error

	// Sign signs an arbitrary payload (the deploy hash bytes in hex).
	Sign func(ctx context.Context, payloadHex, publicKeyHex string) (sign.SigningResult, error)

	// SignDeploy signs the full deploy.
	SignDeploy func(ctx context.Context, d *deploy.Deploy, publicKeyHex string) (sign.SigningResult, error)

	// Send signs and submits the deploy in one call.
	Send func(ctx context.Context, d *deploy.Deploy, publicKeyHex string) (sign.SigningResult, error)
}

// Capabilities resolves the capability bitset from the populated functions.
func (desc Descriptor) Capabilities() Capability {
	var c Capability
	if desc.Send != nil {
		c |= CanSubmit
	}
	if desc.SignDeploy != nil {
		c |= CanSignDeploy
	}
	if desc.Sign != nil {
		c |= CanSignMessage
	}
	return c
}

// Adapter is one provider family in the chain.
type Adapter interface {
	// Name identifies the family in logs and metrics.
	Name() string

	// Available reports whether the provider is present in the environment.
	Available() bool

	// RequestSignature runs the family's preferred operations in order and
	// returns the first usable result. May block on user interaction.
	RequestSignature(ctx context.Context, d *deploy.Deploy, publicKeyHex string) (sign.SigningResult, error)
}

// ensureConnected runs the connection handshake if the descriptor reports a
// disconnected state. Providers without connection methods are treated as
// always connected.
func ensureConnected(ctx context.Context, desc Descriptor) error {
	if desc.IsConnected == nil {
		return nil
	}
	connected, err := desc.IsConnected(ctx)
	if err != nil {
		return errors.Wrap(ErrProviderUnavailable, err.Error())
	}
	if connected {
		return nil
	}
	if desc.RequestConnection == nil {
		return errors.Wrap(ErrProviderUnavailable, "disconnected and no connection method")
	}
	if err := desc.RequestConnection(ctx); err != nil {
		return errors.Wrap(ErrProviderUnavailable, err.Error())
	}
	return nil
}

// interpret translates a provider-constructed result into the chain's error
// taxonomy. Cancellation becomes the terminal ErrUserCancelled; failures
// become fall-through errors.
func interpret(res sign.SigningResult, err error) (sign.SigningResult, error) {
	if err != nil {
		return sign.SigningResult{}, err
	}
	switch res.Kind {
	case sign.KindCancelled:
		return sign.SigningResult{}, ErrUserCancelled
	case sign.KindFailed:
		return sign.SigningResult{}, errors.Errorf("provider reported error: %s", res.Reason)
	default:
		return res, nil
	}
}
