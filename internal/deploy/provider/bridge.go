package provider

import (
	"context"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/sign"
)

// Bridge method names. A signer bridge is a JSON-RPC endpoint standing in
// for a browser wallet, typically a headless signing agent.
const (
	methodIsConnected = "signer_is_connected"
	methodConnect     = "signer_connect"
	methodSign        = "signer_sign"
	methodSignDeploy  = "signer_sign_deploy"
	methodSend        = "signer_send"
)

// bridgeResult mirrors the loosely-specified wire shape signer bridges
// respond with. The translation into the SigningResult union happens here,
// at the single adapter boundary.
type bridgeResult struct {
	Cancelled    bool           `json:"cancelled"`
	Error        string         `json:"error"`
	DeployHash   string         `json:"deployHash"`
	SignatureHex string         `json:"signatureHex"`
	Signature    []byte         `json:"signature"`
	SignedDeploy *deploy.Deploy `json:"signedDeploy"`
}

func (r bridgeResult) toSigningResult() sign.SigningResult {
	switch {
	case r.Cancelled:
		return sign.Cancelled()
	case r.Error != "":
		return sign.Failed(r.Error)
	case r.DeployHash != "":
		return sign.Submitted(r.DeployHash)
	case r.SignedDeploy != nil:
		return sign.Signed(r.SignedDeploy)
	case r.SignatureHex != "":
		return sign.Raw(r.SignatureHex)
	case len(r.Signature) > 0:
		return sign.Raw(r.Signature)
	default:
		return sign.Failed("bridge returned no signature")
	}
}

// NewBridge dials a signer-bridge endpoint and exposes it as a provider
// descriptor. All five operations are offered; bridges that do not implement
// a method fail that sub-attempt and the chain falls through as usual.
func NewBridge(url string) (*Descriptor, error) {
	client, err := rpc.Dial(url)
	if err != nil {
		return nil, errors.Wrapf(err, "dial signer bridge %s", url)
	}

	call := func(ctx context.Context, method string, args ...any) (sign.SigningResult, error) {
		var res bridgeResult
		if err := client.CallContext(ctx, &res, method, args...); err != nil {
			return sign.SigningResult{}, errors.Wrapf(err, "bridge call %s", method)
		}
		return res.toSigningResult(), nil
	}

	return &Descriptor{
		IsConnected: func(ctx context.Context) (bool, error) {
			var connected bool
			if err := client.CallContext(ctx, &connected, methodIsConnected); err != nil {
				return false, errors.Wrap(err, "bridge connection check")
			}
			return connected, nil
		},
		RequestConnection: func(ctx context.Context) error {
			var ok bool
			if err := client.CallContext(ctx, &ok, methodConnect); err != nil {
				return errors.Wrap(err, "bridge connect")
			}
			if !ok {
				return errors.New("bridge refused connection")
			}
			return nil
		},
		Sign: func(ctx context.Context, payloadHex, publicKeyHex string) (sign.SigningResult, error) {
			return call(ctx, methodSign, payloadHex, publicKeyHex)
		},
		SignDeploy: func(ctx context.Context, d *deploy.Deploy, publicKeyHex string) (sign.SigningResult, error) {
			return call(ctx, methodSignDeploy, d, publicKeyHex)
		},
		Send: func(ctx context.Context, d *deploy.Deploy, publicKeyHex string) (sign.SigningResult, error) {
			return call(ctx, methodSend, d, publicKeyHex)
		},
	}, nil
}
