package deploy

import (
	"github.com/pkg/errors"
)

// ErrMissingHeader is returned when a deploy handed to Assemble is
// structurally invalid.
var ErrMissingHeader = errors.New("deploy has no header")

// Assemble merges a canonical signature into the deploy's approvals list.
// Re-assembling with a signer that already has an approval is a no-op, so
// retried signing flows cannot double-approve. Header, payment and session
// are never touched.
func Assemble(d *Deploy, signerHex, signatureHex string) (*Deploy, error) {
	if d == nil || d.Header.Account == "" {
		return nil, ErrMissingHeader
	}
	if signerHex == "" {
		return nil, errors.New("signer public key is required")
	}
	if signatureHex == "" {
		return nil, errors.New("signature is required")
	}

	if d.HasApproval(signerHex) {
		return d, nil
	}

	d.Approvals = append(d.Approvals, Approval{
		Signer:    signerHex,
		Signature: signatureHex,
	})
	return d, nil
}
