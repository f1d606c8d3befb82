// Package sign normalizes the heterogeneous results returned by external
// signing providers into a canonical tagged signature or an already-signed
// deploy.
package sign

import (
	"github/caspercreds/go-deploy/internal/deploy"
)

// ResultKind discriminates SigningResult variants.
type ResultKind int

const (
	// KindCancelled means the user declined the signing prompt.
	KindCancelled ResultKind = iota

	// KindFailed means the provider reported an error.
	KindFailed

	// KindSignedDeploy means the provider returned a fully signed deploy.
	KindSignedDeploy

	// KindRawSignature means the provider returned a bare signature payload
	// whose shape still needs normalization.
	KindRawSignature

	// KindSubmitted means the provider submitted the deploy itself and
	// returned the network-assigned hash.
	KindSubmitted
)

// SigningResult is the tagged union an adapter constructs from whatever its
// provider hands back. Exactly one variant is populated; results live for a
// single signing attempt and are never shared across adapters.
type SigningResult struct {
	Kind       ResultKind
	Reason     string         // KindFailed
	Deploy     *deploy.Deploy // KindSignedDeploy
	Payload    any            // KindRawSignature: hex string, bytes, JSON array or indexed object
	DeployHash string         // KindSubmitted
}

// Cancelled builds a user-declined result.
func Cancelled() SigningResult {
	return SigningResult{Kind: KindCancelled}
}

// Failed builds a provider-error result.
func Failed(reason string) SigningResult {
	return SigningResult{Kind: KindFailed, Reason: reason}
}

// Signed builds a fully-signed-deploy result.
func Signed(d *deploy.Deploy) SigningResult {
	return SigningResult{Kind: KindSignedDeploy, Deploy: d}
}

// Raw builds a bare-signature result from a provider payload.
func Raw(payload any) SigningResult {
	return SigningResult{Kind: KindRawSignature, Payload: payload}
}

// Submitted builds a provider-submitted result.
func Submitted(deployHash string) SigningResult {
	return SigningResult{Kind: KindSubmitted, DeployHash: deployHash}
}
