// Package types holds the public payload types of the HTTP API.
package types

import (
	openapierrors "github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github/caspercreds/go-deploy/internal/deploy"
)

// ProviderResultPayload is the loosely-shaped wallet result the browser
// forwards for reconciliation. At most one of the outcome fields is set.
type ProviderResultPayload struct {
	Cancelled    bool           `json:"cancelled,omitempty"`
	Error        string         `json:"error,omitempty"`
	DeployHash   string         `json:"deployHash,omitempty"`
	SignatureHex string         `json:"signatureHex,omitempty"`
	Signature    any            `json:"signature,omitempty"`
	SignedDeploy *deploy.Deploy `json:"signedDeploy,omitempty"`
}

// Empty reports whether the payload carries no outcome at all.
func (p *ProviderResultPayload) Empty() bool {
	return p == nil || (!p.Cancelled &&
		p.Error == "" &&
		p.DeployHash == "" &&
		p.SignatureHex == "" &&
		p.Signature == nil &&
		p.SignedDeploy == nil)
}

// PostSubmitDeployPayload is the relay submission request: a constructed
// deploy, the signer identity, and the raw provider result obtained by the
// browser.
type PostSubmitDeployPayload struct {
	Deploy          *deploy.Deploy         `json:"deploy"`
	SignerPublicKey *string                `json:"signer_public_key"`
	ProviderResult  *ProviderResultPayload `json:"provider_result"`

	// Await, when true, blocks until the deploy's execution outcome or the
	// configured await timeout.
	Await bool `json:"await,omitempty"`
}

func (p *PostSubmitDeployPayload) Validate() error {
	if p.Deploy == nil {
		return openapierrors.Required("deploy", "body", nil)
	}
	if swag.StringValue(p.SignerPublicKey) == "" {
		return openapierrors.Required("signer_public_key", "body", nil)
	}
	if p.ProviderResult.Empty() {
		return openapierrors.Required("provider_result", "body", nil)
	}
	return nil
}

// PostSubmitDeployResponse reports the network-assigned hash and, when
// awaited, the execution outcome.
type PostSubmitDeployResponse struct {
	DeployHash  *string         `json:"deploy_hash"`
	SubmittedAt strfmt.DateTime `json:"submitted_at"`
	Executed    bool            `json:"executed"`
	Success     bool            `json:"success"`
}

func (r *PostSubmitDeployResponse) Validate() error {
	if swag.StringValue(r.DeployHash) == "" {
		return openapierrors.Required("deploy_hash", "response", nil)
	}
	return nil
}

// GetDeployStatusResponse reports the node's current verdict on a deploy.
type GetDeployStatusResponse struct {
	DeployHash *string `json:"deploy_hash"`
	Terminal   bool    `json:"terminal"`
	Success    bool    `json:"success"`
}

func (r *GetDeployStatusResponse) Validate() error {
	if swag.StringValue(r.DeployHash) == "" {
		return openapierrors.Required("deploy_hash", "response", nil)
	}
	return nil
}
