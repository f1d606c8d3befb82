// Package httperrors defines the public error shape the API responds with.
package httperrors

import (
	"fmt"
	"net/http"
)

// Public error type discriminators.
const (
	TypeGeneric            = "generic"
	TypeSigningCancelled   = "signing_cancelled"
	TypeNoProvider         = "no_provider_available"
	TypeProvidersExhausted = "providers_exhausted"
	TypeNodeRejected       = "node_rejected"
)

// HTTPError is the JSON body returned for every failed request.
type HTTPError struct {
	Code   int    `json:"status"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
}

// NewHTTPError creates a public HTTP error.
func NewHTTPError(code int, errorType, title string) *HTTPError {
	return &HTTPError{Code: code, Type: errorType, Title: title}
}

// NewHTTPErrorWithDetail creates a public HTTP error carrying extra detail.
func NewHTTPErrorWithDetail(code int, errorType, title, detail string) *HTTPError {
	return &HTTPError{Code: code, Type: errorType, Title: title, Detail: detail}
}

var (
	// ErrBadRequestMissingDeploy is returned when the submission payload has
	// no deploy.
	ErrBadRequestMissingDeploy = NewHTTPError(http.StatusBadRequest, TypeGeneric, "A constructed deploy is required.")

	// ErrBadRequestMissingSigner is returned when the submission payload has
	// no signer public key.
	ErrBadRequestMissingSigner = NewHTTPError(http.StatusBadRequest, TypeGeneric, "A signer public key is required.")
)
