package util

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/caspercreds/go-deploy/internal/api/httperrors"
)

// Validatable is implemented by request and response payload types.
type Validatable interface {
	Validate() error
}

// BindAndValidateBody binds the request body into v and validates it,
// translating validation failures into a public 400.
func BindAndValidateBody(c echo.Context, v Validatable) error {
	if err := c.Bind(v); err != nil {
		return httperrors.NewHTTPErrorWithDetail(http.StatusBadRequest, httperrors.TypeGeneric, "Malformed request body.", err.Error())
	}
	if err := v.Validate(); err != nil {
		return httperrors.NewHTTPErrorWithDetail(http.StatusBadRequest, httperrors.TypeGeneric, "Invalid request body.", err.Error())
	}
	return nil
}

// ValidateAndReturn validates the response payload before writing it, so a
// handler bug cannot leak a half-filled response.
func ValidateAndReturn(c echo.Context, code int, v Validatable) error {
	if err := v.Validate(); err != nil {
		return errors.Wrap(err, "constructed invalid response payload")
	}
	return c.JSON(code, v)
}
