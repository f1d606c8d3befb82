package deploys_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/caspercreds/go-deploy/internal/api"
	"github/caspercreds/go-deploy/internal/test"
	"github/caspercreds/go-deploy/internal/types"
)

func TestGetDeployStatusTerminal(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/deploys/"+test.DefaultDeployHash, nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var response types.GetDeployStatusResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
		assert.Equal(t, test.DefaultDeployHash, swag.StringValue(response.DeployHash))
		assert.True(t, response.Terminal)
		assert.True(t, response.Success)
	})
}

func TestGetDeployStatusRejectsBadHash(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/deploys/nothex", nil, nil)
		assert.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}
