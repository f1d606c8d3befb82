// Package test provides helpers for spinning up a fully-wired server against
// a stubbed network node.
package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github/caspercreds/go-deploy/internal/api"
	"github/caspercreds/go-deploy/internal/api/router"
	"github/caspercreds/go-deploy/internal/config"
	"github/caspercreds/go-deploy/internal/deploy/node"
)

// DefaultDeployHash is the hash the stub node assigns to every submission.
const DefaultDeployHash = "9a1e5b1c2d3e4f506172839aabbccddeeff00112233445566778899aabbccdde"

// NewStubNode serves a minimal JSON-RPC node: put_deploy is accepted with
// DefaultDeployHash, get_deploy reports a successful terminal execution.
func NewStubNode(t *testing.T) *httptest.Server {
	t.Helper()
	return NewStubNodeWithHandler(t, nil)
}

// NewStubNodeWithHandler lets a test override the response per method; a nil
// override falls back to the defaults.
func NewStubNodeWithHandler(t *testing.T, override func(method string, w http.ResponseWriter, id json.RawMessage) bool) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))

		if override != nil && override(env.Method, w, env.ID) {
			return
		}

		switch env.Method {
		case node.MethodPutDeploy:
			writeRPCResult(t, w, env.ID, map[string]string{"deploy_hash": DefaultDeployHash})
		case node.MethodGetDeploy:
			writeRPCResult(t, w, env.ID, map[string]any{
				"deploy_hash": DefaultDeployHash,
				"execution_results": []map[string]any{
					{"block_hash": strings.Repeat("22", 32), "success": true},
				},
			})
		default:
			writeRPCError(t, w, env.ID, -32601, "Method not found")
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeRPCResult(t *testing.T, w http.ResponseWriter, id json.RawMessage, result any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0", "id": id, "result": result,
	}))
}

func writeRPCError(t *testing.T, w http.ResponseWriter, id json.RawMessage, code int, message string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0", "id": id, "error": map[string]any{"code": code, "message": message},
	}))
}

// DefaultTestConfig returns a service config pointed at the given node URL.
func DefaultTestConfig(nodeURL string) config.Server {
	cfg := config.DefaultServiceConfigFromEnv()
	// The metrics middleware registers collectors in the global default
	// prometheus registry, which panics when a second test wires a server in
	// the same process.
	cfg.Echo.EnableMetricsMiddleware = false
	cfg.Node.URLs = []string{nodeURL}
	cfg.Node.ChainName = "casper-test"
	cfg.Signing.PollInterval = 10 * time.Millisecond
	cfg.Signing.AwaitTimeout = 500 * time.Millisecond
	return cfg
}

// WithTestServer runs closure against a wired server backed by the default
// stub node.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()
	WithTestServerFromNode(t, NewStubNode(t), closure)
}

// WithTestServerFromNode runs closure against a wired server backed by the
// given stub node.
func WithTestServerFromNode(t *testing.T, stub *httptest.Server, closure func(s *api.Server)) {
	t.Helper()

	s, err := api.NewServer(DefaultTestConfig(stub.URL))
	require.NoError(t, err)
	router.Init(s)
	t.Cleanup(func() { s.Node.Close() })

	closure(s)
}

// PerformRequest issues a request against the server's router without a real
// listener.
func PerformRequest(t *testing.T, s *api.Server, method, path string, body any, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set(echoHeaderContentType, "application/json")
	}
	for key, vals := range headers {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"
