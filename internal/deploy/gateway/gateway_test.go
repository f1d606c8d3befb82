package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/gateway"
	"github/caspercreds/go-deploy/internal/deploy/node"
)

const assignedHash = "9a1e5b1c2d3e4f506172839aabbccddeeff00112233445566778899aabbccdde"

func signedDeploy() *deploy.Deploy {
	signer := "01" + strings.Repeat("aa", 32)
	return &deploy.Deploy{
		Hash: strings.Repeat("11", 32),
		Header: deploy.Header{
			Account:   signer,
			ChainName: "casper-test",
		},
		Approvals: []deploy.Approval{{
			Signer:    signer,
			Signature: "01" + strings.Repeat("bb", 64),
		}},
	}
}

type rpcEnvelope struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

func writeResult(t *testing.T, w http.ResponseWriter, id json.RawMessage, result any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
	require.NoError(t, err)
}

func writeError(t *testing.T, w http.ResponseWriter, id json.RawMessage, code int, message string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]any{"code": code, "message": message},
	})
	require.NoError(t, err)
}

func decodeEnvelope(t *testing.T, r *http.Request) rpcEnvelope {
	t.Helper()
	var env rpcEnvelope
	require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
	return env
}

func newGateway(t *testing.T, url string, opts ...gateway.Option) gateway.Service {
	t.Helper()
	client, err := node.NewClient([]string{url})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return gateway.NewService(client, opts...)
}

func TestSubmitTypedPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env := decodeEnvelope(t, r)
		assert.Equal(t, node.MethodPutDeploy, env.Method)
		writeResult(t, w, env.ID, map[string]string{"deploy_hash": assignedHash})
	}))
	defer srv.Close()

	hash, err := newGateway(t, srv.URL).Submit(context.Background(), signedDeploy())
	require.NoError(t, err)
	assert.Equal(t, assignedHash, hash)
}

func TestSubmitNodeRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env := decodeEnvelope(t, r)
		writeError(t, w, env.ID, -32008, "deploy was invalid: invalid associated keys")
	}))
	defer srv.Close()

	_, err := newGateway(t, srv.URL).Submit(context.Background(), signedDeploy())

	var rejected *gateway.NodeRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, -32008, rejected.Code)
	assert.Equal(t, "deploy was invalid: invalid associated keys", rejected.Message)
}

func TestSubmitFallsBackToRawEnvelope(t *testing.T) {
	var typedCalls, rawCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var probe struct {
			ID     json.RawMessage `json:"id"`
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&probe))

		// The typed client encodes positional params (a JSON array); the raw
		// envelope uses a named-params object. Reject the typed shape.
		if len(probe.Params) > 0 && probe.Params[0] == '[' {
			typedCalls.Add(1)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		rawCalls.Add(1)
		writeResult(t, w, probe.ID, map[string]string{"deploy_hash": assignedHash})
	}))
	defer srv.Close()

	hash, err := newGateway(t, srv.URL).Submit(context.Background(), signedDeploy())
	require.NoError(t, err)
	assert.Equal(t, assignedHash, hash)
	assert.Equal(t, int32(1), typedCalls.Load())
	assert.Equal(t, int32(1), rawCalls.Load())
}

func TestSubmitRejectsUnapprovedDeploy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected for an unapproved deploy")
	}))
	defer srv.Close()

	d := signedDeploy()
	d.Approvals = nil
	_, err := newGateway(t, srv.URL).Submit(context.Background(), d)
	assert.Error(t, err)
}

func TestAwaitOutcomeTerminalSuccess(t *testing.T) {
	var polls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env := decodeEnvelope(t, r)
		require.Equal(t, node.MethodGetDeploy, env.Method)

		// pending on the first poll, terminal afterwards
		results := []map[string]any{}
		if polls.Add(1) > 1 {
			results = append(results, map[string]any{
				"block_hash": strings.Repeat("22", 32),
				"success":    true,
			})
		}
		writeResult(t, w, env.ID, map[string]any{
			"deploy_hash":       assignedHash,
			"execution_results": results,
		})
	}))
	defer srv.Close()

	gw := newGateway(t, srv.URL, gateway.WithPollInterval(10*time.Millisecond))
	success, err := gw.AwaitOutcome(context.Background(), assignedHash, time.Second)
	require.NoError(t, err)
	assert.True(t, success)
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}

func TestAwaitOutcomeTimeout(t *testing.T) {
	var polls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env := decodeEnvelope(t, r)
		polls.Add(1)
		writeResult(t, w, env.ID, map[string]any{
			"deploy_hash":       assignedHash,
			"execution_results": []any{},
		})
	}))
	defer srv.Close()

	gw := newGateway(t, srv.URL, gateway.WithPollInterval(10*time.Millisecond))
	success, err := gw.AwaitOutcome(context.Background(), assignedHash, 55*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, success)
	assert.GreaterOrEqual(t, polls.Load(), int32(2), "poller must query at its fixed interval until timeout")
}

func TestAwaitOutcomeTerminalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env := decodeEnvelope(t, r)
		writeResult(t, w, env.ID, map[string]any{
			"deploy_hash": assignedHash,
			"execution_results": []map[string]any{{
				"block_hash":    strings.Repeat("22", 32),
				"success":       false,
				"error_message": "User error: 1001",
			}},
		})
	}))
	defer srv.Close()

	gw := newGateway(t, srv.URL, gateway.WithPollInterval(10*time.Millisecond))
	success, err := gw.AwaitOutcome(context.Background(), assignedHash, time.Second)
	require.NoError(t, err)
	assert.False(t, success)
}
