package node

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/caspercreds/go-deploy/internal/deploy"
)

// rawCaller submits hand-built JSON-RPC 2.0 envelopes over plain HTTP. It
// shares nothing with the typed client on purpose: when the typed path is
// structurally rejected, the fallback must not inherit its encoding.
type rawCaller struct {
	urls []string
	http *http.Client
}

const rawCallTimeout = 30 * time.Second

func newRawCaller(urls []string) *rawCaller {
	return &rawCaller{
		urls: urls,
		http: &http.Client{Timeout: rawCallTimeout},
	}
}

type rawRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      string `json:"id"`
}

type rawResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

func (r *rawCaller) putDeploy(ctx context.Context, d *deploy.Deploy) (string, error) {
	body, err := json.Marshal(rawRequest{
		JSONRPC: "2.0",
		Method:  MethodPutDeploy,
		Params:  map[string]any{"deploy": d},
		ID:      uuid.NewString(),
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal put_deploy envelope")
	}

	var lastErr error
	for _, url := range r.urls {
		hash, err := r.post(ctx, url, body)
		if err == nil {
			return hash, nil
		}
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			// node answered; rotating endpoints cannot help
			return "", err
		}
		lastErr = err
	}
	return "", errors.Wrap(lastErr, "raw put_deploy failed on all endpoints")
}

func (r *rawCaller) post(ctx context.Context, url string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "post envelope")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("node returned HTTP %d", resp.StatusCode)
	}

	var decoded rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.Wrap(err, "decode envelope response")
	}
	if decoded.Error != nil {
		return "", decoded.Error
	}

	var result putDeployResult
	if err := json.Unmarshal(decoded.Result, &result); err != nil {
		return "", errors.Wrap(err, "decode put_deploy result")
	}
	if result.DeployHash == "" {
		return "", errors.New("node accepted deploy but returned no hash")
	}
	return result.DeployHash, nil
}
