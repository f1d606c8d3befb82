package config_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/caspercreds/go-deploy/internal/config"
)

func TestPrintServiceEnv(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()
	_, err := json.MarshalIndent(cfg, "", "  ")

	if err != nil {
		t.Fatal(err)
	}
}

func TestDefaultsValidate(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "casper-test", cfg.Node.ChainName)
	assert.Equal(t, []string{"http://localhost:7777/rpc"}, cfg.Node.URLs)
	assert.Equal(t, 5*time.Second, cfg.Signing.PollInterval)
	assert.Equal(t, uint64(5_000_000_000), cfg.Signing.PaymentMotes)
}

func TestValidateRejectsMissingChainName(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Node.ChainName = ""
	assert.Error(t, cfg.Validate())
}

func TestNodeURLsFromEnv(t *testing.T) {
	t.Setenv("CREDS_NODE_URLS", "http://node-a:7777/rpc, http://node-b:7777/rpc ,")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, []string{"http://node-a:7777/rpc", "http://node-b:7777/rpc"}, cfg.Node.URLs)
}
