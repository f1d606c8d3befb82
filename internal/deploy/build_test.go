package deploy_test

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/caspercreds/go-deploy/internal/deploy"
)

func TestBuildComputesHashes(t *testing.T) {
	d := testDeploy(t)

	assert.Len(t, d.Hash, 64)
	assert.Len(t, d.Header.BodyHash, 64)
	assert.Empty(t, d.Approvals)
	assert.Equal(t, "casper-test", d.Header.ChainName)
	assert.Equal(t, uint64(deploy.DefaultGasPrice), d.Header.GasPrice)
	assert.Equal(t, deploy.DefaultTTL, d.Header.TTL)
}

func TestBuildDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	build := func() *deploy.Deploy {
		args, err := deploy.RevokeArgs(big.NewInt(7), "expired")
		require.NoError(t, err)

		d, err := deploy.Build(deploy.BuildParams{
			AccountHex:   testSigner,
			ChainName:    "casper-test",
			ContractHash: strings.Repeat("cd", 32),
			EntryPoint:   "revoke",
			Args:         args,
			PaymentMotes: big.NewInt(2_500_000_000),
		}, now)
		require.NoError(t, err)
		return d
	}

	first := build()
	second := build()
	assert.Equal(t, first.Hash, second.Hash)
	assert.Equal(t, first.Header.BodyHash, second.Header.BodyHash)
}

func TestBuildHashCoversChainName(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	build := func(chain string) *deploy.Deploy {
		d, err := deploy.Build(deploy.BuildParams{
			AccountHex:   testSigner,
			ChainName:    chain,
			ContractHash: strings.Repeat("cd", 32),
			EntryPoint:   "issue",
			PaymentMotes: big.NewInt(1),
			Args:         []deploy.NamedArg{deploy.StringArg("credential_hash", "x")},
		}, now)
		require.NoError(t, err)
		return d
	}

	assert.NotEqual(t, build("casper").Hash, build("casper-test").Hash)
}

func TestBuildValidation(t *testing.T) {
	valid := deploy.BuildParams{
		AccountHex:   testSigner,
		ChainName:    "casper-test",
		ContractHash: strings.Repeat("cd", 32),
		EntryPoint:   "issue",
		PaymentMotes: big.NewInt(1),
	}

	missingAccount := valid
	missingAccount.AccountHex = ""
	_, err := deploy.Build(missingAccount, time.Now())
	assert.Error(t, err)

	bothTargets := valid
	bothTargets.PackageHash = strings.Repeat("ef", 32)
	_, err = deploy.Build(bothTargets, time.Now())
	assert.Error(t, err)

	noPayment := valid
	noPayment.PaymentMotes = nil
	_, err = deploy.Build(noPayment, time.Now())
	assert.Error(t, err)
}

func TestDurationJSONRoundTrip(t *testing.T) {
	ttl := deploy.Duration(90 * time.Minute)

	data, err := ttl.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1h30m0s"`, string(data))

	var decoded deploy.Duration
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, ttl, decoded)
}
