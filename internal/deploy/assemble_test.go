package deploy_test

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/caspercreds/go-deploy/internal/deploy"
)

const (
	testSigner    = "0203a5b1aeaa4e7f6a6e8fd5a4e0ec30c5b2f1e5e36d4b4f6e3d2c1b0a9988776655"
	testSignature = "02" + "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

func testDeploy(t *testing.T) *deploy.Deploy {
	t.Helper()

	args, err := deploy.IssueArgs(
		strings.Repeat("ab", 32),
		"diploma",
		"BSc Computer Science",
		0,
		"9c1185a5c5e9fc54612808977ee8f548b2258d31",
	)
	require.NoError(t, err)

	d, err := deploy.Build(deploy.BuildParams{
		AccountHex:   testSigner,
		ChainName:    "casper-test",
		ContractHash: strings.Repeat("cd", 32),
		EntryPoint:   "issue",
		Args:         args,
		PaymentMotes: big.NewInt(5_000_000_000),
	}, time.Now())
	require.NoError(t, err)

	return d
}

func TestAssembleAppendsApproval(t *testing.T) {
	d := testDeploy(t)

	signed, err := deploy.Assemble(d, testSigner, testSignature)
	require.NoError(t, err)
	require.Len(t, signed.Approvals, 1)
	assert.Equal(t, testSigner, signed.Approvals[0].Signer)
	assert.Equal(t, testSignature, signed.Approvals[0].Signature)
}

func TestAssembleIdempotent(t *testing.T) {
	d := testDeploy(t)

	_, err := deploy.Assemble(d, testSigner, testSignature)
	require.NoError(t, err)
	_, err = deploy.Assemble(d, testSigner, testSignature)
	require.NoError(t, err)

	assert.Len(t, d.Approvals, 1)
}

func TestAssembleDoesNotTouchClauses(t *testing.T) {
	d := testDeploy(t)
	header := d.Header
	payment := d.Payment
	session := d.Session

	_, err := deploy.Assemble(d, testSigner, testSignature)
	require.NoError(t, err)

	assert.Equal(t, header, d.Header)
	assert.Equal(t, payment, d.Payment)
	assert.Equal(t, session, d.Session)
}

func TestAssembleMissingHeader(t *testing.T) {
	_, err := deploy.Assemble(&deploy.Deploy{}, testSigner, testSignature)
	assert.True(t, errors.Is(err, deploy.ErrMissingHeader))

	_, err = deploy.Assemble(nil, testSigner, testSignature)
	assert.True(t, errors.Is(err, deploy.ErrMissingHeader))
}
