package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/caspercreds/go-deploy/internal/config"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/flow"
	"github/caspercreds/go-deploy/internal/deploy/gateway"
	"github/caspercreds/go-deploy/internal/deploy/node"
	"github/caspercreds/go-deploy/internal/deploy/provider"
)

const (
	entryPointIssue  = "issue"
	entryPointRevoke = "revoke"
)

type options struct {
	deployFile string

	entryPoint     string
	holder         string
	credentialType string
	title          string
	expiresAt      uint64
	metadataHash   string
	credentialID   int64
	reason         string

	signer string
	await  bool
}

// New builds the submit command: construct (or load) a credential deploy,
// obtain a signature through the configured provider chain, submit it.
func New() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Signs and submits a credential deploy",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSubmit(opts)
		},
	}

	cmd.Flags().StringVar(&opts.deployFile, "deploy-file", "", "load a prebuilt unsigned deploy from a JSON file instead of constructing one")
	cmd.Flags().StringVar(&opts.entryPoint, "entry-point", entryPointIssue, "contract entry point (issue or revoke)")
	cmd.Flags().StringVar(&opts.holder, "holder", "", "holder account hash hex (issue)")
	cmd.Flags().StringVar(&opts.credentialType, "credential-type", "", "credential type, e.g. diploma (issue)")
	cmd.Flags().StringVar(&opts.title, "title", "", "credential title (issue)")
	cmd.Flags().Uint64Var(&opts.expiresAt, "expires-at", 0, "expiry as unix milliseconds, 0 for none (issue)")
	cmd.Flags().StringVar(&opts.metadataHash, "metadata-hash", "", "hash of the off-chain metadata document (issue)")
	cmd.Flags().Int64Var(&opts.credentialID, "id", 0, "credential id (revoke)")
	cmd.Flags().StringVar(&opts.reason, "reason", "", "revocation reason (revoke)")
	cmd.Flags().StringVar(&opts.signer, "signer", "", "signer public key hex (defaults to the local key when configured)")
	cmd.Flags().BoolVar(&opts.await, "await", false, "wait for the execution outcome")

	return cmd
}

func runSubmit(opts *options) error {
	cfg := config.DefaultServiceConfigFromEnv()
	ctx := context.Background()

	client, err := node.NewClient(cfg.Node.URLs)
	if err != nil {
		return errors.Wrap(err, "connect node client")
	}
	defer client.Close()

	chain, signer, err := buildChain(cfg.Signing, opts.signer)
	if err != nil {
		return err
	}

	gw := gateway.NewService(client, gateway.WithPollInterval(cfg.Signing.PollInterval))
	svc := flow.NewService(chain, gw, cfg.Node.ChainName)

	d, err := loadOrBuildDeploy(cfg, opts, signer)
	if err != nil {
		return err
	}

	hash, err := svc.SignAndSubmit(ctx, d, signer)
	if err != nil {
		return errors.Wrap(err, "sign and submit")
	}
	fmt.Println(hash)

	if opts.await {
		success, err := svc.AwaitOutcome(ctx, hash, cfg.Signing.AwaitTimeout)
		if err != nil {
			return errors.Wrap(err, "await outcome")
		}
		if !success {
			return errors.New("deploy did not execute successfully within the await timeout")
		}
		log.Info().Str("deploy_hash", hash).Msg("Deploy executed successfully")
	}
	return nil
}

// buildChain resolves the provider cascade and the signer identity from
// config and flags.
func buildChain(cfg config.SigningServer, signerFlag string) (*provider.Chain, string, error) {
	signer := signerFlag

	var walletDesc *provider.Descriptor
	switch {
	case cfg.LocalKeyPath != "":
		key, err := provider.LoadLocalKey(cfg.LocalKeyPath)
		if err != nil {
			return nil, "", errors.Wrap(err, "load local signing key")
		}
		walletDesc, err = provider.NewLocalKey(key)
		if err != nil {
			return nil, "", errors.Wrap(err, "build local signer")
		}
		if signer == "" {
			signer = provider.LocalKeyPublicHex(key)
		}
	case cfg.BridgeURL != "":
		desc, err := provider.NewBridge(cfg.BridgeURL)
		if err != nil {
			return nil, "", errors.Wrap(err, "connect signer bridge")
		}
		walletDesc = desc
	}

	if signer == "" {
		return nil, "", errors.New("a signer public key is required (--signer or CREDS_SIGNING_LOCAL_KEY_PATH)")
	}
	return provider.DefaultOrder(nil, nil, walletDesc), signer, nil
}

func loadOrBuildDeploy(cfg config.Server, opts *options, signer string) (*deploy.Deploy, error) {
	if opts.deployFile != "" {
		raw, err := os.ReadFile(opts.deployFile)
		if err != nil {
			return nil, errors.Wrap(err, "read deploy file")
		}
		var d deploy.Deploy
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, errors.Wrap(err, "decode deploy file")
		}
		return &d, nil
	}

	if cfg.Signing.ContractHash == "" {
		return nil, errors.New("CREDS_SIGNING_CONTRACT_HASH is required to construct a deploy")
	}

	var args []deploy.NamedArg
	var err error
	switch opts.entryPoint {
	case entryPointIssue:
		args, err = deploy.IssueArgs(opts.holder, opts.credentialType, opts.title, opts.expiresAt, opts.metadataHash)
	case entryPointRevoke:
		args, err = deploy.RevokeArgs(big.NewInt(opts.credentialID), opts.reason)
	default:
		return nil, errors.Errorf("unknown entry point %q", opts.entryPoint)
	}
	if err != nil {
		return nil, errors.Wrap(err, "build entry point args")
	}

	return deploy.Build(deploy.BuildParams{
		AccountHex:   signer,
		ChainName:    cfg.Node.ChainName,
		ContractHash: cfg.Signing.ContractHash,
		EntryPoint:   opts.entryPoint,
		Args:         args,
		PaymentMotes: new(big.Int).SetUint64(cfg.Signing.PaymentMotes),
		TTL:          deploy.Duration(cfg.Signing.TTL),
		GasPrice:     cfg.Signing.GasPrice,
	}, time2.DefaultClock.Now())
}
