package status

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/caspercreds/go-deploy/internal/config"
	"github/caspercreds/go-deploy/internal/deploy/gateway"
	"github/caspercreds/go-deploy/internal/deploy/node"
)

var deployHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

type options struct {
	wait bool
}

// New builds the status command: query execution results for a deploy hash.
func New() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "status <deploy-hash>",
		Short: "Queries execution results for a deploy",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runStatus(opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.wait, "wait", false, "poll until the deploy reaches a terminal state or the configured await timeout elapses")

	return cmd
}

func runStatus(opts *options, deployHash string) error {
	if !deployHashPattern.MatchString(deployHash) {
		return errors.New("deploy hash must be 64 hex characters")
	}

	cfg := config.DefaultServiceConfigFromEnv()
	ctx := context.Background()

	client, err := node.NewClient(cfg.Node.URLs)
	if err != nil {
		return errors.Wrap(err, "connect node client")
	}
	defer client.Close()

	if opts.wait {
		gw := gateway.NewService(client, gateway.WithPollInterval(cfg.Signing.PollInterval))
		success, err := gw.AwaitOutcome(ctx, deployHash, cfg.Signing.AwaitTimeout)
		if err != nil {
			return errors.Wrap(err, "await outcome")
		}
		if !success {
			return errors.New("deploy did not execute successfully within the await timeout")
		}
	}

	status, err := client.DeployStatus(ctx, deployHash)
	if err != nil {
		return errors.Wrap(err, "get deploy status")
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal status")
	}
	fmt.Println(string(data))

	return nil
}
