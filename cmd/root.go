package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/caspercreds/go-deploy/cmd/env"
	"github/caspercreds/go-deploy/cmd/server"
	"github/caspercreds/go-deploy/cmd/status"
	"github/caspercreds/go-deploy/cmd/submit"
	"github/caspercreds/go-deploy/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "go-deploy",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Signs and submits credential deploys through external wallet providers.
Requires configuration through ENV.`, config.ModuleName),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// attach the subcommands
	rootCmd.AddCommand(
		env.New(),
		server.New(),
		status.New(),
		submit.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
