package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wormholelabs-xyz/rootsync/relayer/config"
)

const (
	flagHome              = "home"
	flagNetwork           = "network"
	flagMock              = "mock"
	flagWallet            = "wallet"
	flagLogLevel          = "log-level"
	flagProfiles          = "profiles"
	flagEthRPCURL         = "eth-rpc-url"
	flagQueryURL          = "query-url"
	flagQueryTimeout      = "query-timeout"
	flagAlertAfterRetries = "alert-after-retries"
)

// NewRootCmd creates the rootsyncd root command.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	app := &appContext{}

	rootCmd := &cobra.Command{
		Use:           "rootsyncd",
		Short:         "Sync World ID roots into a guardian verified root ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return app.load(v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagHome, "", "directory holding the ledger database (default $HOME/"+config.DefaultHomeDirName+")")
	flags.String(flagNetwork, string(config.Mainnet), "network profile: localnet, testnet or mainnet")
	flags.Bool(flagMock, false, "sign attestations locally with mock guardian keys")
	flags.String(flagWallet, "", "path of the submitter's hex encoded secp256k1 key")
	flags.String(flagLogLevel, "info", "log level")
	flags.String(flagProfiles, "", "YAML file overriding the network profiles")
	flags.String(flagEthRPCURL, "", "source chain rpc endpoint")
	flags.String(flagQueryURL, "", "query proxy endpoint")
	flags.Duration(flagQueryTimeout, config.DefaultQueryTimeout, "query proxy request timeout")
	flags.Int(flagAlertAfterRetries, 5, "consecutive transient failures before escalating")

	if err := config.BindEnv(v); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		newInitCmd(app),
		newSyncCmd(app),
		newCleanupCmd(app),
		newRunCmd(app),
		newTxCmd(app),
		newQueryCmd(app),
	)
	closeLedgerAfterRun(rootCmd, app)

	return rootCmd
}

// closeLedgerAfterRun makes every command release the ledger database when it returns,
// including on failure, where cobra skips the post run hooks.
func closeLedgerAfterRun(cmd *cobra.Command, app *appContext) {
	for _, child := range cmd.Commands() {
		closeLedgerAfterRun(child, app)
	}
	if cmd.RunE == nil {
		return
	}
	run := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, app.close())
		}()
		return run(cmd, args)
	}
}
