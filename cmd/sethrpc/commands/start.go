package commands

import (
	"fmt"

	"github.com/cometbft/cometbft/libs/os"
	"github.com/sawtooth-seth/rpc/client"
	"github.com/sawtooth-seth/rpc/config"
	"github.com/sawtooth-seth/rpc/flags"
	"github.com/sawtooth-seth/rpc/node"
	"github.com/sawtooth-seth/rpc/rpc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// addFlags exposes configuration options for starting a node. Short flag
// names are bound to their configuration keys.
func addFlags(cmd *cobra.Command) {
	bind := func(key, name string) {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
	cmd.Flags().String("connect", "tcp://127.0.0.1:4004", "endpoint of the validator")
	bind(flags.Validator_Connect, "connect")
	cmd.Flags().Duration("timeout", client.DefaultTimeout, "how long to wait for each validator reply")
	bind(flags.Validator_Timeout, "timeout")
	cmd.Flags().String("bind", rpc.DefaultConfig.ListenAddress, "address to serve JSON-RPC on")
	bind(flags.RPC_Addr, "bind")
	cmd.Flags().Int("workers", rpc.DefaultConfig.Workers, "calls executed at once")
	bind(flags.RPC_Workers, "workers")
	cmd.Flags().Float64("rate-limit", 0, "requests per second accepted, 0 disables limiting")
	bind(flags.RPC_RateLimit, "rate-limit")
	cmd.Flags().StringSlice("unlock", nil, "alias of an account to unlock, repeatable")
	bind(flags.Accounts_Unlock, "unlock")
	cmd.Flags().String("keys-dir", config.DefaultKeysDir(), "directory holding <alias>.priv and <alias>.json key files")
	bind(flags.Accounts_Dir, "keys-dir")
	cmd.Flags().Uint64("chain-id", 19, "chain id reported to clients")
	bind(flags.Chain_ID, "chain-id")
}

// StartCmd is the command that allows the CLI to start a node.
var StartCmd = &cobra.Command{
	Use:     "start",
	Aliases: []string{"node", "run"},
	Short:   "Run the JSON-RPC gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		n, err := node.NewNode(logger, cfg)
		if err != nil {
			return fmt.Errorf("failed to create node: %w", err)
		}

		if err := n.Start(); err != nil {
			return fmt.Errorf("failed to start node: %w", err)
		}

		logger.Info("started node", "validator", cfg.Validator.Connect, "rpc", n.RPCAddr().String())

		// Stop upon receiving SIGTERM or CTRL-C.
		os.TrapSignal(logger, func() {
			if n.IsRunning() {
				if err := n.Stop(); err != nil {
					logger.Error("unable to stop the node", "error", err)
				}
			}
		})

		// Run forever.
		select {}
	},
}

func init() {
	addFlags(StartCmd)
}
