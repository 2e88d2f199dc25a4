package main

import (
	"os"
	"path/filepath"

	"github.com/sawtooth-seth/rpc/cmd/sethrpc/commands"

	"github.com/cometbft/cometbft/libs/cli"
)

func main() {
	cmd := cli.PrepareBaseCmd(commands.RootCmd, "SETH", os.ExpandEnv(filepath.Join("$HOME", ".sethrpc")))

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
