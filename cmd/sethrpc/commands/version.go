package commands

import (
	"fmt"
	"runtime"

	"github.com/ethereum/go-ethereum/params"
	"github.com/sawtooth-seth/rpc/types"
	"github.com/sawtooth-seth/rpc/version"
	"github.com/spf13/cobra"
)

func init() {
	VersionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show transaction family and library versions")
}

// VersionCmd prints the gateway version, and with -v what it speaks and was
// built with.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Version:", version.VersionWithMeta)
		if version.Commit != "" {
			fmt.Fprintln(out, "Git Commit:", version.Commit)
		}
		if version.Date != "" {
			fmt.Fprintln(out, "Git Commit Date:", version.Date)
		}
		if !verbose {
			return
		}
		fmt.Fprintf(out, "Transaction Family: %s %s\n", types.FamilyName, types.FamilyVersion)
		fmt.Fprintln(out, "go-ethereum:", params.VersionWithMeta)
		fmt.Fprintf(out, "Go Version: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
