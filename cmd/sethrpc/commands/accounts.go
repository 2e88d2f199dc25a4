package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/sawtooth-seth/rpc/accounts"
	"github.com/sawtooth-seth/rpc/config"
	"github.com/spf13/cobra"
)

var keysDir string

func init() {
	AccountsCmd.Flags().StringVar(&keysDir, "keys-dir", config.DefaultKeysDir(), "directory holding the key files")
}

// AccountsCmd lists the accounts that can be unlocked.
var AccountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the key files available to --unlock",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := accounts.ListKeyFiles(keysDir)
		if err != nil {
			return err
		}
		printKeyFiles(cmd.OutOrStdout(), files)
		return nil
	},
}

func printKeyFiles(w io.Writer, files []accounts.KeyFile) {
	if len(files) == 0 {
		fmt.Fprintf(w, "no key files in %s\n", keysDir)
		return
	}
	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	encrypted := color.New(color.FgYellow).SprintFunc()
	plain := color.New(color.FgGreen).SprintFunc()

	tbl := table.New("Alias", "Address", "Key")
	tbl.WithHeaderFormatter(headerFmt).WithWriter(w)
	for _, f := range files {
		kind := plain("plain")
		if f.Encrypted {
			kind = encrypted("keystore")
		}
		tbl.AddRow(f.Alias, f.Address.Hex(), kind)
	}
	tbl.Print()
}
