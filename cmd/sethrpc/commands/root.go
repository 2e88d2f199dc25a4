package commands

import (
	"io"
	"os"

	"github.com/cometbft/cometbft/libs/cli"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	"github.com/cometbft/cometbft/libs/log"
	"github.com/sawtooth-seth/rpc/flags"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger  = log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	verbose bool
)

// RootCmd is the root command for sethrpc. It is called once in the main
// function.
var RootCmd = &cobra.Command{
	Use:   "sethrpc",
	Short: "Ethereum JSON-RPC gateway for the Sawtooth seth transaction family",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		viper.AddConfigPath(".")
		if file := viper.GetString(flags.Log_File); file != "" {
			logger = log.NewTMLogger(log.NewSyncWriter(logFile(file)))
		}
		if viper.GetBool(flags.Trace) {
			logger = log.NewTracingLogger(logger)
		}

		logger, err = cmtflags.ParseLogLevel(viper.GetString(flags.Log_Level), logger.With("module", "main"), cmd.Flag(flags.Log_Level).DefValue)
		return err
	},
}

// logFile returns a writer rotating file by size.
func logFile(file string) io.Writer {
	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    viper.GetInt(flags.Log_MaxSize),
		MaxBackups: viper.GetInt(flags.Log_MaxBackups),
		MaxAge:     viper.GetInt(flags.Log_MaxAge),
		Compress:   true,
	}
}

func init() {
	RootCmd.PersistentFlags().String(flags.Log_Level, "info", "level of logging, can be debug, info, error, none or comma-separated list of module:level pairs with an optional *:level pair (* means all other modules). e.g. 'validator:debug,rpc:info,*:error'")
	RootCmd.PersistentFlags().String(flags.Log_File, "", "write logs to this file instead of stdout, rotating it by size")
	RootCmd.PersistentFlags().Int(flags.Log_MaxSize, 100, "size in megabytes at which the log file is rotated")
	RootCmd.PersistentFlags().Int(flags.Log_MaxBackups, 3, "rotated log files to keep")
	RootCmd.PersistentFlags().Int(flags.Log_MaxAge, 28, "days to keep rotated log files")
	RootCmd.AddCommand(
		StartCmd,
		AccountsCmd,
		VersionCmd,
		cli.NewCompletionCmd(RootCmd, true),
	)
}
