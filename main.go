package main

import (
	"os"

	"github.com/alexander-bruun/placeholders/cmd"
	"github.com/spf13/cobra"
)

var Version = "develop"

func newRootCmd() *cobra.Command {
	flags := &cmd.Flags{}

	root := &cobra.Command{
		Use:   "placeholders",
		Short: "Generate and serve low-weight image placeholders",
		PersistentPreRun: func(c *cobra.Command, args []string) {
			cmd.SetLogLevel(flags.LogLevel)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", os.Getenv("LOG_LEVEL"), "Set the log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", os.Getenv("PLACEHOLDERS_CONFIG"), "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&flags.DataDirectory, "data-directory", "", "Path to the data directory")

	root.AddCommand(
		cmd.NewServeCmd(flags, Version),
		cmd.NewGenerateCmd(flags),
		cmd.NewImportCmd(flags),
		cmd.NewListCmd(flags),
		cmd.NewDataURLCmd(flags),
		cmd.NewWarmCmd(flags),
		cmd.NewVersionCmd(Version),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
