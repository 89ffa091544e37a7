package main

import (
	"github.com/spf13/cobra"

	"chess-scanner/internal/config"
	"chess-scanner/internal/version"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "chess-scanner",
		Short:         "Recognize chess positions from board photographs",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	loadConfig := func() (config.Config, error) {
		return config.Load(configFlag)
	}

	rootCmd.AddCommand(newRecognizeCommand(loadConfig))
	rootCmd.AddCommand(newCorrectCommand(loadConfig))
	rootCmd.AddCommand(newStatsCommand(loadConfig))
	rootCmd.AddCommand(newRetrainCommand(loadConfig))
	rootCmd.AddCommand(newClearCommand(loadConfig))

	return rootCmd
}
