package main

import (
	"os"

	"github.com/spf13/cobra"

	"painel/internal/cli"
	"painel/internal/config"
	"painel/internal/log"
)

var (
	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "painel-cli",
	Short: "Painel de orçamento municipal",
	Long:  "Render dashboard snapshots, manage the theme preference and export the budget report.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		cfg, logger = cli.Bootstrap()
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
