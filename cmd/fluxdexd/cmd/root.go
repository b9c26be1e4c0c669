// Package cmd implements the fluxdexd command line tool.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for fluxdexd.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "fluxdexd",
		Short:        "FluxDEX AMM engine tooling",
		Long:         "fluxdexd inspects configuration and prices swaps against the engine's built-in strategies without touching live state.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String(flagConfig, "fluxdex.toml", "path to the engine configuration file")

	rootCmd.AddCommand(
		newConfigCmd(),
		newQuoteCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

const flagConfig = "config"
