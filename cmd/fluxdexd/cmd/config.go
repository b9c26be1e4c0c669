package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fluxdex/fluxdex/config"
)

// newConfigCmd shows the effective configuration after file and
// environment overrides.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective engine configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cmd.Flags().GetString(flagConfig)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "swap_fee:       %s\n", cfg.Params.SwapFee)
			fmt.Fprintf(out, "protocol_fee:   %s\n", cfg.Params.ProtocolFee)
			fmt.Fprintf(out, "fee_collector:  %s\n", cfg.Params.FeeCollector)
			fmt.Fprintf(out, "native_denom:   %s\n", cfg.Params.NativeDenom)
			fmt.Fprintf(out, "metrics:        %t\n", cfg.MetricsEnabled)
			fmt.Fprintf(out, "log_level:      %s\n", cfg.LogLevel)
			for i, w := range cfg.Params.BatchWindows {
				fmt.Fprintf(out, "batch_window %d: cycle=%d settle=%d enabled=%t\n",
					i, w.CycleLength, w.SettlementBlocks, w.Enabled)
			}
			return nil
		},
	}
}
