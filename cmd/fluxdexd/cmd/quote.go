package cmd

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/fluxdex/fluxdex/config"
	"github.com/fluxdex/fluxdex/x/amm/strategy"
	"github.com/fluxdex/fluxdex/x/amm/types"
)

// newQuoteCmd prices a swap offline against the constant-product curve
// using the configured default fee, or a fee bucket when one is given.
func newQuoteCmd() *cobra.Command {
	var (
		amountIn   int64
		reserveIn  int64
		reserveOut int64
		bucket     uint16
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a swap against the constant-product curve",
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
			if amountIn <= 0 || reserveIn <= 0 || reserveOut <= 0 {
				return types.ErrInvalidAmount.Wrap("amount and reserves must be positive")
			}

			cp := strategy.NewConstantProduct(cfg.Params.SwapFee)
			out, err := cp.Quote(types.Context{}, types.QuoteParams{
				AmountIn:   math.NewInt(amountIn),
				ZeroForOne: true,
			}, math.NewInt(reserveIn), math.NewInt(reserveOut), types.RoutedPayload{BucketID: bucket})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "amount out: %s\n", out)
			return nil
		},
	}

	cmd.Flags().Int64Var(&amountIn, "amount-in", 0, "input amount")
	cmd.Flags().Int64Var(&reserveIn, "reserve-in", 0, "pool reserve on the input side")
	cmd.Flags().Int64Var(&reserveOut, "reserve-out", 0, "pool reserve on the output side")
	cmd.Flags().Uint16Var(&bucket, "bucket", 0, "fee bucket in basis points, 0 uses the configured default")
	return cmd
}
