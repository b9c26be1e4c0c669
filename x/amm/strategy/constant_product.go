// Package strategy provides builtin pricing strategies for the AMM engine.
package strategy

import (
	"cosmossdk.io/math"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// bpsDenom converts a bucket id into a fee fraction: bucket 30 is 0.30%.
var bpsDenom = math.LegacyNewDec(10000)

// ConstantProduct prices swaps on the x*y=k curve with a fee taken from
// the input. A pool's bucket id, when non-zero, selects its fee tier in
// basis points; bucket zero falls back to the strategy's default fee.
type ConstantProduct struct {
	defaultFee math.LegacyDec
}

// NewConstantProduct builds a constant-product strategy with the given
// default fee fraction (e.g. 0.003 for 0.30%).
func NewConstantProduct(defaultFee math.LegacyDec) *ConstantProduct {
	return &ConstantProduct{defaultFee: defaultFee}
}

// fee resolves the effective fee for a bucket.
func (s *ConstantProduct) fee(bucketID uint16) math.LegacyDec {
	if bucketID == 0 {
		return s.defaultFee
	}
	return math.LegacyNewDec(int64(bucketID)).Quo(bpsDenom)
}

// Quote returns the output amount for the trade, or zero when the pool
// cannot price it.
func (s *ConstantProduct) Quote(_ types.Context, params types.QuoteParams, reserve0, reserve1 math.Int, payload types.RoutedPayload) (math.Int, error) {
	reserveIn, reserveOut := reserve0, reserve1
	if !params.ZeroForOne {
		reserveIn, reserveOut = reserve1, reserve0
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.ZeroInt(), nil
	}

	fee := s.fee(payload.BucketID)
	if fee.IsNegative() || fee.GTE(math.LegacyOneDec()) {
		return math.ZeroInt(), types.ErrInvalidParams.Wrapf("fee %s out of range", fee)
	}

	amountInAfterFee := math.LegacyNewDecFromInt(params.AmountIn).Mul(math.LegacyOneDec().Sub(fee))
	numerator := amountInAfterFee.Mul(math.LegacyNewDecFromInt(reserveOut))
	denominator := math.LegacyNewDecFromInt(reserveIn).Add(amountInAfterFee)
	return numerator.Quo(denominator).TruncateInt(), nil
}

// QuoteBatch prices each variant independently; the curve has no
// cross-bucket coupling.
func (s *ConstantProduct) QuoteBatch(ctx types.Context, params []types.QuoteParams, reserves [][2]math.Int, payloads []types.RoutedPayload) ([]math.Int, error) {
	if len(params) != len(reserves) || len(params) != len(payloads) {
		return nil, types.ErrInvalidRoute.Wrap("batch quote inputs must be parallel")
	}
	out := make([]math.Int, len(params))
	for i := range params {
		amount, err := s.Quote(ctx, params[i], reserves[i][0], reserves[i][1], payloads[i])
		if err != nil {
			return nil, err
		}
		out[i] = amount
	}
	return out, nil
}
