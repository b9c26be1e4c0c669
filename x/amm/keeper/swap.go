package keeper

import (
	"cosmossdk.io/math"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// Swap executes a single swap. The input is params.AssetA, the output
// params.AssetB; params.ZeroForOne must agree with the canonical asset
// order. protectionFlags is the trader's packed 32-bit opt-in word; zero
// costs a single branch.
func (k *Keeper) Swap(ctx types.Context, trader string, params types.QuoteParams, minAmountOut math.Int, protectionFlags uint32) (math.Int, error) {
	bctx, commit := k.branch(ctx)

	amountOut, err := k.swap(bctx, trader, params, minAmountOut, protectionFlags)
	if err != nil {
		return math.ZeroInt(), err
	}

	commit()
	return amountOut, nil
}

func (k *Keeper) swap(ctx types.Context, trader string, params types.QuoteParams, minAmountOut math.Int, protectionFlags uint32) (math.Int, error) {
	if params.Trader == "" {
		params.Trader = trader
	}
	if err := params.Validate(); err != nil {
		return math.ZeroInt(), err
	}

	poolID, err := types.AssemblePoolID(params.AssetA, params.AssetB, params.Strategy, params.Marking)
	if err != nil {
		return math.ZeroInt(), err
	}
	if zeroForOne := params.AssetA == poolID.Asset0; zeroForOne != params.ZeroForOne {
		return math.ZeroInt(), types.ErrInvalidRoute.Wrap("swap direction inconsistent with asset pair")
	}
	if err := k.CheckPoolCircuitBreaker(ctx, poolID); err != nil {
		return math.ZeroInt(), err
	}

	user, inSession := k.resolveBeneficiary(ctx, trader)
	if err := k.CheckTraderProtections(ctx, trader, user, protectionFlags, params.AmountIn); err != nil {
		return math.ZeroInt(), err
	}

	var amountOut math.Int
	err = k.withPoolGuard(ctx, poolID, func() error {
		var guarded error
		amountOut, guarded = k.swapLocked(ctx, newBridgeCache(), trader, user, inSession, poolID, params, minAmountOut)
		return guarded
	})
	if err != nil {
		return math.ZeroInt(), err
	}
	return amountOut, nil
}

func (k *Keeper) swapLocked(ctx types.Context, cache *bridgeCache, trader, user string, inSession bool, poolID types.PoolID, params types.QuoteParams, minAmountOut math.Int) (math.Int, error) {
	if !k.HasPool(ctx, poolID) {
		return math.ZeroInt(), types.ErrPoolNotFound.Wrapf("pool %s", poolID)
	}
	reserve0, reserve1 := k.GetInventory(ctx, poolID)

	amountOut, _, err := k.getQuote(ctx, cache, params, reserve0, reserve1)
	if err != nil {
		return math.ZeroInt(), err
	}
	if amountOut.IsZero() {
		return math.ZeroInt(), types.ErrQuoteUnavailable.Wrapf("pool %s", poolID)
	}

	reserveOut := reserve1
	if !params.ZeroForOne {
		reserveOut = reserve0
	}
	if amountOut.GTE(reserveOut) {
		return math.ZeroInt(), types.ErrInsufficientReserves.Wrapf(
			"quote %s exceeds reserve %s in pool %s", amountOut, reserveOut, poolID)
	}
	if !minAmountOut.IsNil() && amountOut.LT(minAmountOut) {
		return math.ZeroInt(), types.ErrSlippage.Wrapf("amount out %s below minimum %s", amountOut, minAmountOut)
	}

	// Inventory deltas in canonical order.
	delta0, delta1 := params.AmountIn, amountOut.Neg()
	if !params.ZeroForOne {
		delta0, delta1 = amountOut.Neg(), params.AmountIn
	}
	if err := k.ApplyDelta(ctx, poolID, delta0, delta1); err != nil {
		return math.ZeroInt(), err
	}

	// User-facing deltas: owes the input, is owed the output.
	tokenIn, tokenOut := poolID.Asset0, poolID.Asset1
	if !params.ZeroForOne {
		tokenIn, tokenOut = poolID.Asset1, poolID.Asset0
	}
	if err := k.recordOrSettle(ctx, trader, user, tokenIn, params.AmountIn.Neg(), inSession); err != nil {
		return math.ZeroInt(), err
	}
	if err := k.recordOrSettle(ctx, trader, user, tokenOut, amountOut, inSession); err != nil {
		return math.ZeroInt(), err
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeSwap,
		types.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
		types.NewAttribute(types.AttributeKeyTrader, trader),
		types.NewAttribute(types.AttributeKeyBeneficiary, user),
		types.NewAttribute(types.AttributeKeyToken, tokenIn),
		types.NewAttribute(types.AttributeKeyAmountIn, params.AmountIn.String()),
		types.NewAttribute(types.AttributeKeyAmountOut, amountOut.String()),
	))
	if k.metrics != nil {
		k.metrics.SwapsTotal.WithLabelValues("ok").Inc()
		k.metrics.SwapVolume.WithLabelValues(tokenIn).Add(intToFloat(params.AmountIn))
	}
	return amountOut, nil
}

// QuoteOnly prices a swap without executing it.
func (k *Keeper) QuoteOnly(ctx types.Context, params types.QuoteParams) (math.Int, types.PoolID, error) {
	if err := params.Validate(); err != nil {
		return math.ZeroInt(), types.PoolID{}, err
	}
	poolID, err := types.AssemblePoolID(params.AssetA, params.AssetB, params.Strategy, params.Marking)
	if err != nil {
		return math.ZeroInt(), types.PoolID{}, err
	}
	reserve0, reserve1 := k.GetInventory(ctx, poolID)
	return k.GetQuote(ctx, params, reserve0, reserve1)
}
