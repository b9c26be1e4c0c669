package keeper

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// BatchSwap routes amountIn through a multi-hop path, splitting each hop
// across its legs. Leg amounts on the first hop are absolute and must sum
// to amountIn; on later hops they act as weights apportioning whatever the
// previous hop produced. When the trader has no open flash session the
// call wraps itself in one, so only the path's endpoints settle against
// the trader and the intermediate tokens net to zero.
func (k *Keeper) BatchSwap(
	ctx types.Context,
	trader string,
	hops []types.SwapHop,
	amountIn, minAmountOut math.Int,
	protectionFlags uint32,
) (math.Int, error) {
	bctx, commit := k.branch(ctx)

	amountOut, err := k.batchSwap(bctx, trader, hops, amountIn, minAmountOut, protectionFlags)
	if err != nil {
		return math.ZeroInt(), err
	}

	commit()
	return amountOut, nil
}

func (k *Keeper) batchSwap(
	ctx types.Context,
	trader string,
	hops []types.SwapHop,
	amountIn, minAmountOut math.Int,
	protectionFlags uint32,
) (math.Int, error) {
	if err := validateRoute(hops); err != nil {
		return math.ZeroInt(), err
	}
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return math.ZeroInt(), types.ErrInvalidAmount.Wrap("batch amount in must be positive")
	}

	user, inSession := k.resolveBeneficiary(ctx, trader)
	if err := k.CheckTraderProtections(ctx, trader, user, protectionFlags, amountIn); err != nil {
		return math.ZeroInt(), err
	}

	// Wrap the route in an internal session so intermediate tokens net out
	// and only the endpoints reach the trader.
	wrapped := !inSession
	if wrapped {
		if _, err := k.StartSession(ctx, trader); err != nil {
			return math.ZeroInt(), err
		}
		if err := k.SetActiveUser(ctx, trader, trader); err != nil {
			return math.ZeroInt(), err
		}
		user = trader
	}

	cache := newBridgeCache()
	carried := amountIn
	for i, hop := range hops {
		hopOut, err := k.executeHop(ctx, cache, trader, user, i, hop, carried, i == 0, amountIn)
		if err != nil {
			return math.ZeroInt(), err
		}
		carried = hopOut
	}

	if !minAmountOut.IsNil() && carried.LT(minAmountOut) {
		return math.ZeroInt(), types.ErrSlippage.Wrapf("route output %s below minimum %s", carried, minAmountOut)
	}

	if wrapped {
		if err := k.SettleSession(ctx, trader, user, routeTokens(hops), math.ZeroInt()); err != nil {
			return math.ZeroInt(), err
		}
		if err := k.EndSession(ctx, trader); err != nil {
			return math.ZeroInt(), err
		}
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeBatchSwap,
		types.NewAttribute(types.AttributeKeyTrader, trader),
		types.NewAttribute(types.AttributeKeyHops, fmt.Sprintf("%d", len(hops))),
		types.NewAttribute(types.AttributeKeyToken, hops[0].AssetIn),
		types.NewAttribute(types.AttributeKeyAmountIn, amountIn.String()),
		types.NewAttribute(types.AttributeKeyAmountOut, carried.String()),
	))
	return carried, nil
}

// executeHop splits the carried amount across the hop's legs and swaps
// each leg in its own pool. firstHop legs carry absolute amounts that must
// sum to the route input; later legs are weights.
func (k *Keeper) executeHop(
	ctx types.Context,
	cache *bridgeCache,
	trader, user string,
	index int,
	hop types.SwapHop,
	carried math.Int,
	firstHop bool,
	routeInput math.Int,
) (math.Int, error) {
	totalWeight := math.ZeroInt()
	for _, leg := range hop.Legs {
		if leg.Amount.IsNil() || !leg.Amount.IsPositive() {
			return math.ZeroInt(), types.ErrInvalidRoute.Wrapf("hop %d has a non-positive leg amount", index)
		}
		totalWeight = totalWeight.Add(leg.Amount)
	}
	if firstHop && !totalWeight.Equal(routeInput) {
		return math.ZeroInt(), types.ErrInvalidRoute.Wrapf(
			"first hop leg amounts sum to %s, want %s", totalWeight, routeInput)
	}

	hopOut := math.ZeroInt()
	assigned := math.ZeroInt()
	for j, leg := range hop.Legs {
		var legIn math.Int
		if j == len(hop.Legs)-1 {
			legIn = carried.Sub(assigned)
		} else {
			var err error
			legIn, err = mulDiv(carried, leg.Amount, totalWeight)
			if err != nil {
				return math.ZeroInt(), err
			}
		}
		if legIn.IsZero() {
			continue
		}
		assigned = assigned.Add(legIn)

		params := types.QuoteParams{
			AssetA:     hop.AssetIn,
			AssetB:     hop.AssetOut,
			Strategy:   hop.Strategy,
			Marking:    leg.Marking,
			AmountIn:   legIn,
			ZeroForOne: hop.AssetIn < hop.AssetOut,
			Trader:     trader,
		}
		poolID, err := types.AssemblePoolID(params.AssetA, params.AssetB, params.Strategy, params.Marking)
		if err != nil {
			return math.ZeroInt(), err
		}
		if err := k.CheckPoolCircuitBreaker(ctx, poolID); err != nil {
			return math.ZeroInt(), err
		}

		var legOut math.Int
		err = k.withPoolGuard(ctx, poolID, func() error {
			var guarded error
			legOut, guarded = k.swapLocked(ctx, cache, trader, user, true, poolID, params, math.ZeroInt())
			return guarded
		})
		if err != nil {
			return math.ZeroInt(), err
		}
		hopOut = hopOut.Add(legOut)
	}
	if hopOut.IsZero() {
		return math.ZeroInt(), types.ErrQuoteUnavailable.Wrapf("hop %d produced no output", index)
	}
	return hopOut, nil
}

func validateRoute(hops []types.SwapHop) error {
	if len(hops) == 0 {
		return types.ErrInvalidRoute.Wrap("route has no hops")
	}
	if len(hops) > types.MaxBatchHops {
		return types.ErrInvalidRoute.Wrapf("route has %d hops, maximum is %d", len(hops), types.MaxBatchHops)
	}
	for i, hop := range hops {
		if len(hop.Legs) == 0 {
			return types.ErrInvalidRoute.Wrapf("hop %d has no legs", i)
		}
		if i > 0 && hop.AssetIn != hops[i-1].AssetOut {
			return types.ErrInvalidRoute.Wrapf(
				"hop %d input %s does not continue from %s", i, hop.AssetIn, hops[i-1].AssetOut)
		}
	}
	return nil
}

// routeTokens returns the distinct tokens a route touches, in path order.
func routeTokens(hops []types.SwapHop) []string {
	seen := make(map[string]struct{}, len(hops)+1)
	tokens := make([]string, 0, len(hops)+1)
	add := func(token string) {
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	for _, hop := range hops {
		add(hop.AssetIn)
		add(hop.AssetOut)
	}
	return tokens
}
