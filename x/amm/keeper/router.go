package keeper

import (
	"encoding/binary"

	"cosmossdk.io/math"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// The quote router gathers bridge payloads for a pool's marking, assembles
// them into one routed payload, and delegates pricing to the pool's
// strategy. Bridge responses are memoized per logical call keyed by bridge
// handle, so hops and buckets sharing a bridge cost one fetch.

type bridgeCache struct {
	data map[uint8][]byte
}

func newBridgeCache() *bridgeCache {
	return &bridgeCache{data: make(map[uint8][]byte)}
}

// fetch returns a bridge payload, memoized. A bridge that is missing,
// errors, or returns nothing degrades to "no data": the failure never
// propagates, and the miss itself is cached.
func (k *Keeper) fetch(ctx types.Context, cache *bridgeCache, handle uint8, qc types.QuoteContext) []byte {
	if payload, ok := cache.data[handle]; ok {
		if k.metrics != nil {
			k.metrics.BridgeCacheHits.Inc()
		}
		return payload
	}

	var payload []byte
	if bridge, ok := k.bridges.Get(handle); ok {
		data, err := bridge.GetData(ctx, qc)
		if err != nil {
			k.logger.Debug("data bridge failed, degrading to empty payload",
				"handle", handle, "error", err)
		} else {
			payload = data
		}
		if k.metrics != nil {
			k.metrics.BridgeFetches.Inc()
		}
	}

	cache.data[handle] = payload
	return payload
}

// routePayload assembles the payload bundle for one marking.
func (k *Keeper) routePayload(ctx types.Context, cache *bridgeCache, params types.QuoteParams, poolID types.PoolID) types.RoutedPayload {
	marking := poolID.DecodedMarking()
	qc := types.QuoteContext{
		Asset0:     poolID.Asset0,
		Asset1:     poolID.Asset1,
		BucketID:   marking.BucketID,
		AmountIn:   params.AmountIn,
		ZeroForOne: params.ZeroForOne,
	}

	payload := types.RoutedPayload{BucketID: marking.BucketID}
	for i := uint8(0); i < types.DefaultBridgeCount; i++ {
		if marking.BridgeFlags[i] {
			payload.BridgePayloads[i] = k.fetch(ctx, cache, i, qc)
		}
	}
	if marking.HasExtraBridge() {
		payload.ExtraPayload = k.fetch(ctx, cache, ExtraSlotHandle(marking.ExtraSlot), qc)
	}
	if marking.EnhancedContext {
		payload.ContextPayload = k.encodeTraderContext(ctx, params.Trader)
	}
	return payload
}

// encodeTraderContext packs the enhanced-context payload: timestamp, block
// number, gas price, and whether the trader has an active session.
// Fixed layout: 8+8+8+1 bytes, big endian, gas price saturating at uint64.
func (k *Keeper) encodeTraderContext(ctx types.Context, trader string) []byte {
	buf := make([]byte, 0, 25)
	buf = binary.BigEndian.AppendUint64(buf, uint64(ctx.BlockTime().Unix()))
	buf = binary.BigEndian.AppendUint64(buf, uint64(ctx.BlockHeight()))

	gasPrice := uint64(0)
	if p := ctx.GasPrice(); !p.IsNil() && p.IsPositive() {
		if p.IsUint64() {
			gasPrice = p.Uint64()
		} else {
			gasPrice = ^uint64(0)
		}
	}
	buf = binary.BigEndian.AppendUint64(buf, gasPrice)

	active := byte(0)
	if trader != "" && k.IsSessionActive(ctx, trader) {
		active = 1
	}
	return append(buf, active)
}

// GetQuote prices one swap against the supplied reserves. A zero amount
// out means the strategy has no price; the caller surfaces it as
// ErrQuoteUnavailable.
func (k *Keeper) GetQuote(ctx types.Context, params types.QuoteParams, reserve0, reserve1 math.Int) (math.Int, types.PoolID, error) {
	return k.getQuote(ctx, newBridgeCache(), params, reserve0, reserve1)
}

func (k *Keeper) getQuote(ctx types.Context, cache *bridgeCache, params types.QuoteParams, reserve0, reserve1 math.Int) (math.Int, types.PoolID, error) {
	poolID, err := types.AssemblePoolID(params.AssetA, params.AssetB, params.Strategy, params.Marking)
	if err != nil {
		return math.ZeroInt(), types.PoolID{}, err
	}

	strategy, ok := k.strategies.Get(params.Strategy)
	if !ok {
		return math.ZeroInt(), poolID, types.ErrStrategyNotFound.Wrapf("handle %d", params.Strategy)
	}

	payload := k.routePayload(ctx, cache, params, poolID)
	amountOut, err := strategy.Quote(ctx, params, reserve0, reserve1, payload)
	if err != nil {
		// A failing strategy cannot price this trade; downstream this is
		// indistinguishable from "no price".
		k.logger.Debug("strategy quote failed", "pool", poolID.String(), "error", err)
		return math.ZeroInt(), poolID, nil
	}
	if amountOut.IsNil() || amountOut.IsNegative() {
		return math.ZeroInt(), poolID, nil
	}
	return amountOut, poolID, nil
}

// GetQuoteBatch prices several markings of one asset pair, amortizing
// bridge fetches across the batch through the shared memo cache.
func (k *Keeper) GetQuoteBatch(ctx types.Context, paramsList []types.QuoteParams) ([]math.Int, []types.PoolID, error) {
	cache := newBridgeCache()
	amounts := make([]math.Int, len(paramsList))
	poolIDs := make([]types.PoolID, len(paramsList))

	for i, params := range paramsList {
		if i > 0 {
			prev := paramsList[i-1]
			samePair := (params.AssetA == prev.AssetA && params.AssetB == prev.AssetB) ||
				(params.AssetA == prev.AssetB && params.AssetB == prev.AssetA)
			if !samePair {
				return nil, nil, types.ErrInvalidRoute.Wrap("batch quotes must share one asset pair")
			}
		}

		poolID, err := types.AssemblePoolID(params.AssetA, params.AssetB, params.Strategy, params.Marking)
		if err != nil {
			return nil, nil, err
		}
		reserve0, reserve1 := k.GetInventory(ctx, poolID)

		amounts[i], poolIDs[i], err = k.getQuote(ctx, cache, params, reserve0, reserve1)
		if err != nil {
			return nil, nil, err
		}
	}
	return amounts, poolIDs, nil
}
