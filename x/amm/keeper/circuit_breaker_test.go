package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/fluxdex/fluxdex/x/amm/testutil"
	"github.com/fluxdex/fluxdex/x/amm/types"
)

func TestGlobalCircuitBreaker(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	seedPool(t, f, ctx, 130000, 1000)
	f.Bank.Mint(ctx, trader, "weth", math.NewInt(1))

	require.NoError(t, f.Keeper.OpenCircuitBreaker(ctx, "ops", "price anomaly"))

	state, open := f.Keeper.GetCircuitBreaker(ctx, nil)
	require.True(t, open)
	require.Equal(t, "ops", state.Actor)
	require.Equal(t, "price anomaly", state.Reason)
	require.Equal(t, int64(1), state.OpenedAt)

	// a second open is an error
	require.ErrorIs(t, f.Keeper.OpenCircuitBreaker(ctx, "ops", "again"), types.ErrCircuitBreakerOpen)

	// everything trading is halted
	_, err := f.Keeper.Swap(ctx, trader, swapParams(1, false), math.ZeroInt(), 0)
	require.ErrorIs(t, err, types.ErrCircuitBreakerOpen)

	f.Bank.Mint(ctx, lp, "usdc", math.NewInt(1000))
	f.Bank.Mint(ctx, lp, "weth", math.NewInt(10))
	_, err = f.Keeper.AddLiquidity(ctx, lp, "usdc", "weth",
		testutil.ConstantProductHandle, 0, math.NewInt(1000), math.NewInt(7))
	require.ErrorIs(t, err, types.ErrCircuitBreakerOpen)

	require.NoError(t, f.Keeper.CloseCircuitBreaker(ctx, "ops"))
	_, err = f.Keeper.Swap(ctx, trader, swapParams(1, false), math.ZeroInt(), 0)
	require.NoError(t, err)

	require.ErrorIs(t, f.Keeper.CloseCircuitBreaker(ctx, "ops"), types.ErrCircuitBreakerNotOpen)
}

func TestPoolCircuitBreakerIsScoped(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	haltedPool := seedPool(t, f, ctx, 130000, 1000)

	// a second, unaffected pool
	f.Bank.Mint(ctx, lp, "atom", math.NewInt(13000))
	f.Bank.Mint(ctx, lp, "usdc", math.NewInt(130000))
	_, err := f.Keeper.AddLiquidity(ctx, lp, "atom", "usdc",
		testutil.ConstantProductHandle, 0, math.NewInt(13000), math.NewInt(130000))
	require.NoError(t, err)

	require.NoError(t, f.Keeper.OpenPoolCircuitBreaker(ctx, haltedPool, "ops", "oracle gap"))

	f.Bank.Mint(ctx, trader, "weth", math.NewInt(1))
	_, err = f.Keeper.Swap(ctx, trader, swapParams(1, false), math.ZeroInt(), 0)
	require.ErrorIs(t, err, types.ErrCircuitBreakerOpen)

	// the other pool trades on
	f.Bank.Mint(ctx, trader, "atom", math.NewInt(1))
	_, err = f.Keeper.Swap(ctx, trader, types.QuoteParams{
		AssetA:     "atom",
		AssetB:     "usdc",
		Strategy:   testutil.ConstantProductHandle,
		AmountIn:   math.NewInt(1),
		ZeroForOne: true,
	}, math.ZeroInt(), 0)
	require.NoError(t, err)

	require.NoError(t, f.Keeper.ClosePoolCircuitBreaker(ctx, haltedPool, "ops"))
	_, err = f.Keeper.Swap(ctx, trader, swapParams(1, false), math.ZeroInt(), 0)
	require.NoError(t, err)
}
