package keeper_test

import (
	"math/big"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/fluxdex/fluxdex/x/amm/testutil"
	"github.com/fluxdex/fluxdex/x/amm/types"
)

func testPoolID(t *testing.T) types.PoolID {
	t.Helper()
	poolID, err := types.AssemblePoolID("usdc", "weth", testutil.ConstantProductHandle, 0)
	require.NoError(t, err)
	return poolID
}

func TestInventoryPacking(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	poolID := testPoolID(t)

	// empty slot reads as zero reserves
	r0, r1 := f.Keeper.GetInventory(ctx, poolID)
	require.True(t, r0.IsZero())
	require.True(t, r1.IsZero())

	require.NoError(t, f.Keeper.ApplyDelta(ctx, poolID, math.NewInt(1300), math.NewInt(7)))
	r0, r1 = f.Keeper.GetInventory(ctx, poolID)
	require.Equal(t, math.NewInt(1300), r0)
	require.Equal(t, math.NewInt(7), r1)

	// both halves move as one unit
	require.NoError(t, f.Keeper.ApplyDelta(ctx, poolID, math.NewInt(-300), math.NewInt(5)))
	r0, r1 = f.Keeper.GetInventory(ctx, poolID)
	require.Equal(t, math.NewInt(1000), r0)
	require.Equal(t, math.NewInt(12), r1)
}

func TestInventoryPackingExtremes(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	poolID := testPoolID(t)

	max128 := math.NewIntFromBigInt(new(big.Int).Sub(
		new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)))

	// a full 128-bit reserve in each half survives the round trip without
	// bleeding into the other half
	require.NoError(t, f.Keeper.ApplyDelta(ctx, poolID, max128, math.NewInt(1)))
	r0, r1 := f.Keeper.GetInventory(ctx, poolID)
	require.Equal(t, max128, r0)
	require.Equal(t, math.NewInt(1), r1)

	// one more unit on reserve0 no longer fits
	err := f.Keeper.ApplyDelta(ctx, poolID, math.NewInt(1), math.ZeroInt())
	require.ErrorIs(t, err, types.ErrOverflow)

	// the failed write left the slot untouched
	r0, r1 = f.Keeper.GetInventory(ctx, poolID)
	require.Equal(t, max128, r0)
	require.Equal(t, math.NewInt(1), r1)
}

func TestApplyDeltaUnderflow(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	poolID := testPoolID(t)

	require.NoError(t, f.Keeper.ApplyDelta(ctx, poolID, math.NewInt(100), math.NewInt(100)))

	// the ledger never clamps: draining below zero is a state error
	err := f.Keeper.ApplyDelta(ctx, poolID, math.NewInt(-101), math.ZeroInt())
	require.ErrorIs(t, err, types.ErrInvalidPoolState)

	r0, r1 := f.Keeper.GetInventory(ctx, poolID)
	require.Equal(t, math.NewInt(100), r0)
	require.Equal(t, math.NewInt(100), r1)
}

func TestSharePositions(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	poolID := testPoolID(t)

	require.True(t, f.Keeper.GetShares(ctx, poolID, trader).IsZero())

	require.NoError(t, f.Keeper.SetShares(ctx, poolID, trader, math.NewInt(500)))
	require.Equal(t, math.NewInt(500), f.Keeper.GetShares(ctx, poolID, trader))

	// setting to zero deletes the position
	require.NoError(t, f.Keeper.SetShares(ctx, poolID, trader, math.ZeroInt()))
	require.True(t, f.Keeper.GetShares(ctx, poolID, trader).IsZero())
}

func TestPoolMetadata(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(42)
	poolID := testPoolID(t)

	_, err := f.Keeper.GetPool(ctx, poolID)
	require.ErrorIs(t, err, types.ErrPoolNotFound)
	require.False(t, f.Keeper.HasPool(ctx, poolID))

	pool := types.NewPool(poolID, ctx.BlockHeight())
	require.NoError(t, f.Keeper.SetPool(ctx, pool))

	stored, err := f.Keeper.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, pool, stored)
	require.True(t, f.Keeper.HasPool(ctx, poolID))
}
