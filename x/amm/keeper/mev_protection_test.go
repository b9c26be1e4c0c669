package keeper_test

import (
	"errors"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/fluxdex/fluxdex/x/amm/keeper"
	"github.com/fluxdex/fluxdex/x/amm/testutil"
	"github.com/fluxdex/fluxdex/x/amm/types"
)

func protectionFlags(f types.TraderFlags) uint32 { return f.Encode() }

func TestZeroFlagsFastPath(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)

	err := f.Keeper.CheckTraderProtections(ctx, trader, trader, 0, math.NewInt(1))
	require.NoError(t, err)
}

func TestSessionOnlyMode(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	flags := protectionFlags(types.TraderFlags{AtomicMode: types.AtomicModeSessionOnly})

	err := f.Keeper.CheckTraderProtections(ctx, trader, trader, flags, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrSessionRequired)

	_, err = f.Keeper.StartSession(ctx, trader)
	require.NoError(t, err)
	require.NoError(t, f.Keeper.CheckTraderProtections(ctx, trader, trader, flags, math.NewInt(1)))

	// the session that matters is the beneficiary's
	err = f.Keeper.CheckTraderProtections(ctx, bob, bob, flags, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrSessionRequired)
	require.NoError(t, f.Keeper.CheckTraderProtections(ctx, bob, trader, flags, math.NewInt(1)))
}

func TestBatchWindowModes(t *testing.T) {
	f := testutil.Setup()

	// mode 2 selects window 0: cycle 5, settlement 2
	flags := protectionFlags(types.TraderFlags{AtomicMode: types.AtomicModeBatchBase})

	for height := int64(0); height <= 12; height++ {
		err := f.Keeper.CheckTraderProtections(f.Context(height), trader, trader, flags, math.NewInt(1))
		if height%5 < 2 {
			require.NoError(t, err, "height %d", height)
		} else {
			require.ErrorIs(t, err, types.ErrExecutionWindowClosed, "height %d", height)
		}
	}
}

func TestBatchWindowDisabled(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(0)

	params := types.DefaultParams()
	params.BatchWindows[0].Enabled = false
	require.NoError(t, f.Keeper.SetParams(ctx, params))

	flags := protectionFlags(types.TraderFlags{AtomicMode: types.AtomicModeBatchBase})
	err := f.Keeper.CheckTraderProtections(ctx, trader, trader, flags, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrExecutionWindowClosed)
}

func TestEmergencyAtomicModeOverride(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)

	// out-of-range mode is rejected
	require.ErrorIs(t, f.Keeper.SetEmergencyAtomicMode(ctx, types.AtomicModeMax+1), types.ErrInvalidParams)

	require.NoError(t, f.Keeper.SetEmergencyAtomicMode(ctx, types.AtomicModeSessionOnly))

	// even a zero-flags trader is now forced through session-only
	err := f.Keeper.CheckTraderProtections(ctx, trader, trader, 0, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrSessionRequired)

	// the override also wins over the trader's own mode
	flags := protectionFlags(types.TraderFlags{AtomicMode: types.AtomicModeBatchBase})
	err = f.Keeper.CheckTraderProtections(ctx, trader, trader, flags, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrSessionRequired)

	f.Keeper.ClearEmergencyAtomicMode(ctx)
	require.NoError(t, f.Keeper.CheckTraderProtections(ctx, trader, trader, 0, math.NewInt(1)))
}

// denyPolicy rejects configured modes.
type denyPolicy struct {
	denyAccess bool
	denyVolume bool
}

func (p denyPolicy) CheckAccess(_ types.Context, _ string, _ uint8) error {
	if p.denyAccess {
		return errors.New("access denied")
	}
	return nil
}

func (p denyPolicy) CheckVolume(_ types.Context, _ string, _ uint8, _ math.Int) error {
	if p.denyVolume {
		return errors.New("volume cap hit")
	}
	return nil
}

func TestAccessAndVolumePolicies(t *testing.T) {
	f := testutil.Setup(keeper.WithProtectionPolicy(denyPolicy{denyAccess: true}))
	ctx := f.Context(1)

	flags := protectionFlags(types.TraderFlags{AccessMode: 1})
	err := f.Keeper.CheckTraderProtections(ctx, trader, trader, flags, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrProtectionDenied)

	// not opted in: the policy is never consulted
	require.NoError(t, f.Keeper.CheckTraderProtections(ctx, trader, trader, 0, math.NewInt(1)))

	f = testutil.Setup(keeper.WithProtectionPolicy(denyPolicy{denyVolume: true}))
	ctx = f.Context(1)

	flags = protectionFlags(types.TraderFlags{VolumeMode: 2})
	err = f.Keeper.CheckTraderProtections(ctx, trader, trader, flags, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrProtectionDenied)
}

func TestBreakerModeOptIn(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	flags := protectionFlags(types.TraderFlags{BreakerMode: 1})

	require.NoError(t, f.Keeper.CheckTraderProtections(ctx, trader, trader, flags, math.NewInt(1)))

	require.NoError(t, f.Keeper.OpenCircuitBreaker(ctx, "ops", "drill"))
	err := f.Keeper.CheckTraderProtections(ctx, trader, trader, flags, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrCircuitBreakerOpen)
}

func TestReservedAtomicModesAreNoOps(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(3) // window heights would reject here

	flags := protectionFlags(types.TraderFlags{AtomicMode: 15})
	require.NoError(t, f.Keeper.CheckTraderProtections(ctx, trader, trader, flags, math.NewInt(1)))
}
