package keeper

import (
	"cosmossdk.io/math"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// SetEmergencyAtomicMode forces every swap through the given atomic
// execution mode regardless of its trader flags. Intended for incident
// response; cleared with ClearEmergencyAtomicMode.
func (k *Keeper) SetEmergencyAtomicMode(ctx types.Context, mode uint8) error {
	if mode > types.AtomicModeMax {
		return types.ErrInvalidParams.Wrapf("atomic mode %d out of range", mode)
	}
	ctx.KVStore().Set(EmergencyAtomicKey, []byte{mode})
	k.logger.Warn("emergency atomic mode set", "mode", mode)
	return nil
}

// ClearEmergencyAtomicMode removes the forced atomic mode.
func (k *Keeper) ClearEmergencyAtomicMode(ctx types.Context) {
	ctx.KVStore().Delete(EmergencyAtomicKey)
	k.logger.Info("emergency atomic mode cleared")
}

// GetEmergencyAtomicMode returns the forced mode and whether one is set.
func (k *Keeper) GetEmergencyAtomicMode(ctx types.Context) (uint8, bool) {
	bz := ctx.KVStore().Get(EmergencyAtomicKey)
	if len(bz) != 1 {
		return 0, false
	}
	return bz[0], true
}

// CheckTraderProtections enforces the trader's opted-in protection modes
// before a swap executes. A zero flags word with no emergency override is
// the fast path and costs a single store read.
func (k *Keeper) CheckTraderProtections(ctx types.Context, trader, beneficiary string, flags uint32, amountIn math.Int) error {
	forced, emergency := k.GetEmergencyAtomicMode(ctx)
	if flags == 0 && !emergency {
		return nil
	}

	f := types.DecodeTraderFlags(flags)
	mode := f.AtomicMode
	if emergency {
		mode = forced
	}
	if err := k.checkAtomicMode(ctx, beneficiary, mode); err != nil {
		k.rejectProtection("atomic")
		return err
	}

	if f.AccessMode > 0 {
		if err := k.policy.CheckAccess(ctx, trader, f.AccessMode); err != nil {
			k.rejectProtection("access")
			return types.ErrProtectionDenied.Wrapf("access mode %d: %s", f.AccessMode, err)
		}
	}
	if f.VolumeMode > 0 {
		if err := k.policy.CheckVolume(ctx, trader, f.VolumeMode, amountIn); err != nil {
			k.rejectProtection("volume")
			return types.ErrProtectionDenied.Wrapf("volume mode %d: %s", f.VolumeMode, err)
		}
	}
	if f.BreakerMode > 0 {
		// Trader opted into breaker sensitivity: reject while the global
		// breaker is open even for operations that would otherwise be
		// allowed to queue.
		if _, open := k.GetCircuitBreaker(ctx, nil); open {
			k.rejectProtection("breaker")
			return types.ErrCircuitBreakerOpen.Wrap("trader opted into breaker enforcement")
		}
	}
	return nil
}

func (k *Keeper) checkAtomicMode(ctx types.Context, beneficiary string, mode uint8) error {
	switch {
	case mode == types.AtomicModeDisabled:
		return nil
	case mode == types.AtomicModeSessionOnly:
		if !k.IsSessionActive(ctx, beneficiary) {
			return types.ErrSessionRequired.Wrapf("beneficiary %s has no active session", beneficiary)
		}
		return nil
	case mode >= types.AtomicModeBatchBase && mode <= types.AtomicModeMax:
		window := int(mode - types.AtomicModeBatchBase)
		cfg := k.GetParams(ctx).BatchWindows[window]
		if !cfg.Enabled {
			return types.ErrExecutionWindowClosed.Wrapf("batch window %d disabled", window)
		}
		if !cfg.IsActive(ctx.BlockHeight()) {
			return types.ErrExecutionWindowClosed.Wrapf(
				"batch window %d closed at height %d (cycle %d, settlement %d)",
				window, ctx.BlockHeight(), cfg.CycleLength, cfg.SettlementBlocks)
		}
		return nil
	default:
		// Reserved modes are a no-op until the upstream protocol assigns
		// them semantics.
		return nil
	}
}

func (k *Keeper) rejectProtection(reason string) {
	if k.metrics != nil {
		k.metrics.ProtectionRejections.WithLabelValues(reason).Inc()
	}
}
