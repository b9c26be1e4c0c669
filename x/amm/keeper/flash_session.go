package keeper

import (
	"cosmossdk.io/math"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// FlashSession opens a flash-accounting session for owner, runs the
// callback, settles every delta accumulated by operations the callback
// performed and closes the session. The whole call is atomic: a callback
// error, a settlement failure or a residual unsettled delta rolls back
// everything including the callback's own writes.
//
// tokenScope lists the tokens settlement may touch; deltas on tokens
// outside the scope surface as ErrUnsettledDeltas when the session ends.
// nativeSupplied is value the owner provided up front (e.g. attached
// native funds) and is consumed once against the native denom's net.
func (k *Keeper) FlashSession(
	ctx types.Context,
	owner string,
	callback types.FlashCallback,
	data []byte,
	tokenScope []string,
	nativeSupplied math.Int,
) error {
	bctx, commit := k.branch(ctx)

	err := k.withSessionGuard(bctx, owner, func() error {
		return k.runFlashSession(bctx, owner, callback, data, tokenScope, nativeSupplied)
	})
	if err != nil {
		return err
	}

	commit()
	return nil
}

func (k *Keeper) runFlashSession(
	ctx types.Context,
	owner string,
	callback types.FlashCallback,
	data []byte,
	tokenScope []string,
	nativeSupplied math.Int,
) error {
	if callback == nil {
		return types.ErrInvalidAmount.Wrap("nil flash callback")
	}

	sessionID, err := k.StartSession(ctx, owner)
	if err != nil {
		return err
	}
	if err := k.SetActiveUser(ctx, owner, owner); err != nil {
		return err
	}
	k.logger.Debug("flash session opened", "owner", owner, "session_id", sessionID)

	// The callback re-enters the engine through the ordinary entry points;
	// their swaps and liquidity changes record deltas against this session
	// instead of settling immediately.
	if err := callback.Execute(ctx, data); err != nil {
		return err
	}

	// The callback may have handed the session to a different beneficiary.
	user := owner
	if active, ok := k.GetActiveUser(ctx, owner); ok {
		user = active
	}
	if err := k.SettleSession(ctx, owner, user, tokenScope, nativeSupplied); err != nil {
		return err
	}
	return k.EndSession(ctx, owner)
}
