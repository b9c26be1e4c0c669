package keeper

import (
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/google/uuid"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// Flash accounting sessions. While a session is active for an owner, every
// operation records signed (user, token) deltas instead of transferring,
// and the whole composition nets to one transfer per token at settlement.
// At most one session per owner; sessions of different owners are fully
// independent.

// StartSession opens a flash session for owner. A nested start for the
// same owner fails.
func (k *Keeper) StartSession(ctx types.Context, owner string) (string, error) {
	store := ctx.KVStore()
	key := SessionActiveKey(owner)
	if store.Has(key) {
		return "", types.ErrSessionActive.Wrapf("owner %s", owner)
	}

	sessionID := uuid.NewString()
	store.Set(key, []byte(sessionID))

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeSessionStart,
		types.NewAttribute(types.AttributeKeyOwner, owner),
		types.NewAttribute(types.AttributeKeySessionID, sessionID),
	))
	if k.metrics != nil {
		k.metrics.SessionsStarted.Inc()
	}
	return sessionID, nil
}

// IsSessionActive reports whether owner has an open session. It is the
// dispatch gate consulted by every component: true defers settlement,
// false settles immediately.
func (k *Keeper) IsSessionActive(ctx types.Context, owner string) bool {
	return ctx.KVStore().Has(SessionActiveKey(owner))
}

// SessionID returns the trace id of an owner's open session.
func (k *Keeper) SessionID(ctx types.Context, owner string) (string, bool) {
	bz := ctx.KVStore().Get(SessionActiveKey(owner))
	if bz == nil {
		return "", false
	}
	return string(bz), true
}

// SetActiveUser records who benefits from pending operations, so nested
// internal calls need not re-pass an address.
func (k *Keeper) SetActiveUser(ctx types.Context, owner, user string) error {
	if !k.IsSessionActive(ctx, owner) {
		return types.ErrNoActiveSession.Wrapf("owner %s", owner)
	}
	ctx.KVStore().Set(SessionUserKey(owner), []byte(user))
	return nil
}

// GetActiveUser returns the session beneficiary, or false when unset.
func (k *Keeper) GetActiveUser(ctx types.Context, owner string) (string, bool) {
	bz := ctx.KVStore().Get(SessionUserKey(owner))
	if bz == nil {
		return "", false
	}
	return string(bz), true
}

// ClearActiveUser removes the session beneficiary.
func (k *Keeper) ClearActiveUser(ctx types.Context, owner string) {
	ctx.KVStore().Delete(SessionUserKey(owner))
}

// GetSessionDelta returns the pending signed delta for (user, token) in
// owner's session.
func (k *Keeper) GetSessionDelta(ctx types.Context, owner, user, token string) math.Int {
	bz := ctx.KVStore().Get(SessionDeltaKey(owner, user, token))
	if bz == nil {
		return math.ZeroInt()
	}

	var delta math.Int
	if err := delta.Unmarshal(bz); err != nil {
		k.logger.Error("session delta corrupted", "owner", owner, "user", user, "token", token, "error", err)
		return math.ZeroInt()
	}
	return delta
}

// AddSessionDelta accumulates a signed delta; it never overwrites.
// Positive means the engine owes the user, negative the reverse.
func (k *Keeper) AddSessionDelta(ctx types.Context, owner, user, token string, amount math.Int) error {
	if !k.IsSessionActive(ctx, owner) {
		return types.ErrNoActiveSession.Wrapf("owner %s", owner)
	}

	delta := k.GetSessionDelta(ctx, owner, user, token).Add(amount)
	key := SessionDeltaKey(owner, user, token)
	if delta.IsZero() {
		ctx.KVStore().Delete(key)
		return nil
	}

	bz, err := delta.Marshal()
	if err != nil {
		return err
	}
	ctx.KVStore().Set(key, bz)
	return nil
}

// SettleSession transfers the net delta of every listed token for the
// session beneficiary and zeroes it. nativeSupplied is value the user
// already provided up front; it nets against the native-denom entry, so it
// must be consumed by exactly one settle call. Settling an already-settled
// token is a no-op: the delta is gone, nothing is paid twice.
func (k *Keeper) SettleSession(ctx types.Context, owner, user string, tokens []string, nativeSupplied math.Int) error {
	if !k.IsSessionActive(ctx, owner) {
		return types.ErrNoActiveSession.Wrapf("owner %s", owner)
	}
	params := k.GetParams(ctx)

	for _, token := range tokens {
		delta := k.GetSessionDelta(ctx, owner, user, token)

		net := delta
		if token == params.NativeDenom && !nativeSupplied.IsNil() && !nativeSupplied.IsZero() {
			net = net.Add(nativeSupplied)
			nativeSupplied = math.ZeroInt()
		}

		switch {
		case net.IsPositive():
			if err := k.bankKeeper.SendFromModule(ctx, user, token, net); err != nil {
				return types.ErrInsufficientFunds.Wrapf("paying %s %s to %s: %v", net, token, user, err)
			}
		case net.IsNegative():
			if err := k.bankKeeper.SendToModule(ctx, user, token, net.Neg()); err != nil {
				return types.ErrInsufficientFunds.Wrapf("pulling %s %s from %s: %v", net.Neg(), token, user, err)
			}
		}

		ctx.KVStore().Delete(SessionDeltaKey(owner, user, token))

		ctx.EventManager().EmitEvent(types.NewEvent(
			types.EventTypeSessionSettle,
			types.NewAttribute(types.AttributeKeyOwner, owner),
			types.NewAttribute(types.AttributeKeyBeneficiary, user),
			types.NewAttribute(types.AttributeKeyToken, token),
			types.NewAttribute(types.AttributeKeyAmount0, net.String()),
		))
	}
	return nil
}

// EndSession closes an owner's session. Any residual nonzero delta,
// including for tokens omitted from settlement, rejects the close.
func (k *Keeper) EndSession(ctx types.Context, owner string) error {
	store := ctx.KVStore()
	if !store.Has(SessionActiveKey(owner)) {
		return types.ErrNoActiveSession.Wrapf("owner %s", owner)
	}

	iterator := storetypes.KVStorePrefixIterator(store, sessionDeltaOwnerPrefix(owner))
	defer iterator.Close()
	for ; iterator.Valid(); iterator.Next() {
		var delta math.Int
		if err := delta.Unmarshal(iterator.Value()); err != nil || !delta.IsZero() {
			return types.ErrUnsettledDeltas.Wrapf("owner %s", owner)
		}
	}

	store.Delete(SessionUserKey(owner))
	store.Delete(SessionActiveKey(owner))

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeSessionEnd,
		types.NewAttribute(types.AttributeKeyOwner, owner),
	))
	return nil
}
