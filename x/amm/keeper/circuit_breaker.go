package keeper

import (
	"encoding/json"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// breakerState is the stored record for an open breaker. Presence of the
// record means the breaker is open; closing deletes it.
type breakerState struct {
	Actor    string `json:"actor"`
	Reason   string `json:"reason"`
	OpenedAt int64  `json:"opened_at"`
}

// OpenCircuitBreaker halts all trading until closed.
func (k *Keeper) OpenCircuitBreaker(ctx types.Context, actor, reason string) error {
	return k.openBreaker(ctx, nil, "", actor, reason)
}

// CloseCircuitBreaker resumes trading after a global halt.
func (k *Keeper) CloseCircuitBreaker(ctx types.Context, actor string) error {
	return k.closeBreaker(ctx, nil, "", actor)
}

// OpenPoolCircuitBreaker halts trading on a single pool.
func (k *Keeper) OpenPoolCircuitBreaker(ctx types.Context, poolID types.PoolID, actor, reason string) error {
	return k.openBreaker(ctx, poolID.Bytes(), poolID.String(), actor, reason)
}

// ClosePoolCircuitBreaker resumes trading on a single pool.
func (k *Keeper) ClosePoolCircuitBreaker(ctx types.Context, poolID types.PoolID, actor string) error {
	return k.closeBreaker(ctx, poolID.Bytes(), poolID.String(), actor)
}

func (k *Keeper) openBreaker(ctx types.Context, key []byte, scope, actor, reason string) error {
	store := ctx.KVStore()
	if store.Has(CircuitBreakerKey(key)) {
		return types.ErrCircuitBreakerOpen.Wrap("breaker already open")
	}
	state := breakerState{Actor: actor, Reason: reason, OpenedAt: ctx.BlockHeight()}
	bz, err := json.Marshal(state)
	if err != nil {
		return err
	}
	store.Set(CircuitBreakerKey(key), bz)

	k.logger.Warn("circuit breaker opened", "scope", scope, "actor", actor, "reason", reason)
	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeCircuitBreakerOpen,
		types.NewAttribute(types.AttributeKeyPoolID, scope),
		types.NewAttribute(types.AttributeKeyActor, actor),
		types.NewAttribute(types.AttributeKeyReason, reason),
	))
	if k.metrics != nil {
		k.metrics.BreakerTrips.Inc()
	}
	return nil
}

func (k *Keeper) closeBreaker(ctx types.Context, key []byte, scope, actor string) error {
	store := ctx.KVStore()
	if !store.Has(CircuitBreakerKey(key)) {
		return types.ErrCircuitBreakerNotOpen.Wrap("breaker is not open")
	}
	store.Delete(CircuitBreakerKey(key))

	k.logger.Info("circuit breaker closed", "scope", scope, "actor", actor)
	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeCircuitBreakerClose,
		types.NewAttribute(types.AttributeKeyPoolID, scope),
		types.NewAttribute(types.AttributeKeyActor, actor),
	))
	return nil
}

// GetCircuitBreaker reports whether a breaker record exists for the given
// pool, or the global breaker if poolID is nil.
func (k *Keeper) GetCircuitBreaker(ctx types.Context, poolID *types.PoolID) (breakerState, bool) {
	var key []byte
	if poolID != nil {
		key = poolID.Bytes()
	}
	bz := ctx.KVStore().Get(CircuitBreakerKey(key))
	if bz == nil {
		return breakerState{}, false
	}
	var state breakerState
	if err := json.Unmarshal(bz, &state); err != nil {
		return breakerState{}, false
	}
	return state, true
}

// CheckPoolCircuitBreaker rejects the operation when either the global
// breaker or the pool's own breaker is open.
func (k *Keeper) CheckPoolCircuitBreaker(ctx types.Context, poolID types.PoolID) error {
	if state, open := k.GetCircuitBreaker(ctx, nil); open {
		return types.ErrCircuitBreakerOpen.Wrapf("trading halted by %s: %s", state.Actor, state.Reason)
	}
	if state, open := k.GetCircuitBreaker(ctx, &poolID); open {
		return types.ErrCircuitBreakerOpen.Wrapf("pool %s halted by %s: %s", poolID, state.Actor, state.Reason)
	}
	return nil
}
