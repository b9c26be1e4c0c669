package keeper

import (
	"encoding/json"

	"cosmossdk.io/math"
	"github.com/holiman/uint256"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// The inventory ledger packs both pool reserves into one 256-bit slot:
// reserve0 occupies the low 128 bits, reserve1 the high 128 bits. The two
// halves are always read and written together as one logical unit.

var maxReserve = new(uint256.Int).Sub(
	new(uint256.Int).Lsh(uint256.NewInt(1), 128),
	uint256.NewInt(1),
)

// packInventory encodes both reserves into the 32-byte slot.
func packInventory(reserve0, reserve1 math.Int) ([]byte, error) {
	lo, err := toU128(reserve0)
	if err != nil {
		return nil, err
	}
	hi, err := toU128(reserve1)
	if err != nil {
		return nil, err
	}

	slot := new(uint256.Int).Lsh(hi, 128)
	slot.Or(slot, lo)
	bz := slot.Bytes32()
	return bz[:], nil
}

// unpackInventory decodes the 32-byte slot back into both reserves.
func unpackInventory(bz []byte) (reserve0, reserve1 math.Int) {
	slot := new(uint256.Int).SetBytes(bz)
	lo := new(uint256.Int).And(slot, maxReserve)
	hi := new(uint256.Int).Rsh(slot, 128)
	return math.NewIntFromBigInt(lo.ToBig()), math.NewIntFromBigInt(hi.ToBig())
}

func toU128(v math.Int) (*uint256.Int, error) {
	if v.IsNegative() {
		return nil, types.ErrInvalidPoolState.Wrapf("reserve cannot be negative: %s", v)
	}
	u, overflow := uint256.FromBig(v.BigInt())
	if overflow || u.Gt(maxReserve) {
		return nil, types.ErrOverflow.Wrapf("reserve exceeds 128 bits: %s", v)
	}
	return u, nil
}

// GetInventory returns both reserves of a pool. A pool with no slot has
// zero reserves.
func (k *Keeper) GetInventory(ctx types.Context, poolID types.PoolID) (math.Int, math.Int) {
	bz := ctx.KVStore().Get(InventoryKey(poolID.Bytes()))
	if bz == nil {
		return math.ZeroInt(), math.ZeroInt()
	}
	return unpackInventory(bz)
}

// ApplyDelta applies signed reserve deltas to a pool's inventory slot. The
// ledger only records: callers validate sufficiency beforehand, and a delta
// that cannot be represented (negative or over 128 bits) is a state error,
// never a clamp.
func (k *Keeper) ApplyDelta(ctx types.Context, poolID types.PoolID, delta0, delta1 math.Int) error {
	reserve0, reserve1 := k.GetInventory(ctx, poolID)

	newReserve0 := reserve0.Add(delta0)
	newReserve1 := reserve1.Add(delta1)
	if newReserve0.IsNegative() || newReserve1.IsNegative() {
		return types.ErrInvalidPoolState.Wrapf(
			"inventory delta underflows pool %s: (%s,%s) + (%s,%s)",
			poolID, reserve0, reserve1, delta0, delta1,
		)
	}

	bz, err := packInventory(newReserve0, newReserve1)
	if err != nil {
		return err
	}
	ctx.KVStore().Set(InventoryKey(poolID.Bytes()), bz)
	return nil
}

// GetPool retrieves pool metadata.
func (k *Keeper) GetPool(ctx types.Context, poolID types.PoolID) (types.Pool, error) {
	bz := ctx.KVStore().Get(PoolKey(poolID.Bytes()))
	if bz == nil {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("pool %s", poolID)
	}

	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return types.Pool{}, types.ErrInvalidPoolState.Wrapf("pool %s metadata corrupted: %v", poolID, err)
	}
	return pool, nil
}

// SetPool stores pool metadata.
func (k *Keeper) SetPool(ctx types.Context, pool types.Pool) error {
	bz, err := json.Marshal(pool)
	if err != nil {
		return err
	}
	ctx.KVStore().Set(PoolKey(pool.ID.Bytes()), bz)
	return nil
}

// HasPool reports whether a pool record exists.
func (k *Keeper) HasPool(ctx types.Context, poolID types.PoolID) bool {
	return ctx.KVStore().Has(PoolKey(poolID.Bytes()))
}

// GetShares returns a provider's liquidity share position in a pool.
func (k *Keeper) GetShares(ctx types.Context, poolID types.PoolID, provider string) math.Int {
	bz := ctx.KVStore().Get(ShareKey(poolID.Bytes(), provider))
	if bz == nil {
		return math.ZeroInt()
	}

	var shares math.Int
	if err := shares.Unmarshal(bz); err != nil {
		k.logger.Error("share position corrupted", "pool", poolID.String(), "provider", provider, "error", err)
		return math.ZeroInt()
	}
	return shares
}

// SetShares stores a provider's share position, deleting it at zero.
func (k *Keeper) SetShares(ctx types.Context, poolID types.PoolID, provider string, shares math.Int) error {
	key := ShareKey(poolID.Bytes(), provider)
	if shares.IsZero() {
		ctx.KVStore().Delete(key)
		return nil
	}

	bz, err := shares.Marshal()
	if err != nil {
		return err
	}
	ctx.KVStore().Set(key, bz)
	return nil
}
