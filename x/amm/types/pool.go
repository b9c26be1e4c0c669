package types

import (
	"cosmossdk.io/math"
)

// Pool holds per-pool share accounting and the protocol-fee profit baseline.
// Reserves are not stored here: they live in the packed inventory slot and
// are read through the ledger so both halves move as one logical unit.
type Pool struct {
	ID PoolID `json:"id"`

	// TotalShares is the outstanding liquidity share supply, including the
	// permanently locked minimum from the first deposit.
	TotalShares math.Int `json:"total_shares"`

	// FeeBaseline tracks pool value in asset-0 terms at the last liquidity
	// event; growth above it is profit the protocol fee is charged against.
	FeeBaseline math.Int `json:"fee_baseline"`

	CreatedAt int64 `json:"created_at"`
}

// NewPool returns an empty pool record for the given identifier.
func NewPool(id PoolID, height int64) Pool {
	return Pool{
		ID:          id,
		TotalShares: math.ZeroInt(),
		FeeBaseline: math.ZeroInt(),
		CreatedAt:   height,
	}
}

// Validate checks the share-supply invariant against the supplied reserves:
// a pool has shares exactly when it has reserves.
func (p Pool) Validate(reserve0, reserve1 math.Int) error {
	hasReserves := !reserve0.IsZero() || !reserve1.IsZero()
	if p.TotalShares.IsZero() && hasReserves {
		return ErrInvalidPoolState.Wrapf("pool %s has reserves but zero shares", p.ID)
	}
	if !p.TotalShares.IsZero() && !hasReserves {
		return ErrInvalidPoolState.Wrapf("pool %s has shares but zero reserves", p.ID)
	}
	if p.TotalShares.IsNegative() {
		return ErrInvalidPoolState.Wrapf("pool %s has negative share supply", p.ID)
	}
	return nil
}
