package types

import (
	"cosmossdk.io/math"
)

// BatchWindowConfig describes one atomic-execution batch window. Execution
// is permitted while (block mod CycleLength) < SettlementBlocks.
type BatchWindowConfig struct {
	CycleLength      int64 `json:"cycle_length" mapstructure:"cycle_length"`
	SettlementBlocks int64 `json:"settlement_blocks" mapstructure:"settlement_blocks"`
	Enabled          bool  `json:"enabled" mapstructure:"enabled"`
}

// IsActive reports whether the window admits execution at the given block.
func (c BatchWindowConfig) IsActive(block int64) bool {
	if !c.Enabled || c.CycleLength <= 0 {
		return false
	}
	return block%c.CycleLength < c.SettlementBlocks
}

// Validate enforces SettlementBlocks <= CycleLength for enabled windows.
func (c BatchWindowConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.CycleLength <= 0 {
		return ErrInvalidParams.Wrap("batch window cycle length must be positive")
	}
	if c.SettlementBlocks <= 0 || c.SettlementBlocks > c.CycleLength {
		return ErrInvalidParams.Wrapf(
			"settlement blocks %d must be in [1, cycle length %d]",
			c.SettlementBlocks, c.CycleLength,
		)
	}
	return nil
}

// Params holds the engine parameters.
type Params struct {
	// SwapFee is the default fee applied by the built-in constant-product
	// strategy when a pool's bucket does not select a fee tier.
	SwapFee math.LegacyDec `json:"swap_fee"`

	// ProtocolFee is the share of LP profit (growth over the pool's fee
	// baseline) charged at liquidity events. Zero disables it.
	ProtocolFee math.LegacyDec `json:"protocol_fee"`

	// FeeCollector receives protocol-fee shares.
	FeeCollector string `json:"fee_collector"`

	// NativeDenom is the asset that pre-supplied native value settles
	// against when a session closes.
	NativeDenom string `json:"native_denom"`

	// BatchWindows are the seven trader-selectable atomic-execution
	// configurations addressed by atomic modes 2..8.
	BatchWindows [BatchWindowCount]BatchWindowConfig `json:"batch_windows"`
}

// DefaultParams returns the default engine parameters.
func DefaultParams() Params {
	return Params{
		SwapFee:      math.LegacyNewDecWithPrec(3, 3), // 0.3%
		ProtocolFee:  math.LegacyZeroDec(),
		FeeCollector: "amm_fee_collector",
		NativeDenom:  "uflux",
		BatchWindows: [BatchWindowCount]BatchWindowConfig{
			{CycleLength: 5, SettlementBlocks: 2, Enabled: true},
			{CycleLength: 10, SettlementBlocks: 2, Enabled: true},
			{CycleLength: 10, SettlementBlocks: 5, Enabled: true},
			{CycleLength: 20, SettlementBlocks: 4, Enabled: true},
			{CycleLength: 50, SettlementBlocks: 10, Enabled: true},
			{CycleLength: 100, SettlementBlocks: 20, Enabled: true},
			{CycleLength: 256, SettlementBlocks: 32, Enabled: true},
		},
	}
}

// Validate checks parameter consistency.
func (p Params) Validate() error {
	if p.SwapFee.IsNil() || p.SwapFee.IsNegative() || p.SwapFee.GTE(math.LegacyOneDec()) {
		return ErrInvalidParams.Wrap("swap fee must be in [0, 1)")
	}
	if p.ProtocolFee.IsNil() || p.ProtocolFee.IsNegative() || p.ProtocolFee.GTE(math.LegacyOneDec()) {
		return ErrInvalidParams.Wrap("protocol fee must be in [0, 1)")
	}
	if p.FeeCollector == "" {
		return ErrInvalidParams.Wrap("fee collector must be set")
	}
	if err := ValidateAsset(p.NativeDenom); err != nil {
		return err
	}
	for i, w := range p.BatchWindows {
		if err := w.Validate(); err != nil {
			return ErrInvalidParams.Wrapf("batch window %d: %v", i, err)
		}
	}
	return nil
}
