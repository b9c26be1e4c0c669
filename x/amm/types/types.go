package types

const (
	// ModuleName defines the module name
	ModuleName = "amm"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName
)

const (
	// MinimumLiquidity is the share amount permanently locked on the first
	// deposit into an empty pool. Locked shares deter degenerate first
	// deposits that would make the share price manipulable.
	MinimumLiquidity = 1000

	// MaxCommitWindow is the number of blocks after the commit block during
	// which a reveal is accepted. A reveal at the commit block itself is
	// always rejected.
	MaxCommitWindow = int64(50)

	// MaxBatchHops bounds the length of a batch swap route.
	MaxBatchHops = 5

	// DefaultBridgeCount is the number of default data-bridge slots
	// selectable through the low nibble of the marking word.
	DefaultBridgeCount = 4

	// ExtraSlotNone marks a pool with no extra data bridge.
	ExtraSlotNone = uint8(0)

	// ExtraSlotConsolidated selects the consolidated bridge instead of a
	// single configurable one.
	ExtraSlotConsolidated = uint8(15)
)

// Atomic-execution trader modes. Mode 0 is free: a zero flag word takes a
// single-branch fast path through protection checks.
const (
	AtomicModeDisabled    = uint8(0)
	AtomicModeSessionOnly = uint8(1)
	// Modes 2..8 select batch-window configurations 0..6.
	AtomicModeBatchBase = uint8(2)
	AtomicModeMax       = uint8(8)

	BatchWindowCount = 7
)
