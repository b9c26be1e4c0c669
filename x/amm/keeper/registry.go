package keeper

import (
	"sync"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// Bridge handle space. Default bridges occupy handles 0..3 and are selected
// by the marking's low nibble; extra slots 1..15 map above them so one
// registry serves both and the router's memo cache has a single key space.
const (
	extraBridgeHandleBase = uint8(0x10)

	// ConsolidatedBridgeHandle is the handle extra slot 15 resolves to.
	ConsolidatedBridgeHandle = extraBridgeHandleBase + 15
)

// ExtraSlotHandle maps an extra-bridge slot (1..15) to its registry handle.
func ExtraSlotHandle(slot uint8) uint8 {
	return extraBridgeHandleBase + slot
}

// StrategyRegistry dispatches strategy handles to pricing implementations.
type StrategyRegistry struct {
	mu         sync.RWMutex
	strategies map[uint16]types.Strategy
}

// NewStrategyRegistry returns an empty registry.
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{strategies: make(map[uint16]types.Strategy)}
}

// Register installs a strategy under the given handle, replacing any
// previous registration.
func (r *StrategyRegistry) Register(handle uint16, s types.Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[handle] = s
}

// Get resolves a strategy handle.
func (r *StrategyRegistry) Get(handle uint16) (types.Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[handle]
	return s, ok
}

// BridgeRegistry dispatches bridge handles to data providers.
type BridgeRegistry struct {
	mu      sync.RWMutex
	bridges map[uint8]types.DataBridge
}

// NewBridgeRegistry returns an empty registry.
func NewBridgeRegistry() *BridgeRegistry {
	return &BridgeRegistry{bridges: make(map[uint8]types.DataBridge)}
}

// RegisterDefault installs one of the four default bridges (index 0..3).
func (r *BridgeRegistry) RegisterDefault(index uint8, b types.DataBridge) {
	if index >= types.DefaultBridgeCount {
		return
	}
	r.register(index, b)
}

// RegisterExtra installs the bridge behind an extra slot (1..15).
func (r *BridgeRegistry) RegisterExtra(slot uint8, b types.DataBridge) {
	if slot == types.ExtraSlotNone || slot > 15 {
		return
	}
	r.register(ExtraSlotHandle(slot), b)
}

func (r *BridgeRegistry) register(handle uint8, b types.DataBridge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bridges[handle] = b
}

// Get resolves a bridge handle. A missing bridge is "no data" to the
// router, not an error.
func (r *BridgeRegistry) Get(handle uint8) (types.DataBridge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bridges[handle]
	return b, ok
}
