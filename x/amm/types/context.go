package types

import (
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
)

// Context carries the execution environment of one engine call: the store
// (possibly a cache branch), block information, the event collector, and a
// logger. It mirrors the value-semantics context of the host chain: With*
// methods return copies.
type Context struct {
	store     storetypes.KVStore
	height    int64
	blockTime time.Time
	gasPrice  math.Int
	em        *EventManager
	logger    log.Logger
}

// NewContext builds a context over the given store.
func NewContext(store storetypes.KVStore, height int64, blockTime time.Time, logger log.Logger) Context {
	return Context{
		store:     store,
		height:    height,
		blockTime: blockTime,
		gasPrice:  math.ZeroInt(),
		em:        NewEventManager(),
		logger:    logger,
	}
}

// KVStore returns the store this context operates on.
func (c Context) KVStore() storetypes.KVStore { return c.store }

// BlockHeight returns the current block height.
func (c Context) BlockHeight() int64 { return c.height }

// BlockTime returns the current block time.
func (c Context) BlockTime() time.Time { return c.blockTime }

// GasPrice returns the gas price visible to enhanced-context payloads.
func (c Context) GasPrice() math.Int { return c.gasPrice }

// EventManager returns the event collector shared across branches.
func (c Context) EventManager() *EventManager { return c.em }

// Logger returns the context logger.
func (c Context) Logger() log.Logger { return c.logger }

// WithKVStore returns a copy of the context bound to a different store.
// The event manager is shared so branch events survive a store rollback.
func (c Context) WithKVStore(store storetypes.KVStore) Context {
	c.store = store
	return c
}

// WithBlockHeight returns a copy at the given height.
func (c Context) WithBlockHeight(height int64) Context {
	c.height = height
	return c
}

// WithBlockTime returns a copy at the given block time.
func (c Context) WithBlockTime(t time.Time) Context {
	c.blockTime = t
	return c
}

// WithGasPrice returns a copy with the given gas price.
func (c Context) WithGasPrice(price math.Int) Context {
	c.gasPrice = price
	return c
}
