package keeper

import (
	"encoding/json"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store/cachekv"
	"cosmossdk.io/store/dbadapter"
	storetypes "cosmossdk.io/store/types"
	dbm "github.com/cosmos/cosmos-db"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// Keeper orchestrates the AMM engine: pool identity, the inventory ledger,
// flash sessions, quote routing, and the protection state machines. All
// state lives in the store reached through the call Context; the keeper
// itself only holds collaborators.
type Keeper struct {
	store      storetypes.KVStore
	logger     log.Logger
	bankKeeper types.BankKeeper
	strategies *StrategyRegistry
	bridges    *BridgeRegistry
	policy     types.ProtectionPolicy
	metrics    *Metrics
}

// Option configures optional keeper collaborators.
type Option func(*Keeper)

// WithProtectionPolicy installs an access/volume enforcement policy.
func WithProtectionPolicy(p types.ProtectionPolicy) Option {
	return func(k *Keeper) { k.policy = p }
}

// WithMetrics enables Prometheus metrics collection.
func WithMetrics(m *Metrics) Option {
	return func(k *Keeper) { k.metrics = m }
}

// NewKeeper creates a new AMM keeper over the given store.
func NewKeeper(store storetypes.KVStore, bank types.BankKeeper, logger log.Logger, opts ...Option) *Keeper {
	k := &Keeper{
		store:      store,
		logger:     logger.With("module", "x/"+types.ModuleName),
		bankKeeper: bank,
		strategies: NewStrategyRegistry(),
		bridges:    NewBridgeRegistry(),
		policy:     types.AllowAllPolicy{},
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// NewMemKeeper creates a keeper backed by an in-memory database. Intended
// for embedders that manage durability elsewhere, and for tests.
func NewMemKeeper(bank types.BankKeeper, logger log.Logger, opts ...Option) *Keeper {
	return NewKeeper(dbadapter.Store{DB: dbm.NewMemDB()}, bank, logger, opts...)
}

// Strategies returns the pricing strategy registry.
func (k *Keeper) Strategies() *StrategyRegistry { return k.strategies }

// Bridges returns the data bridge registry.
func (k *Keeper) Bridges() *BridgeRegistry { return k.bridges }

// Logger returns the keeper logger.
func (k *Keeper) Logger() log.Logger { return k.logger }

// NewContext builds an execution context over the keeper's base store.
func (k *Keeper) NewContext(height int64, blockTime time.Time) types.Context {
	return types.NewContext(k.store, height, blockTime, k.logger)
}

// branch wraps the context store in a cache layer. The returned commit
// function writes the branch to its parent; discarding it (by never
// calling it) is the rollback path. Every top-level entry point runs on a
// branch so an operation commits atomically or not at all.
func (k *Keeper) branch(ctx types.Context) (types.Context, func()) {
	cache := cachekv.NewStore(ctx.KVStore())
	return ctx.WithKVStore(cache), cache.Write
}

// GetParams returns the engine parameters, falling back to defaults when
// none were stored.
func (k *Keeper) GetParams(ctx types.Context) types.Params {
	bz := ctx.KVStore().Get(ParamsKey)
	if bz == nil {
		return types.DefaultParams()
	}

	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		k.logger.Error("stored params corrupted, using defaults", "error", err)
		return types.DefaultParams()
	}
	return params
}

// SetParams validates and stores the engine parameters.
func (k *Keeper) SetParams(ctx types.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(params)
	if err != nil {
		return err
	}
	ctx.KVStore().Set(ParamsKey, bz)
	return nil
}
