package keeper

import (
	"cosmossdk.io/math"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// lockedSharesOwner holds the permanently locked minimum liquidity from
// the first deposit into each pool.
const lockedSharesOwner = "amm_locked_shares"

// resolveBeneficiary implements the dispatch rule shared by every
// operation: with an active session for the caller, deltas accrue to the
// session's active user (falling back to the caller); without one, the
// caller settles immediately.
func (k *Keeper) resolveBeneficiary(ctx types.Context, caller string) (user string, inSession bool) {
	if !k.IsSessionActive(ctx, caller) {
		return caller, false
	}
	if active, ok := k.GetActiveUser(ctx, caller); ok {
		return active, true
	}
	return caller, true
}

// recordOrSettle routes one signed user-facing amount: into the session
// ledger when a session is active, through the bank otherwise. Positive
// pays the user, negative pulls from the user.
func (k *Keeper) recordOrSettle(ctx types.Context, owner, user, token string, amount math.Int, inSession bool) error {
	if amount.IsZero() {
		return nil
	}
	if inSession {
		return k.AddSessionDelta(ctx, owner, user, token, amount)
	}
	if amount.IsPositive() {
		return k.bankKeeper.SendFromModule(ctx, user, token, amount)
	}
	return k.bankKeeper.SendToModule(ctx, user, token, amount.Neg())
}

// CreatePool registers an empty pool. The pricing strategy must be
// registered; reserves stay zero until the first deposit.
func (k *Keeper) CreatePool(ctx types.Context, creator, assetA, assetB string, strategy uint16, marking uint32) (types.PoolID, error) {
	bctx, commit := k.branch(ctx)

	poolID, err := types.AssemblePoolID(assetA, assetB, strategy, marking)
	if err != nil {
		return types.PoolID{}, err
	}
	if _, ok := k.strategies.Get(strategy); !ok {
		return types.PoolID{}, types.ErrStrategyNotFound.Wrapf("handle %d", strategy)
	}
	if k.HasPool(bctx, poolID) {
		return types.PoolID{}, types.ErrPoolAlreadyExists.Wrapf("pool %s", poolID)
	}

	if err := k.SetPool(bctx, types.NewPool(poolID, bctx.BlockHeight())); err != nil {
		return types.PoolID{}, err
	}

	bctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeCreatePool,
		types.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
		types.NewAttribute(types.AttributeKeyTrader, creator),
	))
	if k.metrics != nil {
		k.metrics.PoolsCreated.Inc()
	}

	commit()
	return poolID, nil
}

// AddLiquidity deposits both assets and mints liquidity shares. The first
// deposit on an empty pool sets the rate from the supplied amounts and
// mints sqrt(amt0*amt1) shares with the permanent minimum locked; later
// deposits take the rate from the current inventory ratio, never from the
// external strategy, and mint proportionally.
func (k *Keeper) AddLiquidity(ctx types.Context, provider, assetA, assetB string, strategy uint16, marking uint32, amountA, amountB math.Int) (math.Int, error) {
	bctx, commit := k.branch(ctx)

	minted, err := k.addLiquidity(bctx, provider, assetA, assetB, strategy, marking, amountA, amountB)
	if err != nil {
		return math.ZeroInt(), err
	}

	commit()
	return minted, nil
}

func (k *Keeper) addLiquidity(ctx types.Context, provider, assetA, assetB string, strategy uint16, marking uint32, amountA, amountB math.Int) (math.Int, error) {
	if amountA.IsNil() || amountB.IsNil() || !amountA.IsPositive() || !amountB.IsPositive() {
		return math.ZeroInt(), types.ErrInvalidAmount.Wrap("liquidity amounts must be positive")
	}

	poolID, err := types.AssemblePoolID(assetA, assetB, strategy, marking)
	if err != nil {
		return math.ZeroInt(), err
	}
	if err := k.CheckPoolCircuitBreaker(ctx, poolID); err != nil {
		return math.ZeroInt(), err
	}

	// Canonicalize the deposit to asset order.
	amount0, amount1 := amountA, amountB
	if assetA != poolID.Asset0 {
		amount0, amount1 = amountB, amountA
	}

	var minted math.Int
	err = k.withPoolGuard(ctx, poolID, func() error {
		var guarded error
		minted, guarded = k.addLiquidityLocked(ctx, provider, poolID, amount0, amount1)
		return guarded
	})
	if err != nil {
		return math.ZeroInt(), err
	}
	return minted, nil
}

func (k *Keeper) addLiquidityLocked(ctx types.Context, provider string, poolID types.PoolID, amount0, amount1 math.Int) (math.Int, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		// Pool state is created on first deposit; an explicit CreatePool
		// beforehand is optional.
		if _, ok := k.strategies.Get(poolID.Strategy); !ok {
			return math.ZeroInt(), types.ErrStrategyNotFound.Wrapf("handle %d", poolID.Strategy)
		}
		pool = types.NewPool(poolID, ctx.BlockHeight())
	}

	reserve0, reserve1 := k.GetInventory(ctx, poolID)
	if err := pool.Validate(reserve0, reserve1); err != nil {
		return math.ZeroInt(), err
	}

	var minted math.Int
	if pool.TotalShares.IsZero() {
		minted, err = k.mintInitialShares(ctx, &pool, provider, amount0, amount1)
	} else {
		minted, err = k.mintProportionalShares(ctx, &pool, provider, reserve0, reserve1, amount0, amount1)
	}
	if err != nil {
		return math.ZeroInt(), err
	}

	if err := k.ApplyDelta(ctx, poolID, amount0, amount1); err != nil {
		return math.ZeroInt(), err
	}

	// Reset the protocol-fee baseline to the post-deposit pool value.
	newReserve0, _ := k.GetInventory(ctx, poolID)
	pool.FeeBaseline = poolValue0(newReserve0)
	if err := k.SetPool(ctx, pool); err != nil {
		return math.ZeroInt(), err
	}

	// Provider owes both deposits.
	user, inSession := k.resolveBeneficiary(ctx, provider)
	if err := k.recordOrSettle(ctx, provider, user, poolID.Asset0, amount0.Neg(), inSession); err != nil {
		return math.ZeroInt(), err
	}
	if err := k.recordOrSettle(ctx, provider, user, poolID.Asset1, amount1.Neg(), inSession); err != nil {
		return math.ZeroInt(), err
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeAddLiquidity,
		types.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
		types.NewAttribute(types.AttributeKeyProvider, provider),
		types.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
		types.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
		types.NewAttribute(types.AttributeKeyShares, minted.String()),
	))
	if k.metrics != nil {
		k.metrics.LiquidityAdded.WithLabelValues(poolID.Asset0).Add(intToFloat(amount0))
		k.metrics.LiquidityAdded.WithLabelValues(poolID.Asset1).Add(intToFloat(amount1))
	}
	return minted, nil
}

// mintInitialShares handles the first deposit: geometric-mean shares with
// MinimumLiquidity burned forever to the locked owner.
func (k *Keeper) mintInitialShares(ctx types.Context, pool *types.Pool, provider string, amount0, amount1 math.Int) (math.Int, error) {
	product, err := SafeMul(amount0, amount1)
	if err != nil {
		return math.ZeroInt(), err
	}
	sqrtDec, err := math.LegacyNewDecFromInt(product).ApproxSqrt()
	if err != nil {
		return math.ZeroInt(), types.ErrInvalidAmount.Wrapf("sqrt of initial deposit: %v", err)
	}
	totalShares := sqrtDec.TruncateInt()

	lock := math.NewInt(types.MinimumLiquidity)
	if totalShares.LTE(lock) {
		return math.ZeroInt(), types.ErrDegenerateDeposit.Wrapf(
			"sqrt(%s*%s) = %s does not exceed lock %s", amount0, amount1, totalShares, lock)
	}
	minted := totalShares.Sub(lock)

	pool.TotalShares = totalShares
	if err := k.SetShares(ctx, pool.ID, lockedSharesOwner, lock); err != nil {
		return math.ZeroInt(), err
	}
	if err := k.SetShares(ctx, pool.ID, provider, k.GetShares(ctx, pool.ID, provider).Add(minted)); err != nil {
		return math.ZeroInt(), err
	}
	return minted, nil
}

// mintProportionalShares handles deposits into a live pool: the rate comes
// from the current inventory ratio, and min() of the two proportional
// mints protects existing holders from asymmetric dilution. The protocol
// fee is charged against accrued profit before minting.
func (k *Keeper) mintProportionalShares(ctx types.Context, pool *types.Pool, provider string, reserve0, reserve1, amount0, amount1 math.Int) (math.Int, error) {
	if err := k.chargeProtocolFee(ctx, pool, reserve0); err != nil {
		return math.ZeroInt(), err
	}

	shares0, err := mulDiv(amount0, pool.TotalShares, reserve0)
	if err != nil {
		return math.ZeroInt(), err
	}
	shares1, err := mulDiv(amount1, pool.TotalShares, reserve1)
	if err != nil {
		return math.ZeroInt(), err
	}

	minted := math.MinInt(shares0, shares1)
	if minted.IsZero() {
		return math.ZeroInt(), types.ErrInvalidAmount.Wrap("liquidity contribution too small")
	}

	pool.TotalShares = pool.TotalShares.Add(minted)
	if err := k.SetShares(ctx, pool.ID, provider, k.GetShares(ctx, pool.ID, provider).Add(minted)); err != nil {
		return math.ZeroInt(), err
	}
	return minted, nil
}

// RemoveLiquidity burns shares and withdraws the proportional amount of
// both reserves.
func (k *Keeper) RemoveLiquidity(ctx types.Context, provider, assetA, assetB string, strategy uint16, marking uint32, shares math.Int) (math.Int, math.Int, error) {
	bctx, commit := k.branch(ctx)

	amount0, amount1, err := k.removeLiquidity(bctx, provider, assetA, assetB, strategy, marking, shares)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	commit()
	return amount0, amount1, nil
}

func (k *Keeper) removeLiquidity(ctx types.Context, provider, assetA, assetB string, strategy uint16, marking uint32, shares math.Int) (math.Int, math.Int, error) {
	if shares.IsNil() || !shares.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientShares.Wrap("shares must be positive")
	}

	poolID, err := types.AssemblePoolID(assetA, assetB, strategy, marking)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if err := k.CheckPoolCircuitBreaker(ctx, poolID); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	var amount0, amount1 math.Int
	err = k.withPoolGuard(ctx, poolID, func() error {
		var guarded error
		amount0, amount1, guarded = k.removeLiquidityLocked(ctx, provider, poolID, shares)
		return guarded
	})
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	return amount0, amount1, nil
}

func (k *Keeper) removeLiquidityLocked(ctx types.Context, provider string, poolID types.PoolID, shares math.Int) (math.Int, math.Int, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if pool.TotalShares.IsZero() {
		return math.ZeroInt(), math.ZeroInt(), types.ErrNoLiquidity.Wrapf("pool %s", poolID)
	}

	reserve0, reserve1 := k.GetInventory(ctx, poolID)
	if err := pool.Validate(reserve0, reserve1); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if err := k.chargeProtocolFee(ctx, &pool, reserve0); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	held := k.GetShares(ctx, poolID, provider)
	if shares.GT(held) {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientShares.Wrapf("have %s, need %s", held, shares)
	}

	amount0, err := mulDiv(shares, reserve0, pool.TotalShares)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	amount1, err := mulDiv(shares, reserve1, pool.TotalShares)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if amount0.IsZero() && amount1.IsZero() {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientWithdrawal.Wrapf("%s shares round to nothing", shares)
	}

	if err := k.ApplyDelta(ctx, poolID, amount0.Neg(), amount1.Neg()); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	pool.TotalShares = pool.TotalShares.Sub(shares)
	newReserve0, _ := k.GetInventory(ctx, poolID)
	pool.FeeBaseline = poolValue0(newReserve0)
	if err := k.SetPool(ctx, pool); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if err := k.SetShares(ctx, poolID, provider, held.Sub(shares)); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	user, inSession := k.resolveBeneficiary(ctx, provider)
	if err := k.recordOrSettle(ctx, provider, user, poolID.Asset0, amount0, inSession); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if err := k.recordOrSettle(ctx, provider, user, poolID.Asset1, amount1, inSession); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeRemoveLiquidity,
		types.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
		types.NewAttribute(types.AttributeKeyProvider, provider),
		types.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
		types.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
		types.NewAttribute(types.AttributeKeyShares, shares.String()),
	))
	if k.metrics != nil {
		k.metrics.LiquidityRemoved.WithLabelValues(poolID.Asset0).Add(intToFloat(amount0))
		k.metrics.LiquidityRemoved.WithLabelValues(poolID.Asset1).Add(intToFloat(amount1))
	}
	return amount0, amount1, nil
}

// chargeProtocolFee mints fee-collector shares against pool profit: growth
// of the pool's asset-0 value over the baseline recorded at the previous
// liquidity event. Callers reset the baseline afterwards.
func (k *Keeper) chargeProtocolFee(ctx types.Context, pool *types.Pool, reserve0 math.Int) error {
	params := k.GetParams(ctx)
	if params.ProtocolFee.IsZero() || pool.TotalShares.IsZero() {
		return nil
	}

	value0 := poolValue0(reserve0)
	profit := value0.Sub(pool.FeeBaseline)
	if !profit.IsPositive() {
		return nil
	}

	feeValue := params.ProtocolFee.MulInt(profit).TruncateInt()
	if feeValue.IsZero() {
		return nil
	}
	denom := value0.Sub(feeValue)
	if !denom.IsPositive() {
		return nil
	}
	feeShares, err := mulDiv(pool.TotalShares, feeValue, denom)
	if err != nil || feeShares.IsZero() {
		return err
	}

	pool.TotalShares = pool.TotalShares.Add(feeShares)
	collector := params.FeeCollector
	if err := k.SetShares(ctx, pool.ID, collector, k.GetShares(ctx, pool.ID, collector).Add(feeShares)); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeProtocolFee,
		types.NewAttribute(types.AttributeKeyPoolID, pool.ID.String()),
		types.NewAttribute(types.AttributeKeyShares, feeShares.String()),
	))
	return nil
}

// poolValue0 values the pool in asset-0 terms at the current inventory
// rate: reserve1 priced at reserve0/reserve1 contributes exactly reserve0.
func poolValue0(reserve0 math.Int) math.Int {
	return reserve0.Add(reserve0)
}

// mulDiv computes a*b/c with overflow converted to module errors.
func mulDiv(a, b, c math.Int) (math.Int, error) {
	product, err := SafeMul(a, b)
	if err != nil {
		return math.ZeroInt(), err
	}
	return SafeQuo(product, c)
}

func intToFloat(v math.Int) float64 {
	f, _ := math.LegacyNewDecFromInt(v).Float64()
	return f
}
