// Package testutil provides an engine fixture and a store-backed bank for
// keeper tests.
package testutil

import (
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/fluxdex/fluxdex/x/amm/keeper"
	"github.com/fluxdex/fluxdex/x/amm/strategy"
	"github.com/fluxdex/fluxdex/x/amm/types"
)

// ConstantProductHandle is the strategy handle the fixture registers the
// builtin constant-product curve under.
const ConstantProductHandle = uint16(1)

// ModuleAccount is the bank account holding engine custody.
const ModuleAccount = "amm_module"

// bankPrefix namespaces bank balances inside the engine store so that a
// rolled-back operation also rolls back its transfers.
var bankPrefix = []byte{0xF0}

// Bank is a types.BankKeeper that keeps balances in the context store.
type Bank struct{}

func balanceKey(account, token string) []byte {
	key := make([]byte, 0, len(bankPrefix)+len(account)+1+len(token))
	key = append(key, bankPrefix...)
	key = append(key, account...)
	key = append(key, '/')
	return append(key, token...)
}

// Balance returns the account's balance of token.
func (Bank) Balance(ctx types.Context, account, token string) math.Int {
	bz := ctx.KVStore().Get(balanceKey(account, token))
	if bz == nil {
		return math.ZeroInt()
	}
	var balance math.Int
	if err := balance.Unmarshal(bz); err != nil {
		return math.ZeroInt()
	}
	return balance
}

func (b Bank) setBalance(ctx types.Context, account, token string, balance math.Int) {
	if balance.IsZero() {
		ctx.KVStore().Delete(balanceKey(account, token))
		return
	}
	bz, err := balance.Marshal()
	if err != nil {
		panic(err)
	}
	ctx.KVStore().Set(balanceKey(account, token), bz)
}

// Mint credits the account with token out of thin air.
func (b Bank) Mint(ctx types.Context, account, token string, amount math.Int) {
	b.setBalance(ctx, account, token, b.Balance(ctx, account, token).Add(amount))
}

func (b Bank) transfer(ctx types.Context, from, to, token string, amount math.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrInvalidAmount.Wrapf("transfer amount %s", amount)
	}
	balance := b.Balance(ctx, from, token)
	if balance.LT(amount) {
		return types.ErrInsufficientFunds.Wrapf(
			"%s has %s %s, needs %s", from, balance, token, amount)
	}
	b.setBalance(ctx, from, token, balance.Sub(amount))
	b.setBalance(ctx, to, token, b.Balance(ctx, to, token).Add(amount))
	return nil
}

// SendToModule implements types.BankKeeper.
func (b Bank) SendToModule(ctx types.Context, from, token string, amount math.Int) error {
	return b.transfer(ctx, from, ModuleAccount, token, amount)
}

// SendFromModule implements types.BankKeeper.
func (b Bank) SendFromModule(ctx types.Context, to, token string, amount math.Int) error {
	return b.transfer(ctx, ModuleAccount, to, token, amount)
}

// Fixture bundles a ready-to-use engine over an in-memory store.
type Fixture struct {
	Keeper *keeper.Keeper
	Bank   Bank
}

// Setup builds a fixture with the constant-product strategy registered
// under ConstantProductHandle.
func Setup(opts ...keeper.Option) *Fixture {
	bank := Bank{}
	k := keeper.NewMemKeeper(bank, log.NewNopLogger(), opts...)
	k.Strategies().Register(ConstantProductHandle, strategy.NewConstantProduct(types.DefaultParams().SwapFee))
	return &Fixture{Keeper: k, Bank: bank}
}

// Context returns a fresh context at the given height.
func (f *Fixture) Context(height int64) types.Context {
	return f.Keeper.NewContext(height, time.Unix(1700000000+height, 0))
}
