package types

import (
	"cosmossdk.io/math"
)

// BankKeeper is the expected transfer collaborator. Token bookkeeping is
// outside the engine; implementations must be transactional with the
// context store so a rolled-back operation rolls back its transfers.
type BankKeeper interface {
	// SendToModule pulls amount of token from the account into engine
	// custody.
	SendToModule(ctx Context, from string, token string, amount math.Int) error

	// SendFromModule pays amount of token from engine custody to the
	// account.
	SendFromModule(ctx Context, to string, token string, amount math.Int) error
}

// ProtectionPolicy is the enforcement extension point for the access-control
// and volume-control protection modules. The engine decodes the trader
// flags and routes them here; the default policy allows everything.
type ProtectionPolicy interface {
	// CheckAccess is consulted when a trader opts into an access-control
	// mode (mode > 0).
	CheckAccess(ctx Context, trader string, mode uint8) error

	// CheckVolume is consulted when a trader opts into a volume-control
	// mode (mode > 0); amountIn is the swap input under consideration.
	CheckVolume(ctx Context, trader string, mode uint8, amountIn math.Int) error
}

// AllowAllPolicy is the default ProtectionPolicy: the upstream protocol
// reserves these modes without enforcing them yet.
type AllowAllPolicy struct{}

func (AllowAllPolicy) CheckAccess(Context, string, uint8) error { return nil }

func (AllowAllPolicy) CheckVolume(Context, string, uint8, math.Int) error { return nil }
