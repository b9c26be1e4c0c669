package types

import (
	"cosmossdk.io/errors"
)

// AMM module sentinel errors
var (
	ErrInvalidAsset            = errors.Register(ModuleName, 1, "invalid asset")
	ErrPoolNotFound            = errors.Register(ModuleName, 2, "pool not found")
	ErrPoolAlreadyExists       = errors.Register(ModuleName, 3, "pool already exists")
	ErrInvalidAmount           = errors.Register(ModuleName, 4, "invalid amount")
	ErrQuoteUnavailable        = errors.Register(ModuleName, 5, "strategy returned no price")
	ErrSlippage                = errors.Register(ModuleName, 6, "output amount less than minimum required")
	ErrInsufficientReserves    = errors.Register(ModuleName, 7, "insufficient reserves for requested output")
	ErrNoLiquidity             = errors.Register(ModuleName, 8, "pool has no liquidity shares")
	ErrInsufficientWithdrawal  = errors.Register(ModuleName, 9, "withdrawal rounds to zero for both assets")
	ErrDegenerateDeposit       = errors.Register(ModuleName, 10, "initial deposit does not exceed permanent lock")
	ErrInsufficientShares      = errors.Register(ModuleName, 11, "insufficient liquidity shares")
	ErrInvalidPoolState        = errors.Register(ModuleName, 12, "invalid pool state")
	ErrOverflow                = errors.Register(ModuleName, 13, "arithmetic overflow")
	ErrSessionActive           = errors.Register(ModuleName, 14, "session already active for owner")
	ErrNoActiveSession         = errors.Register(ModuleName, 15, "no active session for owner")
	ErrUnsettledDeltas         = errors.Register(ModuleName, 16, "session has unsettled nonzero deltas")
	ErrInvalidCommitment       = errors.Register(ModuleName, 17, "invalid commitment")
	ErrCommitmentPending       = errors.Register(ModuleName, 18, "an unexpired commitment already exists")
	ErrCommitmentTooNew        = errors.Register(ModuleName, 19, "commitment cannot be revealed in its commit block")
	ErrCommitmentExpired       = errors.Register(ModuleName, 20, "commitment reveal window has closed")
	ErrInvalidNonce            = errors.Register(ModuleName, 21, "nonce does not match trader counter")
	ErrSessionRequired         = errors.Register(ModuleName, 22, "atomic execution requires an active session")
	ErrExecutionWindowClosed   = errors.Register(ModuleName, 23, "execution outside permitted batch window")
	ErrProtectionDenied        = errors.Register(ModuleName, 24, "trader protection policy denied operation")
	ErrReentrancy              = errors.Register(ModuleName, 25, "reentrancy detected")
	ErrStrategyNotFound        = errors.Register(ModuleName, 26, "pricing strategy not registered")
	ErrInsufficientFunds       = errors.Register(ModuleName, 27, "insufficient funds for settlement")
	ErrInvalidRoute            = errors.Register(ModuleName, 28, "invalid batch swap route")
	ErrCircuitBreakerOpen      = errors.Register(ModuleName, 29, "circuit breaker open")
	ErrCircuitBreakerNotOpen   = errors.Register(ModuleName, 30, "circuit breaker is not open")
	ErrInvalidParams           = errors.Register(ModuleName, 31, "invalid module parameters")
)
