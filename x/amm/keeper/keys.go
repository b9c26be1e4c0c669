package keeper

import (
	"encoding/binary"
)

var (
	// PoolKeyPrefix is the prefix for pool metadata keys
	PoolKeyPrefix = []byte{0x01}

	// InventoryKeyPrefix is the prefix for packed reserve slots
	InventoryKeyPrefix = []byte{0x02}

	// ShareKeyPrefix is the prefix for per-provider share positions
	ShareKeyPrefix = []byte{0x03}

	// SessionActiveKeyPrefix marks an owner's active flash session
	SessionActiveKeyPrefix = []byte{0x04}

	// SessionUserKeyPrefix stores the active beneficiary of a session
	SessionUserKeyPrefix = []byte{0x05}

	// SessionDeltaKeyPrefix is the prefix for pending session deltas
	SessionDeltaKeyPrefix = []byte{0x06}

	// CommitmentKeyPrefix is the prefix for swap commitments by trader
	CommitmentKeyPrefix = []byte{0x07}

	// NonceKeyPrefix is the prefix for trader nonce counters
	NonceKeyPrefix = []byte{0x08}

	// ReentrancyLockKeyPrefix is the prefix for reentrancy protection locks
	ReentrancyLockKeyPrefix = []byte{0x09}

	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x0A}

	// EmergencyAtomicKey stores the forced atomic-execution mode
	EmergencyAtomicKey = []byte{0x0B}

	// CircuitBreakerKeyPrefix is the prefix for circuit breaker state keys
	CircuitBreakerKeyPrefix = []byte{0x0C}

	// globalBreakerTag addresses the engine-wide breaker under the circuit
	// breaker prefix; pool breakers use the pool id bytes instead.
	globalBreakerTag = []byte("global")
)

// PoolKey returns the store key for pool metadata.
func PoolKey(poolID []byte) []byte {
	return append(PoolKeyPrefix, poolID...)
}

// InventoryKey returns the store key for a pool's packed reserve slot.
func InventoryKey(poolID []byte) []byte {
	return append(InventoryKeyPrefix, poolID...)
}

// ShareKey returns the store key for a provider's share position.
func ShareKey(poolID []byte, provider string) []byte {
	key := append(ShareKeyPrefix, poolID...)
	key = append(key, '/')
	return append(key, provider...)
}

// SessionActiveKey returns the store key marking an owner's session.
func SessionActiveKey(owner string) []byte {
	return append(SessionActiveKeyPrefix, owner...)
}

// SessionUserKey returns the store key for a session's beneficiary.
func SessionUserKey(owner string) []byte {
	return append(SessionUserKeyPrefix, owner...)
}

// SessionDeltaKey returns the store key for one pending (user, token) delta
// of an owner's session.
func SessionDeltaKey(owner, user, token string) []byte {
	key := sessionDeltaOwnerPrefix(owner)
	key = append(key, user...)
	key = append(key, '/')
	return append(key, token...)
}

// sessionDeltaOwnerPrefix returns the prefix covering every pending delta
// of one owner's session. Owners are length-prefixed so one owner's range
// can never alias another's.
func sessionDeltaOwnerPrefix(owner string) []byte {
	key := make([]byte, 0, len(SessionDeltaKeyPrefix)+2+len(owner)+1)
	key = append(key, SessionDeltaKeyPrefix...)
	key = binary.BigEndian.AppendUint16(key, uint16(len(owner)))
	key = append(key, owner...)
	return append(key, '/')
}

// CommitmentKey returns the store key for a trader's commitment.
func CommitmentKey(trader string) []byte {
	return append(CommitmentKeyPrefix, trader...)
}

// NonceKey returns the store key for a trader's nonce counter.
func NonceKey(trader string) []byte {
	return append(NonceKeyPrefix, trader...)
}

// ReentrancyLockKey returns the store key for a named reentrancy lock.
func ReentrancyLockKey(lockKey string) []byte {
	return append(ReentrancyLockKeyPrefix, lockKey...)
}

// CircuitBreakerKey returns the breaker state key for a pool, or the
// global breaker when poolID is nil.
func CircuitBreakerKey(poolID []byte) []byte {
	if poolID == nil {
		return append(CircuitBreakerKeyPrefix, globalBreakerTag...)
	}
	key := append(CircuitBreakerKeyPrefix, byte(len(poolID)))
	return append(key, poolID...)
}
