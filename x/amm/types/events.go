package types

// Event types emitted by the AMM engine
const (
	EventTypeCreatePool      = "create_pool"
	EventTypeAddLiquidity    = "add_liquidity"
	EventTypeRemoveLiquidity = "remove_liquidity"
	EventTypeSwap            = "swap"
	EventTypeBatchSwap       = "batch_swap"
	EventTypeSessionStart    = "session_start"
	EventTypeSessionSettle   = "session_settle"
	EventTypeSessionEnd      = "session_end"
	EventTypeCommit          = "swap_committed"
	EventTypeReveal          = "swap_revealed"
	EventTypeProtocolFee     = "protocol_fee_charged"

	EventTypeCircuitBreakerOpen  = "circuit_breaker_open"
	EventTypeCircuitBreakerClose = "circuit_breaker_close"

	// Event attribute keys
	AttributeKeyPoolID      = "pool_id"
	AttributeKeyTrader      = "trader"
	AttributeKeyBeneficiary = "beneficiary"
	AttributeKeyProvider    = "provider"
	AttributeKeyOwner       = "owner"
	AttributeKeySessionID   = "session_id"
	AttributeKeyToken       = "token"
	AttributeKeyAmountIn    = "amount_in"
	AttributeKeyAmountOut   = "amount_out"
	AttributeKeyAmount0     = "amount0"
	AttributeKeyAmount1     = "amount1"
	AttributeKeyShares      = "shares"
	AttributeKeyHops        = "hops"
	AttributeKeyCommitBlock = "commit_block"
	AttributeKeyRevealBlock = "reveal_block"
	AttributeKeyActor       = "actor"
	AttributeKeyReason      = "reason"
)

// Attribute is a key-value pair attached to an event.
type Attribute struct {
	Key   string
	Value string
}

// NewAttribute builds an event attribute.
func NewAttribute(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Event is a typed occurrence recorded during an operation.
type Event struct {
	Type       string
	Attributes []Attribute
}

// NewEvent builds an event with the given type and attributes.
func NewEvent(ty string, attrs ...Attribute) Event {
	return Event{Type: ty, Attributes: attrs}
}

// EventManager collects events emitted while an operation executes. Events
// are observational only; they are not part of the committed state, so a
// rolled-back operation may still have emitted events.
type EventManager struct {
	events []Event
}

// NewEventManager returns an empty event collector.
func NewEventManager() *EventManager {
	return &EventManager{}
}

// EmitEvent appends an event to the manager.
func (em *EventManager) EmitEvent(event Event) {
	em.events = append(em.events, event)
}

// Events returns everything emitted so far.
func (em *EventManager) Events() []Event {
	return em.events
}
