package types

import (
	"cosmossdk.io/math"
)

// QuoteParams identifies a priced swap: the pool coordinates plus the
// trade under consideration.
type QuoteParams struct {
	AssetA     string
	AssetB     string
	Strategy   uint16
	Marking    uint32
	AmountIn   math.Int
	ZeroForOne bool
	Trader     string
}

// Validate checks the parameters common to quoting and swapping.
func (p QuoteParams) Validate() error {
	if _, err := AssemblePoolID(p.AssetA, p.AssetB, p.Strategy, p.Marking); err != nil {
		return err
	}
	if p.AmountIn.IsNil() || !p.AmountIn.IsPositive() {
		return ErrInvalidAmount.Wrap("amount in must be positive")
	}
	return nil
}

// QuoteContext is what a data bridge sees when asked for a payload.
type QuoteContext struct {
	Asset0     string
	Asset1     string
	BucketID   uint16
	AmountIn   math.Int
	ZeroForOne bool
}

// RoutedPayload is the assembled market-data bundle handed to a strategy.
// A nil slice means the corresponding bridge was unselected, missing, or
// failed; the strategy decides whether pricing is still possible.
type RoutedPayload struct {
	BridgePayloads [DefaultBridgeCount][]byte
	ExtraPayload   []byte
	ContextPayload []byte
	BucketID       uint16
}

// Strategy is the pluggable pricing collaborator. Returning a zero amount
// is the canonical "no price" signal and surfaces as ErrQuoteUnavailable;
// a usable non-zero quote from partial data is accepted without
// second-guessing.
type Strategy interface {
	Quote(ctx Context, params QuoteParams, reserve0, reserve1 math.Int, payload RoutedPayload) (math.Int, error)

	// QuoteBatch prices several markings of one asset pair in a single
	// call. Inputs are parallel slices.
	QuoteBatch(ctx Context, params []QuoteParams, reserves [][2]math.Int, payloads []RoutedPayload) ([]math.Int, error)
}

// DataBridge is the pluggable market-data collaborator. Errors and empty
// results are treated as "no data" by the router, never propagated.
type DataBridge interface {
	GetData(ctx Context, qc QuoteContext) ([]byte, error)
}

// FlashCallback is invoked inside an active flash session and may re-enter
// swap and liquidity entry points; every delta it produces defers to
// session settlement.
type FlashCallback interface {
	Execute(ctx Context, data []byte) error
}

// SwapLeg fans a hop's input across one marking/bucket variant of the
// hop's asset pair. Amount is an absolute input for the first hop and a
// relative weight for later hops, where the realized input is the previous
// hop's output.
type SwapLeg struct {
	Marking uint32
	Amount  math.Int
}

// SwapHop is a single step of a batch swap route.
type SwapHop struct {
	AssetIn  string
	AssetOut string
	Strategy uint16
	Legs     []SwapLeg
}
