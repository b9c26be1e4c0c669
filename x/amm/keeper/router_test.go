package keeper_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/fluxdex/fluxdex/x/amm/keeper"
	"github.com/fluxdex/fluxdex/x/amm/testutil"
	"github.com/fluxdex/fluxdex/x/amm/types"
)

// countingBridge records how many times it was asked for data.
type countingBridge struct {
	calls   *int
	payload []byte
}

func (b countingBridge) GetData(types.Context, types.QuoteContext) ([]byte, error) {
	*b.calls++
	return b.payload, nil
}

// failingBridge always errors.
type failingBridge struct{}

func (failingBridge) GetData(types.Context, types.QuoteContext) ([]byte, error) {
	return nil, errors.New("upstream unavailable")
}

// captureStrategy stores the payloads it is handed and quotes a constant.
type captureStrategy struct {
	payloads *[]types.RoutedPayload
	out      int64
}

func (s captureStrategy) Quote(_ types.Context, _ types.QuoteParams, _, _ math.Int, payload types.RoutedPayload) (math.Int, error) {
	*s.payloads = append(*s.payloads, payload)
	return math.NewInt(s.out), nil
}

func (s captureStrategy) QuoteBatch(ctx types.Context, params []types.QuoteParams, reserves [][2]math.Int, payloads []types.RoutedPayload) ([]math.Int, error) {
	out := make([]math.Int, len(params))
	for i := range params {
		out[i], _ = s.Quote(ctx, params[i], reserves[i][0], reserves[i][1], payloads[i])
	}
	return out, nil
}

const captureHandle = uint16(50)

func setupCapture(f *testutil.Fixture) *[]types.RoutedPayload {
	payloads := &[]types.RoutedPayload{}
	f.Keeper.Strategies().Register(captureHandle, captureStrategy{payloads: payloads, out: 42})
	return payloads
}

func captureParams(marking uint32) types.QuoteParams {
	return types.QuoteParams{
		AssetA:     "usdc",
		AssetB:     "weth",
		Strategy:   captureHandle,
		Marking:    marking,
		AmountIn:   math.NewInt(100),
		ZeroForOne: true,
	}
}

func TestRoutePayloadSelectsFlaggedBridges(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	payloads := setupCapture(f)

	calls1, calls2 := 0, 0
	f.Keeper.Bridges().RegisterDefault(1, countingBridge{calls: &calls1, payload: []byte("b1")})
	f.Keeper.Bridges().RegisterDefault(2, countingBridge{calls: &calls2, payload: []byte("b2")})

	// bits 1 and 2: bridges 1 and 2, no enhanced context
	out, _, err := f.Keeper.GetQuote(ctx, captureParams(0x6), math.ZeroInt(), math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, math.NewInt(42), out)
	require.Equal(t, 1, calls1)
	require.Equal(t, 1, calls2)

	require.Len(t, *payloads, 1)
	got := (*payloads)[0]
	require.Nil(t, got.BridgePayloads[0])
	require.Equal(t, []byte("b1"), got.BridgePayloads[1])
	require.Equal(t, []byte("b2"), got.BridgePayloads[2])
	require.Nil(t, got.BridgePayloads[3])
	require.Nil(t, got.ContextPayload)
	require.Nil(t, got.ExtraPayload)
}

func TestRoutePayloadBucketID(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	payloads := setupCapture(f)

	// bucket id 0x1234 sits in bits 4-19
	_, _, err := f.Keeper.GetQuote(ctx, captureParams(0x12340), math.ZeroInt(), math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), (*payloads)[0].BucketID)
}

func TestEnhancedContextPayload(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(7)
	payloads := setupCapture(f)

	params := captureParams(0x1) // bridge 0 flag doubles as enhanced context
	params.Trader = trader

	_, err := f.Keeper.StartSession(ctx, trader)
	require.NoError(t, err)

	_, _, err = f.Keeper.GetQuote(ctx, params, math.ZeroInt(), math.ZeroInt())
	require.NoError(t, err)

	got := (*payloads)[0].ContextPayload
	require.Len(t, got, 25)
	require.Equal(t, uint64(ctx.BlockTime().Unix()), binary.BigEndian.Uint64(got[0:8]))
	require.Equal(t, uint64(7), binary.BigEndian.Uint64(got[8:16]))
	require.Equal(t, uint64(0), binary.BigEndian.Uint64(got[16:24]))
	require.Equal(t, byte(1), got[24]) // session active

	// bridge 0 itself is unregistered: flag still yields enhanced context
	require.Nil(t, (*payloads)[0].BridgePayloads[0])
}

func TestBridgeFailureDegrades(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	payloads := setupCapture(f)

	f.Keeper.Bridges().RegisterDefault(1, failingBridge{})

	out, _, err := f.Keeper.GetQuote(ctx, captureParams(0x2), math.ZeroInt(), math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, math.NewInt(42), out)

	// failure became "no data", pricing proceeded
	require.Nil(t, (*payloads)[0].BridgePayloads[1])
}

func TestExtraBridgeSlots(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	payloads := setupCapture(f)

	calls := 0
	f.Keeper.Bridges().RegisterExtra(3, countingBridge{calls: &calls, payload: []byte("extra")})

	// extra slot 3 in bits 20-23
	_, _, err := f.Keeper.GetQuote(ctx, captureParams(0x300000), math.ZeroInt(), math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, []byte("extra"), (*payloads)[0].ExtraPayload)
	require.Equal(t, 1, calls)

	// slot 15 routes to the consolidated bridge
	consolidated := 0
	f.Keeper.Bridges().RegisterExtra(15, countingBridge{calls: &consolidated, payload: []byte("all")})
	_, _, err = f.Keeper.GetQuote(ctx, captureParams(0xF00000), math.ZeroInt(), math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, []byte("all"), (*payloads)[1].ExtraPayload)
	require.Equal(t, 1, consolidated)

	// an unregistered slot is no data, not an error
	_, _, err = f.Keeper.GetQuote(ctx, captureParams(0x500000), math.ZeroInt(), math.ZeroInt())
	require.NoError(t, err)
	require.Nil(t, (*payloads)[2].ExtraPayload)
}

func TestQuoteBatchSharesBridgeCache(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	setupCapture(f)

	calls := 0
	f.Keeper.Bridges().RegisterDefault(1, countingBridge{calls: &calls, payload: []byte("b1")})

	// three bucket variants of one pair, all selecting bridge 1
	list := []types.QuoteParams{
		captureParams(0x2 | 0x10),
		captureParams(0x2 | 0x20),
		captureParams(0x2 | 0x30),
	}
	amounts, poolIDs, err := f.Keeper.GetQuoteBatch(ctx, list)
	require.NoError(t, err)
	require.Len(t, amounts, 3)
	require.Len(t, poolIDs, 3)

	// one fetch served the whole batch
	require.Equal(t, 1, calls)
}

func TestQuoteBatchRejectsMixedPairs(t *testing.T) {
	f := testutil.Setup()
	ctx := f.Context(1)
	setupCapture(f)

	other := captureParams(0)
	other.AssetA, other.AssetB = "usdc", "atom"

	_, _, err := f.Keeper.GetQuoteBatch(ctx, []types.QuoteParams{captureParams(0), other})
	require.ErrorIs(t, err, types.ErrInvalidRoute)
}

func TestExtraSlotHandleMapping(t *testing.T) {
	require.Equal(t, uint8(0x11), keeper.ExtraSlotHandle(1))
	require.Equal(t, keeper.ConsolidatedBridgeHandle, keeper.ExtraSlotHandle(15))
}
