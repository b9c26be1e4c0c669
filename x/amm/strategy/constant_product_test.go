package strategy_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/fluxdex/fluxdex/x/amm/strategy"
	"github.com/fluxdex/fluxdex/x/amm/types"
)

func quoteParams(amountIn int64, zeroForOne bool) types.QuoteParams {
	return types.QuoteParams{
		AmountIn:   math.NewInt(amountIn),
		ZeroForOne: zeroForOne,
	}
}

func TestConstantProductQuote(t *testing.T) {
	s := strategy.NewConstantProduct(math.LegacyNewDecWithPrec(3, 3)) // 0.30%

	// 1 in against (1000 in-side, 130000 out-side):
	// 0.997 * 130000 / 1000.997 = 129.47 truncated.
	out, err := s.Quote(types.Context{}, quoteParams(1, false),
		math.NewInt(130000), math.NewInt(1000), types.RoutedPayload{})
	require.NoError(t, err)
	require.Equal(t, math.NewInt(129), out)

	// same trade in the other direction reads the reserves swapped
	out, err = s.Quote(types.Context{}, quoteParams(1, true),
		math.NewInt(1000), math.NewInt(130000), types.RoutedPayload{})
	require.NoError(t, err)
	require.Equal(t, math.NewInt(129), out)
}

func TestConstantProductBucketFee(t *testing.T) {
	s := strategy.NewConstantProduct(math.LegacyNewDecWithPrec(3, 3))

	// bucket 1 prices at one basis point instead of the default:
	// 4 * 0.9999 * 130000 / 1003.9996 = 517.87 truncated.
	out, err := s.Quote(types.Context{}, quoteParams(4, true),
		math.NewInt(1000), math.NewInt(130000), types.RoutedPayload{BucketID: 1})
	require.NoError(t, err)
	require.Equal(t, math.NewInt(517), out)

	// the default fee on the same trade gives less
	out, err = s.Quote(types.Context{}, quoteParams(4, true),
		math.NewInt(1000), math.NewInt(130000), types.RoutedPayload{})
	require.NoError(t, err)
	require.Equal(t, math.NewInt(516), out)

	// bucket 100 is a 1% tier
	out, err = s.Quote(types.Context{}, quoteParams(1000, true),
		math.NewInt(100000), math.NewInt(100000), types.RoutedPayload{BucketID: 100})
	require.NoError(t, err)
	require.Equal(t, math.NewInt(980), out)
}

func TestConstantProductEmptyReserves(t *testing.T) {
	s := strategy.NewConstantProduct(math.LegacyNewDecWithPrec(3, 3))

	out, err := s.Quote(types.Context{}, quoteParams(100, true),
		math.ZeroInt(), math.NewInt(1000), types.RoutedPayload{})
	require.NoError(t, err)
	require.True(t, out.IsZero())

	out, err = s.Quote(types.Context{}, quoteParams(100, false),
		math.ZeroInt(), math.NewInt(1000), types.RoutedPayload{})
	require.NoError(t, err)
	require.True(t, out.IsZero())
}

func TestConstantProductFeeRange(t *testing.T) {
	// a whole-input fee leaves nothing to trade
	s := strategy.NewConstantProduct(math.LegacyOneDec())
	_, err := s.Quote(types.Context{}, quoteParams(100, true),
		math.NewInt(1000), math.NewInt(1000), types.RoutedPayload{})
	require.ErrorIs(t, err, types.ErrInvalidParams)

	s = strategy.NewConstantProduct(math.LegacyNewDec(-1))
	_, err = s.Quote(types.Context{}, quoteParams(100, true),
		math.NewInt(1000), math.NewInt(1000), types.RoutedPayload{})
	require.ErrorIs(t, err, types.ErrInvalidParams)
}

func TestConstantProductQuoteBatch(t *testing.T) {
	s := strategy.NewConstantProduct(math.LegacyNewDecWithPrec(3, 3))

	params := []types.QuoteParams{quoteParams(1, false), quoteParams(1, false)}
	reserves := [][2]math.Int{
		{math.NewInt(130000), math.NewInt(1000)},
		{math.NewInt(130000), math.NewInt(1000)},
	}
	payloads := []types.RoutedPayload{{}, {BucketID: 1}}

	out, err := s.QuoteBatch(types.Context{}, params, reserves, payloads)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, math.NewInt(129), out[0])
	require.Equal(t, math.NewInt(129), out[1])

	_, err = s.QuoteBatch(types.Context{}, params, reserves[:1], payloads)
	require.ErrorIs(t, err, types.ErrInvalidRoute)
}
