package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"stockquote/internal/provider"
	"stockquote/internal/quote"
)

type fakeProvider struct {
	name   string
	quotes map[string]quote.Quote
}

func (f fakeProvider) Name() string { return f.name }

func (f fakeProvider) Fetch(_ context.Context, symbol string) (quote.Quote, error) {
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return quote.Quote{}, fmt.Errorf("%w: %s: no quoted payload", provider.ErrNotParseable, symbol)
}

type panicProvider struct{}

func (panicProvider) Name() string { return "panicky" }
func (panicProvider) Fetch(context.Context, string) (quote.Quote, error) {
	panic("index out of range")
}

func goodQuote(sym string) quote.Quote {
	return quote.Quote{
		StockCode:     sym,
		StockName:     "平安银行",
		CurrentPrice:  10.50,
		HighPrice:     10.72,
		LowPrice:      10.21,
		Volume:        522000,
		PERatio:       5.21,
		MarketSession: quote.SessionTradingMorning,
		Bids:          []quote.OrderLevel{{Price: 10.49, Volume: 200}},
		Asks:          []quote.OrderLevel{{Price: 10.51, Volume: 180}},
	}
}

func TestRun_BestEffortPartialFailure(t *testing.T) {
	t.Parallel()

	p := fakeProvider{name: "fake", quotes: map[string]quote.Quote{"sz000001": goodQuote("sz000001")}}
	res := New(p, nil, 4, nil).Run(t.Context(), []string{"sz000001", "bogus"})

	require.Len(t, res.Quotes, 1)
	require.Equal(t, "sz000001", res.Quotes[0].StockCode)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "bogus")
	require.NotEmpty(t, res.MarketStatus)
}

func TestRun_PreservesSymbolOrder(t *testing.T) {
	t.Parallel()

	p := fakeProvider{name: "fake", quotes: map[string]quote.Quote{
		"sz000001": goodQuote("sz000001"),
		"sh600000": goodQuote("sh600000"),
		"sh600519": goodQuote("sh600519"),
	}}
	res := New(p, nil, 2, nil).Run(t.Context(), []string{"sh600519", "sz000001", "sh600000"})

	require.Len(t, res.Quotes, 3)
	require.Equal(t, "sh600519", res.Quotes[0].StockCode)
	require.Equal(t, "sz000001", res.Quotes[1].StockCode)
	require.Equal(t, "sh600000", res.Quotes[2].StockCode)
}

func TestRun_FallbackEngagesWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := fakeProvider{name: "primary"}
	fallback := fakeProvider{name: "fallback", quotes: map[string]quote.Quote{"sz000001": goodQuote("sz000001")}}

	res := New(primary, fallback, 1, nil).Run(t.Context(), []string{"sz000001"})
	require.Empty(t, res.Errors)
	require.Len(t, res.Quotes, 1)

	// both failing yields a per-symbol error, not an abort
	res = New(primary, fakeProvider{name: "fallback"}, 1, nil).Run(t.Context(), []string{"sz000001"})
	require.Empty(t, res.Quotes)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "sz000001")
}

func TestRun_RecoversPanicsPerSymbol(t *testing.T) {
	t.Parallel()

	res := New(panicProvider{}, nil, 2, nil).Run(t.Context(), []string{"sz000001", "sh600000"})
	require.Empty(t, res.Quotes)
	require.Len(t, res.Errors, 2)
	require.Contains(t, res.Errors[0], "internal error")
}

func TestRun_ValidatesAndAggregatesWarnings(t *testing.T) {
	t.Parallel()

	q := goodQuote("sz000001")
	q.Bids = []quote.OrderLevel{{}, {}, {}, {}, {}}
	p := fakeProvider{name: "fake", quotes: map[string]quote.Quote{"sz000001": q}}

	res := New(p, nil, 1, nil).Run(t.Context(), []string{"sz000001"})
	require.Len(t, res.Quotes, 1)
	require.Equal(t, quote.OrderBookIncomplete, res.Quotes[0].OrderBookStatus)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "order book")
	require.Equal(t, 90, res.Quotes[0].QualityScore)
}
