package quote

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func cleanQuote() Quote {
	return Quote{
		StockCode:      "sz000001",
		StockName:      "平安银行",
		CurrentPrice:   10.50,
		YesterdayClose: 10.25,
		HighPrice:      10.72,
		LowPrice:       10.21,
		Volume:         522000,
		PERatio:        5.21,
		MarketSession:  SessionTradingMorning,
		Bids:           []OrderLevel{{10.49, 200}, {10.48, 301}, {10.47, 150}, {10.46, 80}, {10.45, 60}},
		Asks:           []OrderLevel{{10.51, 180}, {10.52, 220}, {10.53, 90}, {10.54, 70}, {10.55, 50}},
	}
}

func TestValidate_CleanQuote(t *testing.T) {
	t.Parallel()

	v, warnings := Validate(cleanQuote())
	require.Empty(t, warnings)
	require.Equal(t, 100, v.QualityScore)
	require.Equal(t, "A", v.QualityGrade)
	require.True(t, v.AgentUsable)
	require.Empty(t, v.PERatioStatus)
	require.Empty(t, v.TradingStatus)
	require.Empty(t, v.OrderBookStatus)
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	q := cleanQuote()
	q.StockName = "?"
	_, _ = Validate(q)
	require.Equal(t, "?", q.StockName)
	require.Nil(t, q.Warnings)
}

func TestValidate_NameFallback(t *testing.T) {
	t.Parallel()

	q := cleanQuote()
	q.StockName = ""
	v, warnings := Validate(q)
	require.Len(t, warnings, 1)
	require.Equal(t, "平安银行", v.StockName)

	q.StockName = "平安�行"
	v, _ = Validate(q)
	require.Equal(t, "平安银行", v.StockName)

	// unknown code falls back to the code itself
	q.StockCode, q.StockName = "sz999999", ""
	v, _ = Validate(q)
	require.Equal(t, "sz999999", v.StockName)
}

func TestValidate_PERatio(t *testing.T) {
	t.Parallel()

	q := cleanQuote()
	q.PERatio = -3.2
	v, warnings := Validate(q)
	require.Len(t, warnings, 1)
	require.Equal(t, PENegativeEarnings, v.PERatioStatus)

	q.PERatio = 1500
	v, warnings = Validate(q)
	require.Len(t, warnings, 1)
	require.Equal(t, PEExtremelyHigh, v.PERatioStatus)
}

func TestValidate_SuspensionAndOrderBook(t *testing.T) {
	t.Parallel()

	q := cleanQuote()
	q.Volume = 0
	v, _ := Validate(q)
	require.Equal(t, TradingPossiblySusp, v.TradingStatus)

	// zero volume outside the morning session is not flagged
	q.MarketSession = SessionMarketClosed
	v, warnings := Validate(q)
	require.Empty(t, warnings)
	require.Empty(t, v.TradingStatus)

	q = cleanQuote()
	q.Bids = []OrderLevel{{0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}}
	v, warnings = Validate(q)
	require.Equal(t, OrderBookIncomplete, v.OrderBookStatus)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "order book")
}

func TestValidate_ScoreAndGrades(t *testing.T) {
	t.Parallel()

	// stack anomalies one at a time; score must drop 10 per warning
	q := cleanQuote()
	q.PERatio = -1 // 90 A
	v, _ := Validate(q)
	require.Equal(t, 90, v.QualityScore)
	require.Equal(t, "A", v.QualityGrade)
	require.True(t, v.AgentUsable)

	q.HighPrice, q.LowPrice = 9.0, 10.0 // 80 B
	v, _ = Validate(q)
	require.Equal(t, 80, v.QualityScore)
	require.Equal(t, "B", v.QualityGrade)
	require.True(t, v.AgentUsable)

	q.Volume = 0 // 70 C
	v, _ = Validate(q)
	require.Equal(t, 70, v.QualityScore)
	require.Equal(t, "C", v.QualityGrade)
	require.True(t, v.AgentUsable)

	q.Bids = make([]OrderLevel, 5) // 60 D
	v, _ = Validate(q)
	require.Equal(t, 60, v.QualityScore)
	require.Equal(t, "D", v.QualityGrade)
	require.False(t, v.AgentUsable)

	// score stays linear in the warning count, no clamp
	q.StockName = "?"
	q.CurrentPrice = 0
	q.PERatio = -1
	v, warnings := Validate(q)
	require.Equal(t, 100-10*len(warnings), v.QualityScore)
	require.GreaterOrEqual(t, len(warnings), 6)
	for _, w := range warnings {
		require.True(t, strings.Contains(w, q.StockCode), "warning should name the symbol: %s", w)
	}
}
