package sina_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"stockquote/internal/httpx"
	"stockquote/internal/provider"
	"stockquote/internal/provider/sina"
	"stockquote/internal/quote"
)

const replyBody = `var hq_str_sz000001="平安银行,10.30,10.25,10.50,10.72,10.21,10.49,10.51,52200000,547560000.000,` +
	`20000,10.49,30100,10.48,15000,10.47,8000,10.46,6000,10.45,` +
	`18000,10.51,22000,10.52,9000,10.53,7000,10.54,5000,10.55,` +
	`2024-01-15,10:30:00,00";`

func TestParse_ReducedSchema(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 15, 10, 45, 0, 0, quote.BeijingZone)
	q, err := sina.Parse(replyBody, "sz000001", now)
	require.NoError(t, err)

	require.Equal(t, "sz000001", q.StockCode)
	require.Equal(t, "平安银行", q.StockName)
	require.Equal(t, 10.50, q.CurrentPrice)
	require.Equal(t, 10.25, q.YesterdayClose)
	require.Equal(t, 10.30, q.TodayOpen)
	require.Equal(t, 10.72, q.HighPrice)
	require.Equal(t, 10.21, q.LowPrice)
	require.InDelta(t, 0.25, q.Change, 1e-9)
	require.InDelta(t, 2.439, q.ChangePercent, 1e-3)
	require.Equal(t, int64(522000), q.Volume) // shares -> lots
	require.Equal(t, 547560000.0, q.Amount)

	require.Len(t, q.Bids, 5)
	require.Equal(t, quote.OrderLevel{Price: 10.49, Volume: 200}, q.Bids[0])
	require.Equal(t, quote.OrderLevel{Price: 10.45, Volume: 60}, q.Bids[4])
	require.Len(t, q.Asks, 5)
	require.Equal(t, quote.OrderLevel{Price: 10.51, Volume: 180}, q.Asks[0])

	// indicators absent from the reduced schema stay zero
	require.Zero(t, q.PERatio)
	require.Zero(t, q.MarketCap)
	require.Zero(t, q.LimitUp)

	require.Equal(t, "20240115103000", q.RawTimestamp)
	require.Equal(t, "2024-01-15 10:30:00", q.LocalTime)
	require.Equal(t, quote.SessionTradingMorning, q.MarketSession)
	require.Equal(t, 15, q.DataAgeMinutes)
}

func TestParse_NotParseable(t *testing.T) {
	t.Parallel()

	_, err := sina.Parse(`var hq_str_bogus="";`, "bogus", time.Now())
	require.ErrorIs(t, err, provider.ErrNotParseable)

	_, err = sina.Parse("nothing here", "bogus", time.Now())
	require.ErrorIs(t, err, provider.ErrNotParseable)

	short := `var hq_str_sz000001="平安银行,10.30,10.25,0.00";`
	_, err = sina.Parse(short, "sz000001", time.Now())
	require.ErrorIs(t, err, provider.ErrNotParseable)
}

func TestFetch_EndToEnd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/list=sz000001", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("Referer"))
		body, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), []byte(replyBody))
		require.NoError(t, err)
		w.Header().Set("Content-Type", "text/html; charset=GBK")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c := sina.New(sina.Config{BaseURL: srv.URL}, httpx.New(5*time.Second))
	q, err := c.Fetch(t.Context(), "sz000001")
	require.NoError(t, err)
	require.Equal(t, "平安银行", q.StockName)
	require.Equal(t, 10.50, q.CurrentPrice)
}
