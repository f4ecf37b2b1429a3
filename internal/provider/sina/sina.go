package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"stockquote/internal/httpx"
	"stockquote/internal/observability"
	"stockquote/internal/provider"
	"stockquote/internal/quote"
)

// Positions inside the comma-delimited hq_str_<symbol>="..." payload.
// Reduced schema: no derived indicators, volume in shares, date and time
// in separate trailing fields.
const (
	fieldName     = 0
	fieldOpen     = 1
	fieldPrevious = 2
	fieldCurrent  = 3
	fieldHigh     = 4
	fieldLow      = 5
	fieldVolume   = 8 // shares
	fieldAmount   = 9 // CNY
	fieldBid1Vol  = 10
	fieldAsk1Vol  = 20
	fieldDate     = 30
	fieldTime     = 31
)

// minFields guards the trailing date/time fields.
const minFields = 32

const orderBookLevels = 5

type Config struct {
	Name    string
	BaseURL string
	Referer string
}

// Client fetches quotes from the Sina hq text endpoint, the fallback when
// the primary provider fails. Bodies are GBK-encoded.
type Client struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.Name == "" {
		cfg.Name = "Sina"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://hq.sinajs.cn"
	}
	if cfg.Referer == "" {
		cfg.Referer = "https://finance.sina.com.cn/"
	}
	return &Client{cfg: cfg, client: hc}
}

func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) Fetch(ctx context.Context, symbol string) (quote.Quote, error) {
	u := fmt.Sprintf("%s/list=%s", c.cfg.BaseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Referer", c.cfg.Referer)

	start := time.Now()
	res, err := c.client.Do(ctx, req)
	if err != nil {
		observability.RecordUpstream(c.cfg.Name, "error", time.Since(start))
		return quote.Quote{}, fmt.Errorf("fetching %s: %w", symbol, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		observability.RecordUpstream(c.cfg.Name, "error", time.Since(start))
		return quote.Quote{}, fmt.Errorf("GET %s -> %d", u, res.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil {
		observability.RecordUpstream(c.cfg.Name, "error", time.Since(start))
		return quote.Quote{}, fmt.Errorf("reading body: %w", err)
	}
	observability.RecordUpstream(c.cfg.Name, "ok", time.Since(start))

	body := string(raw)
	if decoded, _, derr := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), raw); derr == nil {
		body = string(decoded)
	}
	q, err := Parse(body, symbol, time.Now())
	if err != nil {
		observability.RecordParseFailure(c.cfg.Name, "unparseable")
		return quote.Quote{}, err
	}
	return q, nil
}

var payloadRe = regexp.MustCompile(`="([^"]*)"`)

// Parse turns one decoded Sina reply into a Quote. Fields the reduced
// schema does not carry (P/E, market cap, amplitude, limits) stay zero;
// change and change percent are derived from the previous close.
func Parse(body, symbol string, now time.Time) (quote.Quote, error) {
	m := payloadRe.FindStringSubmatch(body)
	if m == nil {
		return quote.Quote{}, fmt.Errorf("%w: %s: no quoted payload", provider.ErrNotParseable, symbol)
	}
	fields := strings.Split(m[1], ",")
	if len(fields) < minFields {
		return quote.Quote{}, fmt.Errorf("%w: %s: %d fields, need %d", provider.ErrNotParseable, symbol, len(fields), minFields)
	}
	price := num(fields, fieldCurrent)
	if price <= 0 {
		return quote.Quote{}, fmt.Errorf("%w: %s: non-positive price %v", provider.ErrNotParseable, symbol, price)
	}

	prev := num(fields, fieldPrevious)
	change := price - prev
	changePct := 0.0
	if prev != 0 {
		changePct = change / prev * 100
	}

	q := quote.Quote{
		StockCode:      symbol,
		StockName:      strings.TrimSpace(fields[fieldName]),
		CurrentPrice:   price,
		YesterdayClose: prev,
		TodayOpen:      num(fields, fieldOpen),
		HighPrice:      num(fields, fieldHigh),
		LowPrice:       num(fields, fieldLow),
		Change:         change,
		ChangePercent:  changePct,
		Volume:         integer(fields, fieldVolume) / 100, // shares -> lots
		Amount:         num(fields, fieldAmount),
		Bids:           levels(fields, fieldBid1Vol),
		Asks:           levels(fields, fieldAsk1Vol),
	}

	// "2023-10-10" + "15:00:03" -> the shared YYYYMMDDHHMMSS form
	raw := strings.ReplaceAll(strings.TrimSpace(fields[fieldDate]), "-", "") +
		strings.ReplaceAll(strings.TrimSpace(fields[fieldTime]), ":", "")
	if ts, err := quote.ParseTimestamp(raw, now); err == nil {
		q.RawTimestamp = ts.Raw
		q.LocalTime = ts.LocalText
		q.UTCTime = ts.UTC
		q.MarketSession = ts.Session
		q.DataAgeMinutes = ts.AgeMinutes
	} else {
		q.RawTimestamp = raw
		q.MarketSession = quote.SessionMarketClosed
	}
	return q, nil
}

// levels reads orderBookLevels volume,price pairs starting at the given
// index. Sina orders each pair volume first, opposite to the primary.
func levels(fields []string, start int) []quote.OrderLevel {
	out := make([]quote.OrderLevel, 0, orderBookLevels)
	for i := 0; i < orderBookLevels; i++ {
		out = append(out, quote.OrderLevel{
			Price:  num(fields, start+2*i+1),
			Volume: integer(fields, start+2*i) / 100, // shares -> lots
		})
	}
	return out
}

func num(fields []string, idx int) float64 {
	if idx < 0 || idx >= len(fields) {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(fields[idx]), 64)
	if err != nil {
		return 0
	}
	return v
}

func integer(fields []string, idx int) int64 {
	return int64(num(fields, idx))
}
