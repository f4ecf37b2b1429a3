package tencent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"stockquote/internal/observability"
	"stockquote/internal/provider"
	"stockquote/internal/quote"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=tencent_test -destination=mock_http_client_test.go -source=tencent.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	Name      string
	BaseURL   string
	Referer   string
	UserAgent string
}

// Client fetches quotes from the Tencent finance text endpoint. The reply
// body is GBK-encoded and carries one v_<symbol>="..." assignment per
// requested symbol.
type Client struct {
	cfg        Config
	httpClient HTTPClient
}

func New(cfg Config, hc HTTPClient) *Client {
	if cfg.Name == "" {
		cfg.Name = "Tencent"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://qt.gtimg.cn"
	}
	if cfg.Referer == "" {
		cfg.Referer = "https://gu.qq.com/"
	}
	return &Client{cfg: cfg, httpClient: hc}
}

func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) Fetch(ctx context.Context, symbol string) (quote.Quote, error) {
	u := fmt.Sprintf("%s/q=%s", c.cfg.BaseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Referer", c.cfg.Referer)

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordUpstream(c.cfg.Name, "error", time.Since(start))
		return quote.Quote{}, fmt.Errorf("fetching %s: %w", symbol, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		observability.RecordUpstream(c.cfg.Name, "error", time.Since(start))
		return quote.Quote{}, fmt.Errorf("GET %s -> %d", u, res.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(res.Body, 256<<10))
	if err != nil {
		observability.RecordUpstream(c.cfg.Name, "error", time.Since(start))
		return quote.Quote{}, fmt.Errorf("reading body: %w", err)
	}
	observability.RecordUpstream(c.cfg.Name, "ok", time.Since(start))

	body, err := decodeGBK(raw)
	if err != nil {
		// keep the raw bytes; the name repair in validation covers mojibake
		body = string(raw)
	}
	q, err := Parse(body, symbol, time.Now())
	if err != nil {
		observability.RecordParseFailure(c.cfg.Name, parseReason(err))
		return quote.Quote{}, err
	}
	return q, nil
}

// payloadRe captures the quoted payload of the first ="..." assignment.
var payloadRe = regexp.MustCompile(`="([^"]*)"`)

// Parse turns one decoded reply body into a Quote. It is a pure function
// of (body, symbol, now) and reports ErrNotParseable instead of panicking
// on malformed input. Numeric fields that fail to parse read as zero.
func Parse(body, symbol string, now time.Time) (quote.Quote, error) {
	m := payloadRe.FindStringSubmatch(body)
	if m == nil {
		return quote.Quote{}, fmt.Errorf("%w: %s: no quoted payload", provider.ErrNotParseable, symbol)
	}
	fields := strings.Split(m[1], "~")
	if len(fields) < MinFields {
		return quote.Quote{}, fmt.Errorf("%w: %s: %d fields, need %d", provider.ErrNotParseable, symbol, len(fields), MinFields)
	}
	price := num(fields, FieldCurrentPrice)
	if price <= 0 {
		return quote.Quote{}, fmt.Errorf("%w: %s: non-positive price %v", provider.ErrNotParseable, symbol, price)
	}

	q := quote.Quote{
		StockCode:      symbol,
		StockName:      strings.TrimSpace(fields[FieldName]),
		CurrentPrice:   price,
		YesterdayClose: num(fields, FieldYesterdayClose),
		TodayOpen:      num(fields, FieldTodayOpen),
		HighPrice:      num(fields, FieldHighPrice),
		LowPrice:       num(fields, FieldLowPrice),
		Change:         num(fields, FieldChange),
		ChangePercent:  num(fields, FieldChangePercent),
		Volume:         integer(fields, FieldVolumeLots),
		Amount:         num(fields, FieldAmountWan) * 10000, // 万元 -> CNY
		TurnoverRate:   num(fields, FieldTurnoverRate),
		Bids:           levels(fields, FieldBid1Price),
		Asks:           levels(fields, FieldAsk1Price),
		PERatio:        num(fields, FieldPERatio),
		PBRatio:        num(fields, FieldPBRatio),
		MarketCap:      num(fields, FieldMarketCap),
		CirculationCap: num(fields, FieldCirculationCap),
		Amplitude:      num(fields, FieldAmplitude),
		VolumeRatio:    num(fields, FieldVolumeRatio),
		LimitUp:        num(fields, FieldLimitUp),
		LimitDown:      num(fields, FieldLimitDown),
	}

	raw := strings.TrimSpace(fields[FieldTimestamp])
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

// levels reads OrderBookLevels consecutive price,volume pairs starting at
// the given index.
func levels(fields []string, start int) []quote.OrderLevel {
	out := make([]quote.OrderLevel, 0, OrderBookLevels)
	for i := 0; i < OrderBookLevels; i++ {
		out = append(out, quote.OrderLevel{
			Price:  num(fields, start+2*i),
			Volume: integer(fields, start+2*i+1),
		})
	}
	return out
}

// num applies the tolerant numeric-or-zero rule: missing or unparseable
// fields read as 0, never as an error.
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

func decodeGBK(b []byte) (string, error) {
	out, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func parseReason(err error) string {
	s := err.Error()
	switch {
	case strings.Contains(s, "no quoted payload"):
		return "no_payload"
	case strings.Contains(s, "fields"):
		return "short_reply"
	case strings.Contains(s, "non-positive"):
		return "bad_price"
	default:
		return "other"
	}
}
