package quote

import "time"

// OrderLevel is one price level of the order book.
// Volume is in lots (1 lot = 100 shares).
type OrderLevel struct {
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

// Quote is one snapshot of a single ticker, normalized from an upstream
// text reply. A Quote is never mutated after construction; Validate
// returns an annotated copy instead.
type Quote struct {
	StockCode string `json:"stock_code"`
	StockName string `json:"stock_name"`

	CurrentPrice   float64 `json:"current_price"`
	YesterdayClose float64 `json:"yesterday_close"`
	TodayOpen      float64 `json:"today_open"`
	HighPrice      float64 `json:"high_price"`
	LowPrice       float64 `json:"low_price"`

	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`

	Volume       int64   `json:"volume"` // lots
	Amount       float64 `json:"amount"` // CNY
	TurnoverRate float64 `json:"turnover_rate"`

	Bids []OrderLevel `json:"bids"`
	Asks []OrderLevel `json:"asks"`

	PERatio        float64 `json:"pe_ratio"`
	PBRatio        float64 `json:"pb_ratio"`
	MarketCap      float64 `json:"market_cap"`       // 100M CNY
	CirculationCap float64 `json:"circulation_cap"`  // 100M CNY
	Amplitude      float64 `json:"amplitude"`
	VolumeRatio    float64 `json:"volume_ratio"`
	LimitUp        float64 `json:"limit_up"`
	LimitDown      float64 `json:"limit_down"`

	RawTimestamp   string    `json:"raw_timestamp"`
	LocalTime      string    `json:"local_time"`
	UTCTime        time.Time `json:"utc_time"`
	MarketSession  string    `json:"market_session"`
	DataAgeMinutes int       `json:"data_age_minutes"`

	// Quality annotations, set by Validate only.
	Warnings        []string `json:"warnings"`
	QualityScore    int      `json:"quality_score"`
	QualityGrade    string   `json:"quality_grade"`
	AgentUsable     bool     `json:"agent_usable"`
	PERatioStatus   string   `json:"pe_ratio_status,omitempty"`
	TradingStatus   string   `json:"trading_status,omitempty"`
	OrderBookStatus string   `json:"order_book_status,omitempty"`
}

// BatchResult aggregates one inbound request: successfully parsed quotes,
// per-symbol error messages, aggregated quality warnings, and the shared
// request-time market session status. Not mutated after the batch returns.
type BatchResult struct {
	Quotes       []Quote
	Errors       []string
	Warnings     []string
	MarketStatus string
}
