package tencent

// Positions of the named attributes inside the tilde-delimited payload of
// a qt.gtimg.cn reply. The ordering is the provider's only contract and is
// transcribed as-is; do not renumber. MinFields guards the highest index
// in use (FieldVolumeRatio).
const (
	FieldName           = 1
	FieldCode           = 2
	FieldCurrentPrice   = 3
	FieldYesterdayClose = 4
	FieldTodayOpen      = 5
	FieldVolumeLots     = 6
	FieldBid1Price      = 9 // bid/ask levels are price,volume pairs
	FieldAsk1Price      = 19
	FieldTimestamp      = 30
	FieldChange         = 31
	FieldChangePercent  = 32
	FieldHighPrice      = 33
	FieldLowPrice       = 34
	FieldVolumeLots2    = 36
	FieldAmountWan      = 37 // 万元
	FieldTurnoverRate   = 38
	FieldPERatio        = 39
	FieldAmplitude      = 43
	FieldCirculationCap = 44 // 亿元
	FieldMarketCap      = 45 // 亿元
	FieldPBRatio        = 46
	FieldLimitUp        = 47
	FieldLimitDown      = 48
	FieldVolumeRatio    = 49
)

// MinFields is the smallest payload the full schema can be read from.
const MinFields = 50

// OrderBookLevels is the depth reported on each side of the book.
const OrderBookLevels = 5

// FieldNames documents every position the parser reads, keyed by index.
// Exists so the positional contract can be asserted in tests independently
// of parsing code.
var FieldNames = map[int]string{
	FieldName:           "stock_name",
	FieldCode:           "stock_code",
	FieldCurrentPrice:   "current_price",
	FieldYesterdayClose: "yesterday_close",
	FieldTodayOpen:      "today_open",
	FieldVolumeLots:     "volume",
	FieldBid1Price:      "bid1_price",
	FieldAsk1Price:      "ask1_price",
	FieldTimestamp:      "raw_timestamp",
	FieldChange:         "change",
	FieldChangePercent:  "change_percent",
	FieldHighPrice:      "high_price",
	FieldLowPrice:       "low_price",
	FieldAmountWan:      "amount",
	FieldTurnoverRate:   "turnover_rate",
	FieldPERatio:        "pe_ratio",
	FieldAmplitude:      "amplitude",
	FieldCirculationCap: "circulation_cap",
	FieldMarketCap:      "market_cap",
	FieldPBRatio:        "pb_ratio",
	FieldLimitUp:        "limit_up",
	FieldLimitDown:      "limit_down",
	FieldVolumeRatio:    "volume_ratio",
}
