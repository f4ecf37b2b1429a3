package quote

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Annotation values set by Validate.
const (
	PENegativeEarnings  = "negative_earnings"
	PEExtremelyHigh     = "extremely_high"
	TradingPossiblySusp = "possibly_suspended"
	OrderBookIncomplete = "incomplete"
)

// fallbackNames maps well-known codes to display names, used when the
// upstream name arrives empty or mangled. Static data, never mutated.
var fallbackNames = map[string]string{
	"sz000001": "平安银行",
	"sz000002": "万科A",
	"sz000858": "五粮液",
	"sz300750": "宁德时代",
	"sh600000": "浦发银行",
	"sh600036": "招商银行",
	"sh600519": "贵州茅台",
	"sh601318": "中国平安",
	"sh601398": "工商银行",
	"sh601857": "中国石油",
}

// corruptionMarkers appear in names when a GBK body was mis-decoded
// somewhere upstream of us.
var corruptionMarkers = []string{"�", "??", "锟斤拷"}

// Validate re-checks a parsed Quote for data-quality anomalies. It never
// rejects: every anomaly becomes a warning plus, where applicable, a
// status annotation on the returned copy. Score starts at 100 and loses 10
// per warning with no clamp; grade and agent_usable derive from the score.
func Validate(q Quote) (Quote, []string) {
	var warnings []string

	if name, bad := repairName(q.StockCode, q.StockName); bad {
		warnings = append(warnings, fmt.Sprintf("%s: display name missing or corrupted, using fallback", q.StockCode))
		q.StockName = name
	}
	if q.PERatio < 0 {
		warnings = append(warnings, fmt.Sprintf("%s: negative P/E ratio %.2f", q.StockCode, q.PERatio))
		q.PERatioStatus = PENegativeEarnings
	} else if q.PERatio > 1000 {
		warnings = append(warnings, fmt.Sprintf("%s: P/E ratio %.2f implausibly high", q.StockCode, q.PERatio))
		q.PERatioStatus = PEExtremelyHigh
	}
	if q.CurrentPrice <= 0 {
		warnings = append(warnings, fmt.Sprintf("%s: non-positive current price %.2f", q.StockCode, q.CurrentPrice))
	}
	if q.HighPrice < q.LowPrice {
		warnings = append(warnings, fmt.Sprintf("%s: high %.2f below low %.2f", q.StockCode, q.HighPrice, q.LowPrice))
	}
	if q.Volume == 0 && q.MarketSession == SessionTradingMorning {
		warnings = append(warnings, fmt.Sprintf("%s: zero volume during morning session, possibly suspended", q.StockCode))
		q.TradingStatus = TradingPossiblySusp
	}
	if allLevelsZero(q.Bids) || allLevelsZero(q.Asks) {
		warnings = append(warnings, fmt.Sprintf("%s: order book incomplete", q.StockCode))
		q.OrderBookStatus = OrderBookIncomplete
	}

	q.Warnings = warnings
	q.QualityScore = 100 - 10*len(warnings)
	q.QualityGrade = gradeFor(q.QualityScore)
	q.AgentUsable = q.QualityScore >= 70
	return q, warnings
}

func gradeFor(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	default:
		return "D"
	}
}

// repairName reports whether the upstream name is unusable and, if so,
// returns the static fallback (or the code itself when no entry exists).
func repairName(code, name string) (string, bool) {
	bad := utf8.RuneCountInString(strings.TrimSpace(name)) < 2
	if !bad {
		for _, m := range corruptionMarkers {
			if strings.Contains(name, m) {
				bad = true
				break
			}
		}
	}
	if !bad {
		return name, false
	}
	if fb, ok := fallbackNames[strings.ToLower(code)]; ok {
		return fb, true
	}
	return code, true
}

func allLevelsZero(levels []OrderLevel) bool {
	for _, l := range levels {
		if l.Price != 0 {
			return false
		}
	}
	return true
}
