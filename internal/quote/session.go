package quote

import (
	"fmt"
	"time"
)

// Session labels for the phases of the A-share trading day.
const (
	SessionPreMarket        = "pre_market"
	SessionTradingMorning   = "trading_morning"
	SessionTradingAfternoon = "trading_afternoon"
	SessionAfterHours       = "after_hours"
	SessionWeekendClosed    = "weekend_closed"
	SessionMarketClosed     = "market_closed"
)

// BeijingZone is the fixed offset both upstream providers emit their
// calendar time in. A fixed zone keeps parsing independent of host tzdata.
var BeijingZone = time.FixedZone("CST", 8*60*60)

// rawTimestampLayout matches the provider's 14-char YYYYMMDDHHMMSS field.
const rawTimestampLayout = "20060102150405"

// Timestamp is the time information derived from an upstream reply.
type Timestamp struct {
	Raw        string
	Local      time.Time // provider-local calendar time
	LocalText  string    // display form, e.g. "2023-10-10 15:00:03"
	UTC        time.Time
	Session    string
	AgeMinutes int
}

// ParseTimestamp parses a provider-local YYYYMMDDHHMMSS timestamp. Age is
// whole minutes relative to now; negative ages (clock skew) clamp to zero.
func ParseTimestamp(raw string, now time.Time) (Timestamp, error) {
	local, err := time.ParseInLocation(rawTimestampLayout, raw, BeijingZone)
	if err != nil {
		return Timestamp{}, fmt.Errorf("timestamp %q: %w", raw, err)
	}
	age := int(now.Sub(local).Minutes())
	if age < 0 {
		age = 0
	}
	return Timestamp{
		Raw:        raw,
		Local:      local,
		LocalText:  local.Format("2006-01-02 15:04:05"),
		UTC:        local.UTC(),
		Session:    SessionAt(local),
		AgeMinutes: age,
	}, nil
}

// SessionAt labels a provider-local instant by the intraday table:
//
//	09:00-09:29 pre_market
//	09:30-11:30 trading_morning
//	13:00-15:00 trading_afternoon
//	15:01-16:00 after_hours
//	otherwise   market_closed
//
// Boundaries are inclusive on both ends. The 17:00 after-hours variant
// seen in the wild is intentionally not used here.
func SessionAt(t time.Time) string {
	hm := t.Hour()*60 + t.Minute()
	switch {
	case hm >= 9*60 && hm <= 9*60+29:
		return SessionPreMarket
	case hm >= 9*60+30 && hm <= 11*60+30:
		return SessionTradingMorning
	case hm >= 13*60 && hm <= 15*60:
		return SessionTradingAfternoon
	case hm >= 15*60+1 && hm <= 16*60:
		return SessionAfterHours
	default:
		return SessionMarketClosed
	}
}

// CurrentSession labels request time. Weekends short-circuit the intraday
// table; that rule applies to request time only, not to quote timestamps.
func CurrentSession(now time.Time) string {
	local := now.In(BeijingZone)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return SessionWeekendClosed
	}
	return SessionAt(local)
}
