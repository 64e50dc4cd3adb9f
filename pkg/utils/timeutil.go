package utils

import "time"

// BRT is the São Paulo time zone (UTC-3, no DST since 2019).
var BRT *time.Location

func init() {
	var err error
	BRT, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// Fallback if the tz database is not available.
		BRT = time.FixedZone("BRT", -3*60*60)
	}
}

// NowBRT returns the current time in São Paulo.
func NowBRT() time.Time {
	return time.Now().In(BRT)
}

// MarketOpenTime returns the B3 trading session open (10:00 BRT) for a date.
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(BRT)
	return time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, BRT)
}

// MarketCloseTime returns the B3 trading session close (17:00 BRT) for a date.
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(BRT)
	return time.Date(d.Year(), d.Month(), d.Day(), 17, 0, 0, 0, BRT)
}

// IsMarketOpenAt reports whether the B3 session is open at time t.
// Holidays are not tracked, only weekends and session hours.
func IsMarketOpenAt(t time.Time) bool {
	t = t.In(BRT)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !t.Before(MarketOpenTime(t)) && t.Before(MarketCloseTime(t))
}

// IsMarketOpen reports whether the B3 session is open right now.
func IsMarketOpen() bool {
	return IsMarketOpenAt(NowBRT())
}

// MarketStatus returns a human-readable market status string.
func MarketStatus() string {
	if IsMarketOpen() {
		return "OPEN"
	}
	return "CLOSED"
}
