package cache

import (
	"time"
)

// MarketTimezone is where US equities settle their daily close.
const MarketTimezone = "America/New_York"

// DailyRefreshHour is the local hour after which the day's close is expected to be ingested.
const DailyRefreshHour = 18

// TimeUntilNextRefresh returns the time from now until the next hour:00 in loc.
// Cached candle reads expire there so a fresh daily ingest becomes visible.
func TimeUntilNextRefresh(now time.Time, loc *time.Location, hour int) time.Duration {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(local)
}

// TimeUntilMarketRefresh is TimeUntilNextRefresh for the US market close.
// Falls back to UTC when the zone database is unavailable.
func TimeUntilMarketRefresh() time.Duration {
	loc, err := time.LoadLocation(MarketTimezone)
	if err != nil {
		loc = time.UTC
	}
	return TimeUntilNextRefresh(time.Now(), loc, DailyRefreshHour)
}
