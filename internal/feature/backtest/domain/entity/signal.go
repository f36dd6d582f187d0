package entity

import "time"

// Signal is the directional view derived from the two moving averages.
type Signal int8

const (
	Bearish Signal = -1
	Neutral Signal = 0
	Bullish Signal = 1
)

// String returns a short label for the signal.
func (s Signal) String() string {
	switch s {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "neutral"
	}
}

// Position is the exposure held during a period: the signal of the
// previous period. It is undefined for the first period.
type Position = Maybe[Signal]

// EventKind identifies a position transition.
type EventKind string

const (
	EventBuy  EventKind = "buy"
	EventSell EventKind = "sell"
)

// Event marks the period where the position switched into long (buy)
// or short (sell), with the close of that period.
type Event struct {
	Kind  EventKind
	Index int       // Index into the price series
	Time  time.Time // Timestamp of the period
	Price float64   // Close of the period
}
