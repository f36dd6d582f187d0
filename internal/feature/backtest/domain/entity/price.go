package entity

import "time"

// PricePoint is a single closing price observation.
type PricePoint struct {
	Time  time.Time // Observation timestamp (for daily data, the trading day)
	Close float64   // Closing price
}

// PriceSeries is a time-ordered sequence of closing prices for one instrument.
// Timestamps must be strictly increasing and prices positive.
type PriceSeries []PricePoint

// Closes returns the closing prices in order.
func (p PriceSeries) Closes() []float64 {
	out := make([]float64, len(p))
	for i, pt := range p {
		out[i] = pt.Close
	}
	return out
}

// Span returns the first and last timestamps. ok is false for an empty series.
func (p PriceSeries) Span() (first, last time.Time, ok bool) {
	if len(p) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return p[0].Time, p[len(p)-1].Time, true
}
