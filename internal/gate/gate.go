// Package gate decides whether a cached quote snapshot is good enough to
// show or whether the quote service must be asked again.
package gate

import (
	"fmt"
	"time"
)

// CacheState describes the cache file as seen at decision time.
type CacheState struct {
	Exists  bool
	ModTime time.Time
}

// Policy holds the market-hours window of one profile.
//
// ClosedUntil and ClosedFrom are local HHMM values. Any time-of-day at or
// before ClosedUntil, or at or after ClosedFrom, counts as closed. MaxAge of
// zero disables the staleness ceiling.
type Policy struct {
	ClosedUntil int
	ClosedFrom  int
	MaxAge      time.Duration
	Location    *time.Location
}

// Decision is the gate outcome. Reason is meant for debug logs.
type Decision struct {
	UseCache bool
	Reason   string
}

// HHMM returns t's time of day as hour*100+minute.
func HHMM(t time.Time) int { return t.Hour()*100 + t.Minute() }

// MarketClosed reports whether now falls outside regular trading hours.
func (p Policy) MarketClosed(now time.Time) bool {
	if p.Location != nil {
		now = now.In(p.Location)
	}
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	hm := HHMM(now)
	return hm <= p.ClosedUntil || hm >= p.ClosedFrom
}

// Decide applies the policy to the cache state.
func (p Policy) Decide(now time.Time, st CacheState) Decision {
	if !st.Exists {
		return Decision{Reason: "no cache file"}
	}
	if !p.MarketClosed(now) {
		return Decision{Reason: "market open"}
	}
	if p.MaxAge > 0 {
		if age := now.Sub(st.ModTime); age > p.MaxAge {
			return Decision{Reason: fmt.Sprintf("cache age %s exceeds %s", age.Truncate(time.Second), p.MaxAge)}
		}
	}
	return Decision{UseCache: true, Reason: "market closed"}
}
