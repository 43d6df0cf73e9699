package repository

import "strings"

// Timeframe is a candle resolution.
type Timeframe string

const (
	TF1m Timeframe = "1m"
	TF5m Timeframe = "5m"
	TF1d Timeframe = "1d"
)

var timeframes = []Timeframe{TF1m, TF5m, TF1d}

// Timeframes lists the supported resolutions, finest first.
func Timeframes() []Timeframe {
	return append([]Timeframe(nil), timeframes...)
}

func IsValidTimeframe(tf Timeframe) bool {
	for _, t := range timeframes {
		if t == tf {
			return true
		}
	}
	return false
}

// DefaultTimeframe is daily, the only resolution with enough history for the
// 200 bar indicators.
func DefaultTimeframe() Timeframe { return TF1d }

// NormalizeTimeframe maps s onto a supported timeframe, ignoring case and
// surrounding space. Anything else yields the default.
func NormalizeTimeframe(s string) Timeframe {
	tf := Timeframe(strings.ToLower(strings.TrimSpace(s)))
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}
