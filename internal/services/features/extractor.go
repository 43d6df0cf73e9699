package features

import (
	"math"

	"StockPulse/internal/domain/models"
)

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(candles)-1, or nil if insufficient data.
func ComputeLogReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility over a rolling window
// using the provided number of bars per year. Returns the latest window sigma.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	// annualize
	return math.Sqrt(variance * barsPerYear)
}

// RollingVolatility returns the realized volatility of every full window, aligned
// to the tail of logReturns.
func RollingVolatility(logReturns []float64, window int, barsPerYear float64) []float64 {
	if window <= 1 || len(logReturns) < window {
		return nil
	}
	out := make([]float64, 0, len(logReturns)-window+1)
	for end := window; end <= len(logReturns); end++ {
		out = append(out, RealizedVolatility(logReturns[:end], window, barsPerYear))
	}
	return out
}

// BarsPerYearForTF returns the approximate number of bars per year for a timeframe.
func BarsPerYearForTF(tf string) float64 {
	switch tf {
	case "1m":
		return 252 * 390
	case "5m":
		return 252 * 78
	default:
		return 252
	}
}

// Closes extracts close prices.
func Closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// SMA is the simple moving average of the last n values, or NaN when short.
func SMA(values []float64, n int) float64 {
	if n <= 0 || len(values) < n {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}

// RSI is Wilder's relative strength index over period, or NaN when short.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) <= period {
		return math.NaN()
	}
	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
	}
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// RateOfChange returns the percent change over the last n bars, or NaN when short.
func RateOfChange(closes []float64, n int) float64 {
	if n <= 0 || len(closes) <= n {
		return math.NaN()
	}
	base := closes[len(closes)-1-n]
	if base == 0 {
		return math.NaN()
	}
	return (closes[len(closes)-1] - base) / base * 100
}

// MaxDrawdown returns the largest peak-to-trough decline as a positive fraction.
func MaxDrawdown(closes []float64) float64 {
	peak, dd := 0.0, 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			if d := (peak - c) / peak; d > dd {
				dd = d
			}
		}
	}
	return dd
}

// VolumeBin is one price bucket of a volume profile.
type VolumeBin struct {
	Low    float64
	High   float64
	Volume float64
}

// VolumeProfile distributes candle volume over bins equal-width price buckets
// keyed by the typical price (H+L+C)/3. poc is the index of the heaviest bin.
func VolumeProfile(candles []models.Candle, bins int) (profile []VolumeBin, poc int) {
	if len(candles) == 0 || bins <= 0 {
		return nil, -1
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range candles {
		lo = math.Min(lo, c.Low)
		hi = math.Max(hi, c.High)
	}
	if hi <= lo {
		hi = lo + 1e-9
	}
	width := (hi - lo) / float64(bins)
	profile = make([]VolumeBin, bins)
	for i := range profile {
		profile[i] = VolumeBin{Low: lo + float64(i)*width, High: lo + float64(i+1)*width}
	}
	for _, c := range candles {
		tp := (c.High + c.Low + c.Close) / 3
		i := int((tp - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		profile[i].Volume += c.Volume
	}
	poc = 0
	for i := range profile {
		if profile[i].Volume > profile[poc].Volume {
			poc = i
		}
	}
	return profile, poc
}

// Snapshot builds the flat feature map sent to the analytics service.
func Snapshot(candles []models.Candle, tf string) map[string]float64 {
	closes := Closes(candles)
	rets := ComputeLogReturns(candles)
	bpy := BarsPerYearForTF(tf)
	out := map[string]float64{
		"rv_20":   RealizedVolatility(rets, 20, bpy),
		"rv_60":   RealizedVolatility(rets, 60, bpy),
		"max_dd":  MaxDrawdown(closes),
		"n_bars":  float64(len(candles)),
		"ret_20d": RateOfChange(closes, 20),
		"rsi_14":  RSI(closes, 14),
	}
	if len(rets) > 0 {
		out["ret_1"] = rets[len(rets)-1]
	}
	for k, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			delete(out, k)
		}
	}
	return out
}
