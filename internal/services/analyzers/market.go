package analyzers

import (
	"context"
	"fmt"
	"math"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/features"
	"StockPulse/pkg/document"
)

const (
	recentBars        = 5
	volumeProfileBins = 10
	technicalMinBars  = 50
	momentumMinBars   = 21
	riskMinBars       = 21
)

func (r *Registry) loadCandles(ctx context.Context, symbol string, minBars int) ([]models.Candle, error) {
	if r.deps.Store == nil {
		return nil, errStoreNotConfigured
	}
	candles, err := r.deps.Store.GetLatestNCandles(ctx, symbol, r.opts.Window, r.opts.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("load candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no %s candles for %s", r.opts.Timeframe, symbol)
	}
	if len(candles) < minBars {
		return nil, fmt.Errorf("need at least %d bars, have %d", minBars, len(candles))
	}
	return candles, nil
}

func (r *Registry) quote(ctx context.Context, s models.Subject) (document.Value, error) {
	if r.deps.Quotes == nil {
		return document.Null(), errQuotesNotConfigured
	}
	q, err := r.deps.Quotes.Quote(ctx, s.Symbol)
	if err != nil {
		return document.Null(), err
	}
	f := document.Fields{"timestamp": document.Number(float64(q.Timestamp))}
	setNum(f, "price", q.Price)
	setNum(f, "change", q.Change)
	setNum(f, "change_percent", q.ChangePercent)
	setNum(f, "high", q.High)
	setNum(f, "low", q.Low)
	setNum(f, "open", q.Open)
	setNum(f, "previous_close", q.PreviousClose)
	return document.Map(f), nil
}

func (r *Registry) priceHistory(ctx context.Context, s models.Subject) (document.Value, error) {
	candles, err := r.loadCandles(ctx, s.Symbol, 2)
	if err != nil {
		return document.Null(), err
	}
	first, last := candles[0], candles[len(candles)-1]
	hi, lo := math.Inf(-1), math.Inf(1)
	for _, c := range candles {
		hi = math.Max(hi, c.High)
		lo = math.Min(lo, c.Low)
	}

	start := len(candles) - recentBars
	if start < 0 {
		start = 0
	}
	recent := make([]document.Value, 0, recentBars)
	for _, c := range candles[start:] {
		recent = append(recent, candleDoc(c))
	}

	f := document.Fields{
		"timeframe": document.String(string(r.opts.Timeframe)),
		"bars":      document.Int(len(candles)),
		"from":      document.String(first.Bucket.Format("2006-01-02")),
		"to":        document.String(last.Bucket.Format("2006-01-02")),
		"recent":    document.Array(recent...),
	}
	setNum(f, "high", hi)
	setNum(f, "low", lo)
	if first.Close > 0 {
		setNum(f, "change_percent", (last.Close-first.Close)/first.Close*100)
	}
	return document.Map(f), nil
}

func (r *Registry) technical(ctx context.Context, s models.Subject) (document.Value, error) {
	candles, err := r.loadCandles(ctx, s.Symbol, technicalMinBars)
	if err != nil {
		return document.Null(), err
	}
	closes := features.Closes(candles)
	last := closes[len(closes)-1]
	sma20 := features.SMA(closes, 20)
	sma50 := features.SMA(closes, 50)
	sma200 := features.SMA(closes, 200)
	rsi := features.RSI(closes, 14)

	score := compare(last, sma50) + compare(sma20, sma50)
	if !math.IsNaN(sma200) {
		score += compare(last, sma200)
	}
	switch {
	case rsi < 30:
		score++
	case rsi > 70:
		score--
	}

	indicators := document.Fields{}
	setNum(indicators, "close", last)
	setNum(indicators, "sma_20", sma20)
	setNum(indicators, "sma_50", sma50)
	setNum(indicators, "sma_200", sma200)
	setNum(indicators, "rsi_14", rsi)

	return document.Map(document.Fields{
		"indicators": document.Map(indicators),
		"summary": document.Map(document.Fields{
			"recommendation": document.String(technicalRecommendation(score)),
			"score":          document.Int(score),
		}),
	}), nil
}

func technicalRecommendation(score int) string {
	switch {
	case score >= 2:
		return "Buy"
	case score <= -2:
		return "Sell"
	default:
		return "Hold"
	}
}

func (r *Registry) momentum(ctx context.Context, s models.Subject) (document.Value, error) {
	candles, err := r.loadCandles(ctx, s.Symbol, momentumMinBars)
	if err != nil {
		return document.Null(), err
	}
	closes := features.Closes(candles)
	roc5 := features.RateOfChange(closes, 5)
	roc20 := features.RateOfChange(closes, 20)

	trend := "neutral"
	switch {
	case roc20 > 2:
		trend = "bullish"
	case roc20 < -2:
		trend = "bearish"
	}

	sig := document.Fields{"trend": document.String(trend)}
	setNum(sig, "strength", math.Abs(roc20))
	f := document.Fields{"signal": document.Map(sig)}
	setNum(f, "roc_5", roc5)
	setNum(f, "roc_20", roc20)
	setNum(f, "rsi_14", features.RSI(closes, 14))
	return document.Map(f), nil
}

func (r *Registry) risk(ctx context.Context, s models.Subject) (document.Value, error) {
	candles, err := r.loadCandles(ctx, s.Symbol, riskMinBars)
	if err != nil {
		return document.Null(), err
	}
	rets := features.ComputeLogReturns(candles)
	vol := features.RealizedVolatility(rets, 20, features.BarsPerYearForTF(string(r.opts.Timeframe)))
	dd := features.MaxDrawdown(features.Closes(candles))

	f := document.Fields{"level": document.String(riskLevel(vol, dd))}
	setNum(f, "volatility", vol)
	setNum(f, "max_drawdown", dd)
	return document.Map(document.Fields{"risk": document.Map(f)}), nil
}

func riskLevel(vol, dd float64) string {
	switch {
	case vol > 0.4 || dd > 0.3:
		return "high"
	case vol < 0.2 && dd < 0.15:
		return "low"
	default:
		return "medium"
	}
}

func (r *Registry) volumeProfile(ctx context.Context, s models.Subject) (document.Value, error) {
	candles, err := r.loadCandles(ctx, s.Symbol, 1)
	if err != nil {
		return document.Null(), err
	}
	profile, poc := features.VolumeProfile(candles, volumeProfileBins)
	total := 0.0
	bins := make([]document.Value, 0, len(profile))
	for _, b := range profile {
		total += b.Volume
		bins = append(bins, binDoc(b))
	}
	f := document.Fields{
		"bins":         document.Array(bins...),
		"total_volume": document.Number(total),
	}
	if poc >= 0 {
		f["point_of_control"] = binDoc(profile[poc])
	}
	return document.Map(f), nil
}

func candleDoc(c models.Candle) document.Value {
	f := document.Fields{"date": document.String(c.Bucket.Format("2006-01-02"))}
	setNum(f, "close", c.Close)
	setNum(f, "volume", c.Volume)
	return document.Map(f)
}

func binDoc(b features.VolumeBin) document.Value {
	f := document.Fields{}
	setNum(f, "low", b.Low)
	setNum(f, "high", b.High)
	setNum(f, "volume", b.Volume)
	return document.Map(f)
}

// compare returns 1, -1 or 0 and treats NaN as no information.
func compare(a, b float64) int {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return 0
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// setNum stores v rounded to four places, skipping NaN and Inf.
func setNum(f document.Fields, key string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	f[key] = document.Number(math.Round(v*1e4) / 1e4)
}
