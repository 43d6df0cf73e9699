package analyzers

import (
	"context"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/features"
	"StockPulse/pkg/document"
)

// remoteMinBars leaves a full 20-bar volatility window after differencing.
const remoteMinBars = 21

func (r *Registry) regime(ctx context.Context, s models.Subject) (document.Value, error) {
	if r.deps.Regime == nil {
		return document.Null(), errAnalyticsNotConfigured
	}
	candles, err := r.loadCandles(ctx, s.Symbol, remoteMinBars)
	if err != nil {
		return document.Null(), err
	}
	rg, err := r.deps.Regime.Detect(ctx, s.Symbol, features.ComputeLogReturns(candles))
	if err != nil {
		return document.Null(), err
	}
	probs := make([]document.Value, 0, len(rg.Prob))
	for _, p := range rg.Prob {
		probs = append(probs, document.Number(p))
	}
	f := document.Fields{
		"state": document.String(rg.State),
		"prob":  document.Array(probs...),
	}
	setNum(f, "confidence", rg.Confidence)
	return document.Map(document.Fields{"regime": document.Map(f)}), nil
}

func (r *Registry) volatility(ctx context.Context, s models.Subject) (document.Value, error) {
	if r.deps.Vol == nil {
		return document.Null(), errAnalyticsNotConfigured
	}
	candles, err := r.loadCandles(ctx, s.Symbol, remoteMinBars)
	if err != nil {
		return document.Null(), err
	}
	vf, err := r.deps.Vol.Forecast(ctx, s.Symbol, features.Snapshot(candles, string(r.opts.Timeframe)), r.opts.Horizon)
	if err != nil {
		return document.Null(), err
	}
	f := document.Fields{
		"horizon": document.String(vf.Horizon),
		"model":   document.String(vf.Model),
	}
	setNum(f, "forecast", vf.Forecast)
	setNum(f, "nowcast", vf.Nowcast)
	return document.Map(document.Fields{"volatility": document.Map(f)}), nil
}

func (r *Registry) anomalies(ctx context.Context, s models.Subject) (document.Value, error) {
	if r.deps.Anomaly == nil {
		return document.Null(), errAnalyticsNotConfigured
	}
	candles, err := r.loadCandles(ctx, s.Symbol, remoteMinBars)
	if err != nil {
		return document.Null(), err
	}
	rets := features.ComputeLogReturns(candles)
	vols := features.RollingVolatility(rets, 20, features.BarsPerYearForTF(string(r.opts.Timeframe)))
	found, err := r.deps.Anomaly.Detect(ctx, s.Symbol, rets, vols)
	if err != nil {
		return document.Null(), err
	}
	items := make([]document.Value, 0, len(found))
	for _, an := range found {
		item := document.Fields{
			"index": document.Int(an.Index),
			"type":  document.String(an.Type),
		}
		if an.Index >= 0 && an.Index+1 < len(candles) {
			item["date"] = document.String(candles[an.Index+1].Bucket.Format("2006-01-02"))
		}
		setNum(item, "severity", an.Severity)
		items = append(items, document.Map(item))
	}
	return document.Map(document.Fields{
		"count":     document.Int(len(found)),
		"anomalies": document.Array(items...),
	}), nil
}

func (r *Registry) edge(ctx context.Context, s models.Subject) (document.Value, error) {
	if r.deps.Edge == nil {
		return document.Null(), errAnalyticsNotConfigured
	}
	candles, err := r.loadCandles(ctx, s.Symbol, remoteMinBars)
	if err != nil {
		return document.Null(), err
	}
	es, err := r.deps.Edge.Predict(ctx, s.Symbol, features.Snapshot(candles, string(r.opts.Timeframe)), r.opts.Horizon)
	if err != nil {
		return document.Null(), err
	}
	f := document.Fields{
		"recommendation": document.String(es.Recommendation),
		"horizon":        document.String(es.Horizon),
		"regime":         document.String(es.Regime),
	}
	setNum(f, "proba_up", es.ProbaUp)
	setNum(f, "sigma", es.Sigma)
	setNum(f, "confidence", es.Confidence)
	return document.Map(document.Fields{"prediction": document.Map(f)}), nil
}
