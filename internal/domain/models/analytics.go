package models

import "time"

// Candle represents an OHLCV bucket read from the feature store.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Regime is the analytics service market regime answer.
type Regime struct {
	State      string    `json:"state"` // "bull", "bear", "volatile", "quiet"
	Prob       []float64 `json:"prob"`
	Confidence float64   `json:"confidence"`
}

type VolatilityForecast struct {
	Horizon  string  `json:"horizon"`
	Forecast float64 `json:"forecast"` // sigma forecast
	Nowcast  float64 `json:"nowcast"`
	Model    string  `json:"model"`
}

type MarketAnomaly struct {
	Index    int     `json:"index"`
	Type     string  `json:"type"` // "shock_up", "shock_down", "vol_spike"
	Severity float64 `json:"severity"`
}

type EdgeScore struct {
	Horizon        string  `json:"horizon"`
	ProbaUp        float64 `json:"proba_up"`
	Regime         string  `json:"regime"`
	Sigma          float64 `json:"sigma"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
}

// Quote is a point-in-time price snapshot.
type Quote struct {
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	PreviousClose float64 `json:"previous_close"`
	Timestamp     int64   `json:"timestamp"`
}
