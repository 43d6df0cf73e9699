package models

import "time"

// Signal is the consolidated recommendation.
type Signal string

const (
	SignalStrongBuy    Signal = "STRONG_BUY"
	SignalModerateBuy  Signal = "MODERATE_BUY"
	SignalHold         Signal = "HOLD"
	SignalModerateSell Signal = "MODERATE_SELL"
	SignalStrongSell   Signal = "STRONG_SELL"
)

// Label returns a human readable name.
func (s Signal) Label() string {
	switch s {
	case SignalStrongBuy:
		return "Strong Buy"
	case SignalModerateBuy:
		return "Moderate Buy"
	case SignalModerateSell:
		return "Moderate Sell"
	case SignalStrongSell:
		return "Strong Sell"
	default:
		return "Hold"
	}
}

// Vote is the classification of one signal-bearing analyzer.
type Vote string

const (
	VoteBuy  Vote = "buy"
	VoteSell Vote = "sell"
	VoteNone Vote = "none"
)

// VoteDetail records what one rule contributed.
type VoteDetail struct {
	Analyzer AnalyzerID `json:"analyzer"`
	Vote     Vote       `json:"vote"`
	Weight   float64    `json:"weight"`
}

// Consolidation is the aggregator output for one ResultStore.
type Consolidation struct {
	Signal       Signal       `json:"signal"`
	Confidence   float64      `json:"confidence"`
	BuyVotes     float64      `json:"buy_votes"`
	SellVotes    float64      `json:"sell_votes"`
	TotalSignals int          `json:"total_signals"`
	Votes        []VoteDetail `json:"votes"`
}

// PriceProjection is one horizon of the placeholder price estimator.
type PriceProjection struct {
	Horizon    string  `json:"horizon"`
	Days       int     `json:"days"`
	Price      float64 `json:"price"`
	Confidence float64 `json:"confidence"`
}

// Report is the final artifact of a run.
type Report struct {
	RunID        string                     `json:"run_id"`
	Subject      Subject                    `json:"subject"`
	Signal       Signal                     `json:"signal"`
	Confidence   float64                    `json:"confidence"`
	Votes        []VoteDetail               `json:"votes"`
	CurrentPrice float64                    `json:"current_price,omitempty"`
	Projections  map[string]PriceProjection `json:"projections"`
	Results      *ResultStore               `json:"results"`
	GeneratedAt  time.Time                  `json:"generated_at"`
	Text         string                     `json:"text,omitempty"`
}

// Health summarizes analyzer settlement counts.
func (r *Report) Health() (succeeded, failed int) {
	if r == nil || r.Results == nil {
		return 0, 0
	}
	return r.Results.Successes(), r.Results.Failures()
}
