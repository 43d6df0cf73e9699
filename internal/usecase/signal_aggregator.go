package usecase

import (
	"math"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/usecase/classify"
)

const DefaultConfidenceFloor = 30.0

// SignalRule maps one signal-bearing analyzer to a vote.
type SignalRule struct {
	Analyzer models.AnalyzerID
	Path     []string
	Classify func(string) models.Vote
	Weight   float64
}

// DefaultSignalRules is the fixed rule table. The risk rule carries half weight.
var DefaultSignalRules = []SignalRule{
	{Analyzer: "technicalAnalysis", Path: []string{"summary", "recommendation"}, Classify: classify.Recommendation, Weight: 1},
	{Analyzer: "momentumAnalysis", Path: []string{"signal", "trend"}, Classify: classify.Recommendation, Weight: 1},
	{Analyzer: "edgeScore", Path: []string{"prediction", "recommendation"}, Classify: classify.Recommendation, Weight: 1},
	{Analyzer: "marketRegime", Path: []string{"regime", "state"}, Classify: classify.Recommendation, Weight: 1},
	{Analyzer: "riskAssessment", Path: []string{"risk", "level"}, Classify: classify.RiskLevel, Weight: 0.5},
}

type AggregatorOption func(*SignalAggregator)

func WithConfidenceFloor(floor float64) AggregatorOption {
	return func(a *SignalAggregator) {
		if floor >= 0 && floor <= 100 {
			a.floor = floor
		}
	}
}

func WithSignalRules(rules []SignalRule) AggregatorOption {
	return func(a *SignalAggregator) {
		if len(rules) > 0 {
			a.rules = rules
		}
	}
}

// SignalAggregator reduces a ResultStore into one consolidated signal. It holds no
// per-run state, so one instance serves concurrent runs.
type SignalAggregator struct {
	rules []SignalRule
	floor float64
}

func NewSignalAggregator(opts ...AggregatorOption) *SignalAggregator {
	a := &SignalAggregator{rules: DefaultSignalRules, floor: DefaultConfidenceFloor}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate is pure over the snapshot. Missing, failed or malformed entries vote none.
func (a *SignalAggregator) Aggregate(store *models.ResultStore) models.Consolidation {
	c := models.Consolidation{Votes: make([]models.VoteDetail, 0, len(a.rules))}
	for _, r := range a.rules {
		vote := a.vote(store, r)
		c.Votes = append(c.Votes, models.VoteDetail{Analyzer: r.Analyzer, Vote: vote, Weight: r.Weight})
		switch vote {
		case models.VoteBuy:
			c.BuyVotes += r.Weight
			c.TotalSignals++
		case models.VoteSell:
			c.SellVotes += r.Weight
			c.TotalSignals++
		}
	}

	if c.TotalSignals == 0 {
		c.Signal = models.SignalHold
		c.Confidence = a.floor
		return c
	}

	total := float64(c.TotalSignals)
	buyPct := c.BuyVotes / total * 100
	sellPct := c.SellVotes / total * 100
	c.Signal = classifySignal(buyPct, sellPct)

	coverage := total / float64(len(a.rules))
	conf := math.Max(a.floor, math.Max(buyPct, sellPct)*coverage)
	c.Confidence = math.Min(100, math.Max(0, conf))
	return c
}

func (a *SignalAggregator) vote(store *models.ResultStore, r SignalRule) models.Vote {
	if r.Classify == nil {
		return models.VoteNone
	}
	text, ok := store.Payload(r.Analyzer).Path(r.Path...).AsString()
	if !ok {
		return models.VoteNone
	}
	return r.Classify(text)
}

// classifySignal applies the thresholds in order; every comparison is strict.
func classifySignal(buyPct, sellPct float64) models.Signal {
	switch {
	case buyPct > 60:
		return models.SignalStrongBuy
	case buyPct > 40:
		return models.SignalModerateBuy
	case sellPct > 60:
		return models.SignalStrongSell
	case sellPct > 40:
		return models.SignalModerateSell
	default:
		return models.SignalHold
	}
}
