package usecase

import (
	"testing"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/document"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func storeOf(entries map[models.AnalyzerID]models.Outcome) *models.ResultStore {
	return models.NewResultStore(entries)
}

func TestAggregateEmptyStoreIsHoldAtFloor(t *testing.T) {
	c := NewSignalAggregator().Aggregate(storeOf(nil))
	assert.Equal(t, models.SignalHold, c.Signal)
	assert.Equal(t, DefaultConfidenceFloor, c.Confidence)
	assert.Zero(t, c.TotalSignals)
	assert.Len(t, c.Votes, len(DefaultSignalRules))
	for _, v := range c.Votes {
		assert.Equal(t, models.VoteNone, v.Vote)
	}

	// nil store behaves the same
	assert.Equal(t, models.SignalHold, NewSignalAggregator().Aggregate(nil).Signal)
}

func TestAggregateFourBuysOneFailure(t *testing.T) {
	store := storeOf(map[models.AnalyzerID]models.Outcome{
		"technicalAnalysis": models.Success(recommendation("Strong Buy", "summary", "recommendation")),
		"momentumAnalysis":  models.Success(recommendation("bullish", "signal", "trend")),
		"edgeScore":         models.Success(recommendation("Outperform", "prediction", "recommendation")),
		"marketRegime":      models.Success(recommendation("bull", "regime", "state")),
		"riskAssessment":    models.Failure("no candles"),
	})

	c := NewSignalAggregator().Aggregate(store)
	assert.Equal(t, models.SignalStrongBuy, c.Signal)
	assert.Equal(t, 4, c.TotalSignals)
	assert.Equal(t, 4.0, c.BuyVotes)
	assert.Equal(t, 0.0, c.SellVotes)
	assert.InDelta(t, 80.0, c.Confidence, 1e-9)
}

func TestAggregateHalfWeightRiskTipsToModerateSell(t *testing.T) {
	store := storeOf(map[models.AnalyzerID]models.Outcome{
		"technicalAnalysis": models.Success(recommendation("Buy", "summary", "recommendation")),
		"momentumAnalysis":  models.Success(recommendation("accumulate", "signal", "trend")),
		"edgeScore":         models.Success(recommendation("Sell", "prediction", "recommendation")),
		"marketRegime":      models.Success(recommendation("bearish", "regime", "state")),
		"riskAssessment":    models.Success(recommendation("high", "risk", "level")),
	})

	c := NewSignalAggregator().Aggregate(store)
	assert.Equal(t, 2.0, c.BuyVotes)
	assert.Equal(t, 2.5, c.SellVotes)
	assert.Equal(t, 5, c.TotalSignals)
	assert.Equal(t, models.SignalModerateSell, c.Signal)
	assert.InDelta(t, 50.0, c.Confidence, 1e-9)
}

func TestAggregateThresholdsAreStrict(t *testing.T) {
	cases := []struct {
		name    string
		buyPct  float64
		sellPct float64
		want    models.Signal
	}{
		{"buy exactly 60", 60, 40, models.SignalModerateBuy},
		{"buy just above 60", 60.01, 0, models.SignalStrongBuy},
		{"buy exactly 40", 40, 40, models.SignalHold},
		{"sell exactly 60", 40, 60, models.SignalModerateSell},
		{"sell above 60", 0, 75, models.SignalStrongSell},
		{"sell exactly 40", 20, 40, models.SignalHold},
		{"nothing", 0, 0, models.SignalHold},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifySignal(tc.buyPct, tc.sellPct))
		})
	}
}

func TestAggregateBuyAtSixtyPercentIsModerate(t *testing.T) {
	// 3 buys of 5 signals is exactly 60%
	store := storeOf(map[models.AnalyzerID]models.Outcome{
		"technicalAnalysis": models.Success(recommendation("buy", "summary", "recommendation")),
		"momentumAnalysis":  models.Success(recommendation("bullish", "signal", "trend")),
		"edgeScore":         models.Success(recommendation("buy", "prediction", "recommendation")),
		"marketRegime":      models.Success(recommendation("bear", "regime", "state")),
		"riskAssessment":    models.Success(recommendation("moderate-high", "risk", "level")),
	})
	rules := []SignalRule{
		DefaultSignalRules[0], DefaultSignalRules[1], DefaultSignalRules[2], DefaultSignalRules[3],
		{Analyzer: "riskAssessment", Path: []string{"risk", "level"}, Classify: DefaultSignalRules[4].Classify, Weight: 1},
	}

	c := NewSignalAggregator(WithSignalRules(rules)).Aggregate(store)
	assert.Equal(t, 5, c.TotalSignals)
	assert.Equal(t, 3.0, c.BuyVotes)
	assert.Equal(t, models.SignalModerateBuy, c.Signal)
}

func TestAggregateMalformedPayloadsAreNoVote(t *testing.T) {
	store := storeOf(map[models.AnalyzerID]models.Outcome{
		"technicalAnalysis": models.Success(document.String("buy")),
		"momentumAnalysis":  models.Success(document.Map(document.Fields{"signal": document.Array(document.String("buy"))})),
		"edgeScore":         models.Success(document.Map(document.Fields{"prediction": document.Map(document.Fields{"recommendation": document.Int(1)})})),
		"marketRegime":      models.Success(document.Null()),
		"riskAssessment":    models.Success(recommendation("neutral", "risk", "level")),
		"unrelated":         models.Success(recommendation("strong buy", "summary", "recommendation")),
	})

	c := NewSignalAggregator().Aggregate(store)
	assert.Equal(t, models.SignalHold, c.Signal)
	assert.Zero(t, c.TotalSignals)
	assert.Equal(t, DefaultConfidenceFloor, c.Confidence)
}

func TestAggregateIsIdempotent(t *testing.T) {
	store := storeOf(map[models.AnalyzerID]models.Outcome{
		"technicalAnalysis": models.Success(recommendation("Sell", "summary", "recommendation")),
		"riskAssessment":    models.Success(recommendation("low", "risk", "level")),
	})
	agg := NewSignalAggregator(WithConfidenceFloor(10))

	first := agg.Aggregate(store)
	second := agg.Aggregate(store)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("aggregate not idempotent (-first +second):\n%s", diff)
	}
	// 1 sell vs 0.5 buy over 2 signals: sellPct 50, coverage 2/5
	assert.Equal(t, models.SignalModerateSell, first.Signal)
	assert.InDelta(t, 20.0, first.Confidence, 1e-9)
}
