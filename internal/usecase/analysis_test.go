package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/document"
	pkgkafka "StockPulse/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUseCase(src staticSource, pub *fakePublisher, m *fakeMetrics) *AnalysisUseCase {
	return NewAnalysisUseCase(
		src,
		NewTaskExecutor(nil, WithExecutorMetrics(m)),
		NewSignalAggregator(),
		fixedFormatter(),
		pub,
		m,
		nil,
	)
}

func bullishSource() staticSource {
	return staticSource{
		invocation("quote", returns(document.Map(document.Fields{"price": document.Number(50)}))),
		invocation("technicalAnalysis", returns(recommendation("Buy", "summary", "recommendation"))),
		invocation("momentumAnalysis", returns(recommendation("bullish", "signal", "trend"))),
		invocation("edgeScore", returns(recommendation("outperform", "prediction", "recommendation"))),
		invocation("marketRegime", rejects("analytics not configured")),
		invocation("riskAssessment", returns(recommendation("low", "risk", "level"))),
	}
}

func TestAnalysisRunProducesPublishedReport(t *testing.T) {
	pub := &fakePublisher{}
	m := &fakeMetrics{}
	uc := newTestUseCase(bullishSource(), pub, m)

	r, err := uc.Run(context.Background(), AnalyzeParams{Symbol: " msft ", CompanyName: "Microsoft"})
	require.NoError(t, err)

	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, "MSFT", r.Subject.Symbol)
	assert.Equal(t, models.SignalStrongBuy, r.Signal)
	assert.Equal(t, 50.0, r.CurrentPrice)
	assert.Equal(t, 6, r.Results.Len())
	assert.Contains(t, r.Text, "No data available for marketRegime: analytics not configured")

	require.Len(t, pub.reports, 1)
	assert.Same(t, r, pub.reports[0])
	assert.Equal(t, []string{string(models.SignalStrongBuy)}, m.runs)
	assert.Len(t, m.tasks, 6)
}

func TestAnalysisRunSurvivesPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	m := &fakeMetrics{}
	r, err := newTestUseCase(bullishSource(), pub, m).Run(context.Background(), AnalyzeParams{Symbol: "MSFT"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Contains(t, m.errors, "publish")
}

func TestAnalysisReportEncodesNonFinitePayloads(t *testing.T) {
	src := staticSource{
		invocation("quote", returns(document.Map(document.Fields{"price": document.Number(math.NaN())}))),
		invocation("volatility", returns(document.Map(document.Fields{
			"ratio":   document.Number(math.NaN()),
			"history": document.Array(document.Number(math.Inf(1)), document.Number(1)),
		}))),
	}
	r, err := newTestUseCase(src, &fakePublisher{}, &fakeMetrics{}).Run(context.Background(), AnalyzeParams{Symbol: "MSFT"})
	require.NoError(t, err)
	assert.Zero(t, r.CurrentPrice)

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded struct {
		Results map[string]struct {
			Payload map[string]any `json:"payload"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	vol := decoded.Results["volatility"].Payload
	assert.Contains(t, vol, "ratio")
	assert.Nil(t, vol["ratio"])
	assert.Equal(t, []any{nil, 1.0}, vol["history"])
}

func TestAnalysisRunInvalidSubject(t *testing.T) {
	pub := &fakePublisher{}
	m := &fakeMetrics{}
	r, err := newTestUseCase(bullishSource(), pub, m).Run(context.Background(), AnalyzeParams{Symbol: "not a symbol!"})
	require.Error(t, err)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, models.ErrInvalidSubject)
	assert.Empty(t, pub.reports)
	assert.Empty(t, m.tasks)
}

func TestAnalysisStreamObservesEveryAnalyzer(t *testing.T) {
	uc := newTestUseCase(bullishSource(), &fakePublisher{}, &fakeMetrics{})
	seen := map[models.AnalyzerID]models.OutcomeStatus{}
	r, err := uc.Stream(context.Background(), AnalyzeParams{Symbol: "MSFT"}, func(id models.AnalyzerID, o models.Outcome) {
		seen[id] = o.Status
	})
	require.NoError(t, err)
	assert.Len(t, seen, r.Results.Len())
	assert.Equal(t, models.OutcomeFailure, seen["marketRegime"])
}

func TestAnalysisRunWithoutPublisherOrMetrics(t *testing.T) {
	uc := NewAnalysisUseCase(bullishSource(), NewTaskExecutor(nil), NewSignalAggregator(), fixedFormatter(), nil, nil, nil)
	r, err := uc.Run(context.Background(), AnalyzeParams{Symbol: "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, models.SignalStrongBuy, r.Signal)
}

func TestAnalysisRequestHandler(t *testing.T) {
	pub := &fakePublisher{}
	uc := newTestUseCase(staticSource{invocation("quote", returns(document.Map(document.Fields{"price": document.Number(1)})))}, pub, &fakeMetrics{})
	h := NewAnalysisRequestHandler("analysis.requests", uc, nil)
	assert.Equal(t, "analysis.requests", h.Topic())

	msg, _ := json.Marshal(map[string]string{"symbol": "amzn", "company_name": "Amazon"})
	require.NoError(t, h.Handle(context.Background(), msg))
	require.Len(t, pub.reports, 1)
	assert.Equal(t, "AMZN", pub.reports[0].Subject.Symbol)

	var hookErr *pkgkafka.HookError
	err := h.Handle(context.Background(), []byte(`{"symbol":""}`))
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "ERR_VALIDATION", hookErr.Code)
	assert.ErrorIs(t, err, models.ErrInvalidSubject)

	err = h.Handle(context.Background(), []byte(`{`))
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "ERR_DECODE", hookErr.Code)
}
