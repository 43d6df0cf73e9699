package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) *config.Config {
	cfg, err := config.Default()
	if err != nil {
		panic(err)
	}
	cfg.Analytics.PythonServiceURL = url
	cfg.Analytics.Timeout = time.Second
	cfg.Analytics.Retries = 3
	return cfg
}

func serveJSON(t *testing.T, path string, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var in map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "AAPL", in["symbol"])
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRegimeDetector(t *testing.T) {
	srv := serveJSON(t, "/regime/detect", `{"state":"bull","prob":[0.7,0.3],"confidence":0.7}`)
	got, err := NewHTTPRegimeDetector(testConfig(srv.URL)).Detect(context.Background(), "AAPL", []float64{0.01})
	require.NoError(t, err)
	assert.Equal(t, models.Regime{State: "bull", Prob: []float64{0.7, 0.3}, Confidence: 0.7}, got)
}

func TestRegimeDetectorRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"state":"quiet"}`))
	}))
	defer srv.Close()

	got, err := NewHTTPRegimeDetector(testConfig(srv.URL)).Detect(context.Background(), "AAPL", nil)
	require.NoError(t, err)
	assert.Equal(t, "quiet", got.State)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRegimeDetectorDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := NewHTTPRegimeDetector(testConfig(srv.URL)).Detect(context.Background(), "AAPL", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestVolatilityForecaster(t *testing.T) {
	srv := serveJSON(t, "/vol/forecast", `{"forecast":0.21,"nowcast":0.18,"model":"garch"}`)
	got, err := NewHTTPVolatilityForecaster(testConfig(srv.URL)).
		Forecast(context.Background(), "AAPL", map[string]float64{"rv_20": 0.2}, "1d")
	require.NoError(t, err)
	assert.Equal(t, models.VolatilityForecast{Horizon: "1d", Forecast: 0.21, Nowcast: 0.18, Model: "garch"}, got)
}

func TestAnomalyDetector(t *testing.T) {
	srv := serveJSON(t, "/anomaly/detect", `{"anomalies":[{"ts_index":4,"type":"vol_spike","severity":2.5}]}`)
	got, err := NewHTTPAnomalyDetector(testConfig(srv.URL)).
		Detect(context.Background(), "AAPL", []float64{0.1}, []float64{0.2})
	require.NoError(t, err)
	assert.Equal(t, []models.MarketAnomaly{{Index: 4, Type: "vol_spike", Severity: 2.5}}, got)
}

func TestEdgeScorerDerivesRecommendation(t *testing.T) {
	srv := serveJSON(t, "/edge/predict", `{"proba_up":0.62,"regime":"bull","sigma":0.2,"confidence":0.8}`)
	got, err := NewHTTPEdgeScorer(testConfig(srv.URL)).
		Predict(context.Background(), "AAPL", map[string]float64{}, "1d")
	require.NoError(t, err)
	assert.Equal(t, "Buy", got.Recommendation)
	assert.Equal(t, "1d", got.Horizon)
}

func TestEdgeScorerKeepsServiceRecommendation(t *testing.T) {
	srv := serveJSON(t, "/edge/predict", `{"proba_up":0.9,"recommendation":"Hold"}`)
	got, err := NewHTTPEdgeScorer(testConfig(srv.URL)).
		Predict(context.Background(), "AAPL", nil, "1d")
	require.NoError(t, err)
	assert.Equal(t, "Hold", got.Recommendation)
}

func TestRecommendationFromProba(t *testing.T) {
	cases := map[float64]string{0.56: "Buy", 0.55: "Hold", 0.45: "Hold", 0.44: "Sell"}
	for p, want := range cases {
		assert.Equal(t, want, RecommendationFromProba(p), "p=%v", p)
	}
}

func TestNotConfigured(t *testing.T) {
	_, err := NewHTTPRegimeDetector(testConfig("")).Detect(context.Background(), "AAPL", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
