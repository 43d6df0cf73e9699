package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"StockPulse/internal/domain/models"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/document"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []domsvc.Invocation

func (s staticSource) Invocations() []domsvc.Invocation { return s }

func analyzer(v document.Value, err error) domsvc.Analyzer {
	return domsvc.AnalyzerFunc(func(context.Context, models.Subject) (document.Value, error) {
		return v, err
	})
}

func newUseCase() *usecase.AnalysisUseCase {
	src := staticSource{
		{ID: "quote", Analyzer: analyzer(document.Map(document.Fields{"price": document.Number(100)}), nil)},
		{ID: "technicalAnalysis", Analyzer: analyzer(document.Map(document.Fields{
			"summary": document.Map(document.Fields{"recommendation": document.String("Strong Buy")}),
		}), nil)},
		{ID: "marketRegime", Analyzer: analyzer(document.Null(), errors.New("analytics service not configured"))},
	}
	projector := usecase.NewRandomWalkProjector(usecase.DefaultProjectionPolicy(), func() float64 { return 0.5 })
	return usecase.NewAnalysisUseCase(src,
		usecase.NewTaskExecutor(nil),
		usecase.NewSignalAggregator(),
		usecase.NewReportFormatter(projector, usecase.DefaultHorizons),
		nil, nil, nil)
}

func newEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	NewAnalysisEchoHandler(nil, newUseCase(), mw...).RegisterRoutes(e)
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestAnalyzeReturnsReport(t *testing.T) {
	rec := get(newEcho(), "/api/analysis?symbol=aapl&company=Apple")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status int            `json:"status"`
		Data   *models.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)
	require.NotNil(t, body.Data)
	assert.Equal(t, "AAPL", body.Data.Subject.Symbol)
	assert.Equal(t, models.SignalStrongBuy, body.Data.Signal)
	assert.Equal(t, 100.0, body.Data.CurrentPrice)
	assert.Equal(t, 3, body.Data.Results.Len())
	assert.NotEmpty(t, body.Data.RunID)
}

func TestAnalyzeValidation(t *testing.T) {
	rec := get(newEcho(), "/api/analysis")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_REQUIRED")

	rec = get(newEcho(), "/api/analysis?symbol=bad%20sym")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_TICKER")
}

func TestReportText(t *testing.T) {
	rec := get(newEcho(), "/api/analysis/report?symbol=MSFT")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain))
	text := rec.Body.String()
	assert.Contains(t, text, "Consolidated analysis for MSFT")
	assert.Contains(t, text, "No data available for marketRegime: analytics service not configured")

	rec = get(newEcho(), "/api/analysis/report?symbol=MSFT&format=json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"run_id"`)

	rec = get(newEcho(), "/api/analysis/report?symbol=MSFT&format=pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouteMiddlewareApplies(t *testing.T) {
	deny := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error { return c.NoContent(http.StatusTooManyRequests) }
	}
	rec := get(newEcho(deny), "/api/analysis?symbol=AAPL")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestStreamSendsOutcomesThenReport(t *testing.T) {
	srv := httptest.NewServer(newEcho())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/analysis/stream?symbol=NVDA"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	seen := map[models.AnalyzerID]models.OutcomeStatus{}
	var report *models.Report
	for report == nil {
		var ev struct {
			Type     string            `json:"type"`
			Analyzer models.AnalyzerID `json:"analyzer"`
			Outcome  *models.Outcome   `json:"outcome"`
			Report   *models.Report    `json:"report"`
		}
		require.NoError(t, conn.ReadJSON(&ev))
		switch ev.Type {
		case "outcome":
			require.NotNil(t, ev.Outcome)
			seen[ev.Analyzer] = ev.Outcome.Status
		case "report":
			report = ev.Report
		default:
			t.Fatalf("unexpected event %q", ev.Type)
		}
	}
	assert.Equal(t, map[models.AnalyzerID]models.OutcomeStatus{
		"quote":             models.OutcomeSuccess,
		"technicalAnalysis": models.OutcomeSuccess,
		"marketRegime":      models.OutcomeFailure,
	}, seen)
	assert.Equal(t, "NVDA", report.Subject.Symbol)
}

func TestStreamRejectsInvalidSymbolBeforeUpgrade(t *testing.T) {
	rec := get(newEcho(), "/api/analysis/stream?symbol=-X")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_INVALID_SUBJECT")
}
