package analytics

import (
	"context"

	"StockPulse/internal/domain/models"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
)

type HTTPVolatilityForecaster struct{ base *HTTPServiceBase }

func NewHTTPVolatilityForecaster(cfg *config.Config, opts ...xhttp.ClientOption) *HTTPVolatilityForecaster {
	return &HTTPVolatilityForecaster{base: NewHTTPServiceBase(cfg, opts...)}
}

type volReq struct {
	Symbol   string             `json:"symbol"`
	Features map[string]float64 `json:"features"`
	Horizon  string             `json:"horizon"`
}

type volResp struct {
	Forecast float64 `json:"forecast"`
	Nowcast  float64 `json:"nowcast"`
	Model    string  `json:"model"`
}

func (f *HTTPVolatilityForecaster) Forecast(ctx context.Context, symbol string, features map[string]float64, horizon string) (models.VolatilityForecast, error) {
	var vr volResp
	if err := f.base.PostJSON(ctx, "/vol/forecast", volReq{Symbol: symbol, Features: features, Horizon: horizon}, &vr); err != nil {
		return models.VolatilityForecast{}, err
	}
	return models.VolatilityForecast{
		Horizon:  horizon,
		Forecast: vr.Forecast,
		Nowcast:  vr.Nowcast,
		Model:    vr.Model,
	}, nil
}

var _ domsvc.VolatilityForecaster = (*HTTPVolatilityForecaster)(nil)
