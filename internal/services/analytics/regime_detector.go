package analytics

import (
	"context"

	"StockPulse/internal/domain/models"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
)

type HTTPRegimeDetector struct{ base *HTTPServiceBase }

func NewHTTPRegimeDetector(cfg *config.Config, opts ...xhttp.ClientOption) *HTTPRegimeDetector {
	return &HTTPRegimeDetector{base: NewHTTPServiceBase(cfg, opts...)}
}

type regimeRequest struct {
	Symbol  string    `json:"symbol"`
	Returns []float64 `json:"returns"`
}

func (d *HTTPRegimeDetector) Detect(ctx context.Context, symbol string, returns []float64) (models.Regime, error) {
	var rr models.Regime
	if err := d.base.PostJSONWithRetry(ctx, "/regime/detect", regimeRequest{Symbol: symbol, Returns: returns}, &rr); err != nil {
		return models.Regime{}, err
	}
	return rr, nil
}

var _ domsvc.RegimeDetector = (*HTTPRegimeDetector)(nil)
