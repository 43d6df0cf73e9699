package analytics

import (
	"context"

	"StockPulse/internal/domain/models"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
)

type HTTPAnomalyDetector struct{ base *HTTPServiceBase }

func NewHTTPAnomalyDetector(cfg *config.Config, opts ...xhttp.ClientOption) *HTTPAnomalyDetector {
	return &HTTPAnomalyDetector{base: NewHTTPServiceBase(cfg, opts...)}
}

type anomalyReq struct {
	Symbol  string    `json:"symbol"`
	Returns []float64 `json:"returns"`
	Vols    []float64 `json:"vols"`
}

type anomalyResp struct {
	Anomalies []struct {
		TSIndex  int     `json:"ts_index"`
		Type     string  `json:"type"`
		Severity float64 `json:"severity"`
	} `json:"anomalies"`
}

func (d *HTTPAnomalyDetector) Detect(ctx context.Context, symbol string, returns, vols []float64) ([]models.MarketAnomaly, error) {
	var ar anomalyResp
	if err := d.base.PostJSON(ctx, "/anomaly/detect", anomalyReq{Symbol: symbol, Returns: returns, Vols: vols}, &ar); err != nil {
		return nil, err
	}
	out := make([]models.MarketAnomaly, 0, len(ar.Anomalies))
	for _, an := range ar.Anomalies {
		out = append(out, models.MarketAnomaly{Index: an.TSIndex, Type: an.Type, Severity: an.Severity})
	}
	return out, nil
}

var _ domsvc.AnomalyDetector = (*HTTPAnomalyDetector)(nil)
