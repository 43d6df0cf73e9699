package analytics

import (
	"context"

	"StockPulse/internal/domain/models"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
)

// Edge probability bands used when the service does not send a recommendation.
const (
	edgeBuyAbove  = 0.55
	edgeSellBelow = 0.45
)

type HTTPEdgeScorer struct{ base *HTTPServiceBase }

func NewHTTPEdgeScorer(cfg *config.Config, opts ...xhttp.ClientOption) *HTTPEdgeScorer {
	return &HTTPEdgeScorer{base: NewHTTPServiceBase(cfg, opts...)}
}

type edgeReq struct {
	Symbol   string             `json:"symbol"`
	Features map[string]float64 `json:"features"`
	Horizon  string             `json:"horizon"`
}

type edgeResp struct {
	ProbaUp        float64 `json:"proba_up"`
	Regime         string  `json:"regime"`
	Sigma          float64 `json:"sigma"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
}

func (s *HTTPEdgeScorer) Predict(ctx context.Context, symbol string, features map[string]float64, horizon string) (models.EdgeScore, error) {
	var er edgeResp
	if err := s.base.PostJSON(ctx, "/edge/predict", edgeReq{Symbol: symbol, Features: features, Horizon: horizon}, &er); err != nil {
		return models.EdgeScore{}, err
	}
	rec := er.Recommendation
	if rec == "" {
		rec = RecommendationFromProba(er.ProbaUp)
	}
	return models.EdgeScore{
		Horizon:        horizon,
		ProbaUp:        er.ProbaUp,
		Regime:         er.Regime,
		Sigma:          er.Sigma,
		Confidence:     er.Confidence,
		Recommendation: rec,
	}, nil
}

// RecommendationFromProba maps an up-move probability to Buy, Sell or Hold.
func RecommendationFromProba(p float64) string {
	switch {
	case p > edgeBuyAbove:
		return "Buy"
	case p < edgeSellBelow:
		return "Sell"
	default:
		return "Hold"
	}
}

var _ domsvc.EdgeScorer = (*HTTPEdgeScorer)(nil)
