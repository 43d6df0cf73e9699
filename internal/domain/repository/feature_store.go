package repository

import (
	"context"

	"StockPulse/internal/domain/models"
)

// FeatureStore provides read-only access to candles for analyzers. Candles come
// back oldest first.
type FeatureStore interface {
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
}
