package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgch "StockPulse/pkg/clickhouse"
	applogger "StockPulse/pkg/logger"
)

// CHFeatureStore implements FeatureStore backed by ClickHouse candle tables.
type CHFeatureStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHFeatureStore(ch *pkgch.Client, database string, l *applogger.Logger) *CHFeatureStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHFeatureStore{db: ch.DB(), database: database, l: l}
}

// FeatureStoreSchema returns the DDL for the candle tables read by CHFeatureStore.
func FeatureStoreSchema(database string) []string {
	stmts := []string{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)}
	for _, tf := range []domrepo.Timeframe{domrepo.TF1m, domrepo.TF5m, domrepo.TF1d} {
		table, _ := tableForTF(database, tf)
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	bucket DateTime,
	symbol LowCardinality(String),
	open   Float64,
	high   Float64,
	low    Float64,
	close  Float64,
	vol    Float64
) ENGINE = ReplacingMergeTree
ORDER BY (symbol, bucket)`, table))
	}
	return stmts
}

// GetLatestNCandles returns up to n most recent candles in ascending bucket order.
func (s *CHFeatureStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	start := time.Now()
	table, err := tableForTF(s.database, tf)
	if err != nil {
		return nil, err
	}
	const qtpl = `
        SELECT bucket, symbol, open, high, low, close, vol
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, table), symbol, n)
	if err != nil {
		s.logFailure("query", table, symbol, tf, n, err)
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, n)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			s.logFailure("scan", table, symbol, tf, n, err)
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		s.logFailure("rows", table, symbol, tf, n, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	reverseCandles(tmp)

	s.l.Debug("clickhouse latest_candles ok",
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Int("limit", n),
		applogger.Int("rows", len(tmp)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return tmp, nil
}

func (s *CHFeatureStore) logFailure(stage, table, symbol string, tf domrepo.Timeframe, n int, err error) {
	s.l.Error("clickhouse latest_candles "+stage+" error",
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Int("limit", n),
		applogger.Error(err),
	)
}

func reverseCandles(c []models.Candle) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}

func tableForTF(database string, tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TF1m:
		return database + ".candles_1m", nil
	case domrepo.TF5m:
		return database + ".candles_5m", nil
	case domrepo.TF1d:
		return database + ".candles_1d", nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}

var _ domrepo.FeatureStore = (*CHFeatureStore)(nil)
