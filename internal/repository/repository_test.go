package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	topic string
	key   string
	value interface{}
}

type fakeProducer struct {
	msgs   []sent
	err    error
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, sent{topic: topic, key: string(key), value: value})
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaReportPublisher(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewKafkaReportPublisher(fp, "reports")
	r := &models.Report{RunID: "run-1", Subject: models.Subject{Symbol: "AAPL"}}

	require.NoError(t, pub.PublishReport(context.Background(), r))
	require.Len(t, fp.msgs, 1)
	assert.Equal(t, "reports", fp.msgs[0].topic)
	assert.Equal(t, "AAPL", fp.msgs[0].key)
	assert.Same(t, r, fp.msgs[0].value)

	require.NoError(t, pub.Close())
	assert.True(t, fp.closed)
}

func TestKafkaReportPublisherErrors(t *testing.T) {
	pub := NewKafkaReportPublisher(&fakeProducer{err: errors.New("broker down")}, "reports")
	err := pub.PublishReport(context.Background(), &models.Report{RunID: "run-2"})
	assert.EqualError(t, err, "publish report run-2: broker down")
	assert.Error(t, pub.PublishReport(context.Background(), nil))
}

func TestKafkaLogPublisher(t *testing.T) {
	fp := &fakeProducer{}
	require.NoError(t, NewKafkaLogPublisher(fp).PublishMessage(context.Background(), "logs", []string{"x"}))
	require.Len(t, fp.msgs, 1)
	assert.Equal(t, "logs", fp.msgs[0].topic)
	assert.Empty(t, fp.msgs[0].key)
}

func TestTableForTF(t *testing.T) {
	table, err := tableForTF("stockpulse", domrepo.TF5m)
	require.NoError(t, err)
	assert.Equal(t, "stockpulse.candles_5m", table)

	_, err = tableForTF("stockpulse", "1s")
	assert.EqualError(t, err, "unsupported timeframe: 1s")
}

func TestFeatureStoreSchema(t *testing.T) {
	stmts := FeatureStoreSchema("sp")
	require.Len(t, stmts, 4)
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS sp", stmts[0])
	for i, table := range []string{"sp.candles_1m", "sp.candles_5m", "sp.candles_1d"} {
		assert.True(t, strings.Contains(stmts[i+1], "CREATE TABLE IF NOT EXISTS "+table+" ("), stmts[i+1])
	}
}

func TestReverseCandles(t *testing.T) {
	c := []models.Candle{{Close: 1}, {Close: 2}, {Close: 3}}
	reverseCandles(c)
	assert.Equal(t, []float64{3, 2, 1}, []float64{c[0].Close, c[1].Close, c[2].Close})
}
