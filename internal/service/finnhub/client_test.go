package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"StockPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "key", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`{"c":187.5,"d":1.5,"dp":0.81,"h":188,"l":185,"o":186,"pc":186,"t":1700000000}`))
	}))
	defer srv.Close()

	q, err := New("key", srv.URL+"/", 0).Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, models.Quote{
		Price:         187.5,
		Change:        1.5,
		ChangePercent: 0.81,
		High:          188,
		Low:           185,
		Open:          186,
		PreviousClose: 186,
		Timestamp:     1700000000,
	}, q)
}

func TestQuoteUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	}))
	defer srv.Close()

	_, err := New("key", srv.URL, 0).Quote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNoQuote)
}

func TestQuoteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New("bad", srv.URL, 0).Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
}
