package finnhub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	domsvc "StockPulse/internal/domain/service"
	svcmetrics "StockPulse/internal/service/metrics"
	xhttp "StockPulse/pkg/http"
)

// ErrNoQuote is returned when Finnhub answers with an all-zero quote, which is
// how it reports an unknown symbol.
var ErrNoQuote = errors.New("finnhub: no quote")

// Client implements QuoteProvider backed by the Finnhub REST API.
type Client struct {
	apiKey  string
	baseURL string
	client  *xhttp.Client
}

// New creates a Finnhub quote client.
func New(apiKey, baseURL string, timeout time.Duration, opts ...xhttp.ClientOption) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(opts...),
	}
}

// fhQuote mirrors /quote: c current, d change, dp percent change, h/l/o day range,
// pc previous close, t unix seconds.
type fhQuote struct {
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	DP float64 `json:"dp"`
	H  float64 `json:"h"`
	L  float64 `json:"l"`
	O  float64 `json:"o"`
	PC float64 `json:"pc"`
	T  int64   `json:"t"`
}

// Quote fetches the latest quote for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	start := time.Now()
	var q fhQuote
	err := c.client.GetJSON(ctx, c.baseURL+"/quote", url.Values{
		"symbol": {symbol},
		"token":  {c.apiKey},
	}, &q)
	svcmetrics.ObserveUpstream("finnhub", "/quote", start, err)
	if err != nil {
		return models.Quote{}, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}
	if q.C == 0 && q.PC == 0 && q.T == 0 {
		return models.Quote{}, fmt.Errorf("%w for %s", ErrNoQuote, symbol)
	}
	return models.Quote{
		Price:         q.C,
		Change:        q.D,
		ChangePercent: q.DP,
		High:          q.H,
		Low:           q.L,
		Open:          q.O,
		PreviousClose: q.PC,
		Timestamp:     q.T,
	}, nil
}

var _ domsvc.QuoteProvider = (*Client)(nil)
