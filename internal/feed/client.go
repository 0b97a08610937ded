// Package feed is the Price Ingester: it polls a Coinbase-shaped spot/candle
// API and owns the one volatile in-memory latest-price cache the rest of the
// pipeline reads through. Grounded on
// chidi150c-coinbase/broker_coinbase.go's net/http.Client-wrapping broker
// shape (constructor takes a base URL, each call builds its own
// *http.Request with context, decodes a JSON map, extracts the field it needs).
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Client talks to the spot and candle endpoints named in §6:
//   GET {base}/v2/prices/{pair}/spot
//   GET {base}/products/{pair}/candles?granularity=900
type Client struct {
	apiBase string
	hc      *http.Client
	limiter *rate.Limiter
}

func NewClient(apiBase string) *Client {
	return &Client{
		apiBase: strings.TrimRight(apiBase, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "updown-trader/feed")
	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("feed: %s: %d: %s", path, res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// Spot fetches one reference-price tick for a trading pair (e.g. "BTC-USD").
func (c *Client) Spot(ctx context.Context, pair string) (domain.SpotPrice, error) {
	var payload struct {
		Data struct {
			Amount   string `json:"amount"`
			Currency string `json:"currency"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/v2/prices/"+url.PathEscape(pair)+"/spot", &payload); err != nil {
		return domain.SpotPrice{}, err
	}
	price, err := decimal.NewFromString(payload.Data.Amount)
	if err != nil {
		return domain.SpotPrice{}, fmt.Errorf("feed: spot price %q: %w", payload.Data.Amount, err)
	}
	return domain.SpotPrice{Symbol: pair, Price: price, Timestamp: time.Now().UTC()}, nil
}

// Candles fetches 15-minute bars (granularity=900) for pair.
func (c *Client) Candles(ctx context.Context, pair string) ([]domain.Candle, error) {
	var rows [][]float64 // [time, low, high, open, close, volume]
	path := fmt.Sprintf("/products/%s/candles?granularity=900", url.PathEscape(pair))
	if err := c.get(ctx, path, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Candle, 0, len(rows))
	for _, r := range rows {
		if len(r) < 6 {
			continue
		}
		openTime := time.Unix(int64(r[0]), 0).UTC()
		out = append(out, domain.Candle{
			Symbol:    pair,
			Timeframe: 15 * time.Minute,
			OpenTime:  openTime,
			CloseTime: openTime.Add(15 * time.Minute),
			Low:       decimal.NewFromFloat(r[1]),
			High:      decimal.NewFromFloat(r[2]),
			Open:      decimal.NewFromFloat(r[3]),
			Close:     decimal.NewFromFloat(r[4]),
			Volume:    decimal.NewFromFloat(r[5]),
		})
	}
	// Oldest-first, matching the rest of the pipeline's assumption.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
