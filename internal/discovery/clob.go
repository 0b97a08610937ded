package discovery

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
)

// CLOBClient fetches order book depth: GET {base}/book?token_id=.
type CLOBClient struct {
	base string
	hc   *http.Client
}

func NewCLOBClient(base string) *CLOBClient {
	return &CLOBClient{base: strings.TrimRight(base, "/"), hc: &http.Client{Timeout: 10 * time.Second}}
}

type clobLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

type clobBook struct {
	Bids []clobLevel `json:"bids"`
	Asks []clobLevel `json:"asks"`
}

// Orderbook fetches the current book for tokenID.
func (c *CLOBClient) Orderbook(ctx context.Context, tokenID string) (domain.Orderbook, error) {
	u := fmt.Sprintf("%s/book?token_id=%s", c.base, url.QueryEscape(tokenID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Orderbook{}, err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return domain.Orderbook{}, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return domain.Orderbook{}, fmt.Errorf("discovery: clob book: %d: %s", res.StatusCode, string(b))
	}
	var raw clobBook
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return domain.Orderbook{}, err
	}
	ob := domain.Orderbook{
		TokenID:  tokenID,
		Bids:     toLevels(raw.Bids),
		Asks:     toLevels(raw.Asks),
		Snapshot: time.Now().UTC(),
	}
	sortBidsDesc(ob.Bids)
	sortAsksAsc(ob.Asks)
	return ob, nil
}

func toLevels(raw []clobLevel) []domain.OrderbookLevel {
	out := make([]domain.OrderbookLevel, 0, len(raw))
	for _, r := range raw {
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			continue
		}
		size, err := decimal.NewFromString(r.Size)
		if err != nil {
			continue
		}
		out = append(out, domain.OrderbookLevel{Price: price, Size: size})
	}
	return out
}

func sortBidsDesc(levels []domain.OrderbookLevel) {
	for i := 1; i < len(levels); i++ {
		for j := i; j > 0 && levels[j].Price.GreaterThan(levels[j-1].Price); j-- {
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}
}

func sortAsksAsc(levels []domain.OrderbookLevel) {
	for i := 1; i < len(levels); i++ {
		for j := i; j > 0 && levels[j].Price.LessThan(levels[j-1].Price); j-- {
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}
}
