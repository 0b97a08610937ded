// Package discovery is the Market Discoverer (§4.1): it turns the asset/time
// slug protocol into concrete binary UpDown markets and exposes their
// orderbooks. Grounded on the teacher's strategy/selector.go GammaSelector
// (query the Gamma API, parse string-typed numeric fields, filter/score),
// adapted from a ranked market-maker selector into a deterministic
// slug-lookup since UpDown markets are addressed by name, not discovered by
// scoring. The gamma.Client/clob types this leaned on came from the
// now-unavailable github.com/GoPolymarket/polymarket-go-sdk, so both clients
// here are hand-rolled net/http, the same way chidi150c-coinbase's broker
// hand-rolls its Coinbase client instead of vendoring one.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
)

// GammaClient queries GET {base}/events?slug= and GET {base}/events/{id}.
type GammaClient struct {
	base string
	hc   *http.Client
}

func NewGammaClient(base string) *GammaClient {
	return &GammaClient{base: strings.TrimRight(base, "/"), hc: &http.Client{Timeout: 10 * time.Second}}
}

type gammaEvent struct {
	ID       string        `json:"id"`
	Markets  []gammaMarket `json:"markets"`
}

type gammaMarket struct {
	ConditionID string `json:"conditionId"`
	Question    string `json:"question"`
	EndDate     string `json:"endDate"`
	Active      bool   `json:"active"`
	ClobTokenIDs string `json:"clobTokenIds"` // JSON-array-as-string: ["yesID","noID"]
}

// EventBySlug fetches the single event matching slug, if any.
func (g *GammaClient) EventBySlug(ctx context.Context, slug string) (domain.Market, bool, error) {
	u := fmt.Sprintf("%s/events?slug=%s", g.base, url.QueryEscape(slug))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Market{}, false, err
	}
	res, err := g.hc.Do(req)
	if err != nil {
		return domain.Market{}, false, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return domain.Market{}, false, fmt.Errorf("discovery: gamma events: %d: %s", res.StatusCode, string(b))
	}
	var events []gammaEvent
	if err := json.NewDecoder(res.Body).Decode(&events); err != nil {
		return domain.Market{}, false, err
	}
	if len(events) == 0 || len(events[0].Markets) == 0 {
		return domain.Market{}, false, nil
	}
	m := events[0].Markets[0]
	return marketFromGamma(slug, m)
}

func marketFromGamma(slug string, m gammaMarket) (domain.Market, bool, error) {
	endTime, err := time.Parse(time.RFC3339, m.EndDate)
	if err != nil {
		return domain.Market{}, false, fmt.Errorf("discovery: parse end_date %q: %w", m.EndDate, err)
	}
	yes, no, err := parseTokenIDs(m.ClobTokenIDs)
	if err != nil {
		return domain.Market{}, false, err
	}
	return domain.Market{
		ConditionID: m.ConditionID,
		Asset:       assetFromSlug(slug),
		Question:    m.Question,
		EndTime:     endTime,
		YesTokenID:  yes,
		NoTokenID:   no,
		Active:      m.Active,
	}, true, nil
}

func parseTokenIDs(raw string) (yes, no string, err error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return "", "", fmt.Errorf("discovery: parse clobTokenIds %q: %w", raw, err)
	}
	if len(ids) < 2 {
		return "", "", fmt.Errorf("discovery: expected 2 clobTokenIds, got %d", len(ids))
	}
	return ids[0], ids[1], nil
}

// Slug builds the {asset-prefix}-updown-15m-{unix-epoch-seconds} slug for the
// 15-minute boundary at epoch seconds t.
func Slug(assetPrefix string, boundary int64) string {
	return fmt.Sprintf("%s-updown-15m-%s", strings.ToLower(assetPrefix), strconv.FormatInt(boundary, 10))
}

func assetFromSlug(slug string) string {
	parts := strings.SplitN(slug, "-updown-15m-", 2)
	if len(parts) == 0 {
		return ""
	}
	return strings.ToUpper(parts[0])
}

// SnapTo900 returns the 15-minute (900s) boundary at or before t.
func SnapTo900(t time.Time) int64 {
	u := t.Unix()
	return u - (u % 900)
}
