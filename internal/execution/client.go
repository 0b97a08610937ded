// Package execution is the Execution Module (§4.5): order submission,
// marketable-limit price derivation, and cancellation against the venue's
// order endpoints. There is no reconciliation of local orders against venue
// state. Grounded on
// chidi150c-coinbase/broker_coinbase.go's *http.Client-wrapping-struct
// pattern, replacing the unavailable CLOB SDK client the teacher's
// app.go built orders through (clob.NewOrderBuilder/CreateOrderFromSignable).
package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/polybot/updown-trader/internal/signer"
)

// Client talks to the venue's order endpoints over plain REST.
type Client struct {
	base   string
	hc     *http.Client
	signer signer.OrderSigner // nil means no credentials configured
}

func NewClient(base string, s signer.OrderSigner) *Client {
	return &Client{base: strings.TrimRight(base, "/"), hc: &http.Client{Timeout: 10 * time.Second}, signer: s}
}

// HasCredentials reports whether orders submitted through this client will
// hit the venue, or fall back to the "no credentials" simulated path.
func (c *Client) HasCredentials() bool { return c.signer != nil }

type placeRequest struct {
	TokenID     string `json:"tokenID"`
	Price       string `json:"price"`
	Size        string `json:"size"`
	Side        string `json:"side"`
	FeeRateBps  int    `json:"feeRateBps"`
	Nonce       int64  `json:"nonce"`
	Expiration  int64  `json:"expiration"`
	Signature   string `json:"signature"`
	Maker       string `json:"maker"`
}

type placeResponse struct {
	OrderID      string `json:"orderID"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMsg"`
}

// venueResult is the outcome of a venue round trip, distinguishing a
// transport failure from an error response body per §4.5.
type venueResult struct {
	orderID      string
	accepted     bool
	errorMessage string
}

func (c *Client) submit(ctx context.Context, tokenID, side, price, size string) (venueResult, error) {
	nonce := time.Now().UnixMilli()
	payload := signer.OrderPayload{
		TokenID:    tokenID,
		Price:      price,
		Size:       size,
		Side:       side,
		FeeRateBps: 0,
		Nonce:      nonce,
		Expiration: 0,
	}
	sig, err := c.signer.Sign(payload.Hash())
	if err != nil {
		return venueResult{}, fmt.Errorf("execution: sign order: %w", err)
	}

	req := placeRequest{
		TokenID:    tokenID,
		Price:      price,
		Size:       size,
		Side:       side,
		FeeRateBps: 0,
		Nonce:      nonce,
		Expiration: 0,
		Signature:  fmt.Sprintf("0x%x", sig),
		Maker:      c.signer.Address().Hex(),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return venueResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/order", bytes.NewReader(body))
	if err != nil {
		return venueResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(httpReq)
	if err != nil {
		// Transport failure: the caller records this as status=error with
		// the exception text, distinct from a venue-returned rejection.
		return venueResult{}, fmt.Errorf("execution: transport: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return venueResult{}, fmt.Errorf("execution: read response: %w", err)
	}
	var resp placeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return venueResult{}, fmt.Errorf("execution: decode response: %w", err)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return venueResult{orderID: resp.OrderID, accepted: true}, nil
	}
	msg := resp.ErrorMessage
	if msg == "" {
		msg = string(raw)
	}
	return venueResult{accepted: false, errorMessage: msg}, nil
}

func (c *Client) cancel(ctx context.Context, venueOrderID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/order/"+venueOrderID, nil)
	if err != nil {
		return err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("execution: cancel transport: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("execution: cancel %s: %d: %s", venueOrderID, res.StatusCode, string(b))
	}
	return nil
}
