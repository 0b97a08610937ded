// Package builder is read-only supporting infrastructure for the admin HTTP
// surface (out of the core trading pipeline per spec §1): it periodically
// syncs builder volume/leaderboard figures so the admin surface can report
// them. Grounded on the teacher's builder/tracker.go for its mutex-guarded
// Sync/Run/ticker shape; its data.Client dependency on the unavailable SDK is
// replaced with a hand-rolled net/http client against the Data API's REST
// endpoints, the same way internal/discovery replaces gamma.Client/clob.
package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// VolumeEntry is one day's builder trading volume.
type VolumeEntry struct {
	Date       string  `json:"date"`
	VolumeUSDC float64 `json:"volume_usdc"`
}

// LeaderboardEntry ranks one builder's cumulative volume.
type LeaderboardEntry struct {
	Builder    string  `json:"builder"`
	VolumeUSDC float64 `json:"volume_usdc"`
	Rank       int     `json:"rank"`
}

// Client fetches builder volume/leaderboard data over the Data API.
type Client struct {
	base string
	hc   *http.Client
}

func NewClient(base string) *Client {
	return &Client{base: strings.TrimRight(base, "/"), hc: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) get(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("builder: %s: %d: %s", path, res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(v)
}

func (c *Client) BuildersVolume(ctx context.Context, builder string) ([]VolumeEntry, error) {
	var out []VolumeEntry
	path := "/builders/volume?builder=" + url.QueryEscape(builder)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) BuildersLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var out []LeaderboardEntry
	if err := c.get(ctx, "/builders/leaderboard", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VolumeTracker periodically syncs builder volume and leaderboard data.
type VolumeTracker struct {
	client       *Client
	builderID    string
	mu           sync.RWMutex
	dailyVolume  []VolumeEntry
	leaderboard  []LeaderboardEntry
	lastSync     time.Time
	syncInterval time.Duration
}

func NewVolumeTracker(client *Client, builderID string, syncInterval time.Duration) *VolumeTracker {
	return &VolumeTracker{client: client, builderID: builderID, syncInterval: syncInterval}
}

func (t *VolumeTracker) Sync(ctx context.Context) error {
	vol, err := t.client.BuildersVolume(ctx, t.builderID)
	if err != nil {
		return err
	}
	lb, err := t.client.BuildersLeaderboard(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.dailyVolume = vol
	t.leaderboard = lb
	t.lastSync = time.Now()
	t.mu.Unlock()
	return nil
}

func (t *VolumeTracker) DailyVolume() []VolumeEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dailyVolume
}

func (t *VolumeTracker) Leaderboard() []LeaderboardEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.leaderboard
}

// DailyVolumeJSON returns daily volume as interface{} for JSON serialization.
func (t *VolumeTracker) DailyVolumeJSON() interface{} {
	return t.DailyVolume()
}

// LeaderboardJSON returns leaderboard as interface{} for JSON serialization.
func (t *VolumeTracker) LeaderboardJSON() interface{} {
	return t.Leaderboard()
}

func (t *VolumeTracker) LastSync() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastSync
}

func (t *VolumeTracker) Run(ctx context.Context) error {
	if err := t.Sync(ctx); err != nil {
		log.Printf("builder tracker initial sync: %v", err)
	}

	ticker := time.NewTicker(t.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.Sync(ctx); err != nil {
				log.Printf("builder tracker sync: %v", err)
			}
		}
	}
}
