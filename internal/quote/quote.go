// Package quote fetches USD prices for the supported coins from a
// CoinGecko-compatible API.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"wallet_booking/internal/domain" // Coin list
	"wallet_booking/internal/utils"  // Redis cache

	"github.com/go-resty/resty/v2" // HTTP client
	"github.com/sirupsen/logrus"   // Logging
)

const cacheKey = "quotes:usd"

// coinIDs maps coins to the API's asset identifiers
var coinIDs = map[domain.Coin]string{
	domain.BTC:  "bitcoin",
	domain.USDT: "tether",
	domain.ETH:  "ethereum",
}

// Client queries the price API, caching results
type Client struct {
	http  *resty.Client
	cache *utils.Cache
	ttl   time.Duration
}

// New returns a client for baseURL. cache may be nil.
func New(baseURL string, timeout time.Duration, cache *utils.Cache, ttl time.Duration) *Client {
	return &Client{
		http:  resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		cache: cache,
		ttl:   ttl,
	}
}

// Prices returns the USD price of every supported coin
func (c *Client) Prices(ctx context.Context) (map[domain.Coin]float64, error) {
	var prices map[domain.Coin]float64
	// Serve from cache when possible
	if found, err := c.cache.Get(ctx, cacheKey, &prices); err == nil && found {
		return prices, nil
	}

	ids := make([]string, 0, len(domain.Coins))
	for _, coin := range domain.Coins {
		ids = append(ids, coinIDs[coin])
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           strings.Join(ids, ","),
			"vs_currencies": "usd",
		}).
		Get("/simple/price")
	if err != nil {
		return nil, fmt.Errorf("price request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("price request: status %d", resp.StatusCode())
	}

	// {"bitcoin":{"usd":64000.1},...}
	var body map[string]map[string]float64
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}
	prices = make(map[domain.Coin]float64, len(coinIDs))
	// Every coin must be priced
	for coin, id := range coinIDs {
		p, ok := body[id]["usd"]
		if !ok || p <= 0 {
			return nil, fmt.Errorf("price for %s missing", id)
		}
		prices[coin] = p
	}

	if err := c.cache.SetTTL(ctx, cacheKey, prices, c.ttl); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to cache prices")
	}
	return prices, nil
}
