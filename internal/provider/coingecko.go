package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinSnapshot is one coin's spot price with trailing percentage changes, as
// reported by the upstream (already in percent, unrounded).
type CoinSnapshot struct {
	ID          string
	Price       float64
	Change1dPct float64
	Change1wPct float64
	Change1mPct float64
}

// CoinGeckoProvider fetches batched spot prices from the CoinGecko free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a provider rate limited to 8 requests per
// minute (one token every 7.5 seconds).
func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: coingeckoBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// FetchMarkets fetches current price and 24h/7d/30d changes for the given
// CoinGecko ids in a single API call. Ids the upstream does not know are
// simply absent from the returned map.
func (p *CoinGeckoProvider) FetchMarkets(ctx context.Context, ids []string) (map[string]CoinSnapshot, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-markets")
	defer span.End()

	u := fmt.Sprintf("%s/coins/markets?vs_currency=usd&ids=%s&price_change_percentage=24h,7d,30d",
		p.baseURL, url.QueryEscape(strings.Join(ids, ",")))

	body, err := p.doRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}

	var raw []struct {
		ID           string   `json:"id"`
		CurrentPrice float64  `json:"current_price"`
		Change24h    *float64 `json:"price_change_percentage_24h_in_currency"`
		Change7d     *float64 `json:"price_change_percentage_7d_in_currency"`
		Change30d    *float64 `json:"price_change_percentage_30d_in_currency"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse markets: %w", err)
	}

	result := make(map[string]CoinSnapshot, len(raw))
	for _, row := range raw {
		snap := CoinSnapshot{ID: row.ID, Price: row.CurrentPrice}
		if row.Change24h != nil {
			snap.Change1dPct = *row.Change24h
		}
		if row.Change7d != nil {
			snap.Change1wPct = *row.Change7d
		}
		if row.Change30d != nil {
			snap.Change1mPct = *row.Change30d
		}
		result[row.ID] = snap
	}
	return result, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
