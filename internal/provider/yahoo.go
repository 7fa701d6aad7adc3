package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches daily price history from the Yahoo Finance chart API.
// It serves equities, bond ETFs, gold ETFs and FX pairs alike; the symbol
// decides the asset ("SPY", "TLT", "USDKRW=X", ...).
type YahooProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewYahooProvider creates a provider rate limited to 30 requests per minute
// (one token every 2 seconds).
func NewYahooProvider(tracer trace.Tracer) *YahooProvider {
	return &YahooProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: yahooBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(30, 2*time.Second),
	}
}

// yahooChartResponse mirrors the v8 chart payload. Closes are pointers: Yahoo
// emits null for days without an observation.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyHistory returns one trailing month of daily closes for a symbol,
// ascending by time. Null observations are skipped. A symbol with no usable
// closes yields an empty series, not an error.
func (p *YahooProvider) FetchDailyHistory(ctx context.Context, symbol string) (domain.PriceSeries, error) {
	_, span := p.tracer.Start(ctx, "yahoo.fetch-daily-history")
	defer span.End()

	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=1mo&interval=1d", p.baseURL, url.PathEscape(symbol))
	body, err := p.doRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}

	var raw yahooChartResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse history for %s: %w", symbol, err)
	}
	if raw.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error for %s: %s (%s)", symbol, raw.Chart.Error.Description, raw.Chart.Error.Code)
	}
	if len(raw.Chart.Result) == 0 || len(raw.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := raw.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	series := make(domain.PriceSeries, 0, len(closes))
	for i, c := range closes {
		if c == nil || i >= len(result.Timestamp) {
			continue
		}
		series = append(series, domain.PricePoint{
			Time:  time.Unix(result.Timestamp[i], 0).UTC(),
			Value: *c,
		})
	}
	return series, nil
}

func (p *YahooProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "portfolio-optimizer-agent/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yahoo API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
