package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/portfolio"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/provider"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func seriesOf(values ...float64) domain.PriceSeries {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s := make(domain.PriceSeries, len(values))
	for i, v := range values {
		s[i] = domain.PricePoint{Time: base.AddDate(0, 0, i), Value: v}
	}
	return s
}

type mockHistory struct {
	series map[string]domain.PriceSeries
	errs   map[string]error
}

func (m *mockHistory) FetchDailyHistory(_ context.Context, symbol string) (domain.PriceSeries, error) {
	if err, ok := m.errs[symbol]; ok {
		return nil, err
	}
	return m.series[symbol], nil
}

type mockSpot struct {
	snapshots map[string]provider.CoinSnapshot
	err       error
	gotIDs    []string
}

func (m *mockSpot) FetchMarkets(_ context.Context, ids []string) (map[string]provider.CoinSnapshot, error) {
	m.gotIDs = ids
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshots, nil
}

func stockUniverse(symbols ...string) *portfolio.Portfolio {
	p := &portfolio.Portfolio{}
	for _, s := range symbols {
		p.Stocks = append(p.Stocks, domain.Instrument{Symbol: s, Name: s + " Inc"})
	}
	return p
}

func TestStockPricesEmptyUniverse(t *testing.T) {
	t.Parallel()

	svc := NewMarketService(testTracer, &mockHistory{}, &mockSpot{}, &portfolio.Portfolio{}, 2, nil)
	results := svc.StockPrices(context.Background())
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", results)
	}
}

func TestStockPricesIsolatesFailures(t *testing.T) {
	t.Parallel()

	history := &mockHistory{
		series: map[string]domain.PriceSeries{
			"AAA": seriesOf(100, 105, 110),
			"CCC": seriesOf(50, 55),
		},
		errs: map[string]error{"BBB": errors.New("connection reset")},
	}
	svc := NewMarketService(testTracer, history, &mockSpot{}, stockUniverse("AAA", "BBB", "CCC"), 2, nil)

	results := svc.StockPrices(context.Background())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Symbol != "AAA" || results[1].Symbol != "BBB" || results[2].Symbol != "CCC" {
		t.Fatalf("configuration order not preserved: %+v", results)
	}
	if !results[0].OK() || !results[2].OK() {
		t.Fatalf("expected first and third populated: %+v", results)
	}
	if results[1].OK() || results[1].Err != "connection reset" {
		t.Fatalf("expected second error-shaped: %+v", results[1])
	}
}

func TestStockPricesQuoteValues(t *testing.T) {
	t.Parallel()

	history := &mockHistory{series: map[string]domain.PriceSeries{"AAA": seriesOf(100, 105, 110)}}
	svc := NewMarketService(testTracer, history, &mockSpot{}, stockUniverse("AAA"), 1, nil)

	results := svc.StockPrices(context.Background())
	q := results[0].Quote
	if q == nil {
		t.Fatalf("expected quote, got %+v", results[0])
	}
	if q.Name != "AAA Inc" || q.Price != 110 {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.Change1dPct != 4.76 || q.Change1wPct != 10 || q.Change1mPct != 10 {
		t.Fatalf("unexpected changes: %+v", q)
	}
}

func TestStockPricesNoData(t *testing.T) {
	t.Parallel()

	history := &mockHistory{series: map[string]domain.PriceSeries{}}
	svc := NewMarketService(testTracer, history, &mockSpot{}, stockUniverse("AAA"), 1, nil)

	results := svc.StockPrices(context.Background())
	if results[0].OK() || results[0].Err != "no data" {
		t.Fatalf("expected no-data error, got %+v", results[0])
	}
}

func TestStockPricesZeroReference(t *testing.T) {
	t.Parallel()

	history := &mockHistory{series: map[string]domain.PriceSeries{"AAA": seriesOf(0, 50)}}
	svc := NewMarketService(testTracer, history, &mockSpot{}, stockUniverse("AAA"), 1, nil)

	results := svc.StockPrices(context.Background())
	if results[0].OK() {
		t.Fatalf("zero reference must be an item-level error, got %+v", results[0])
	}
}

func TestStockPricesTotalOutage(t *testing.T) {
	t.Parallel()

	outage := errors.New("upstream unavailable")
	history := &mockHistory{errs: map[string]error{"AAA": outage, "BBB": outage}}
	svc := NewMarketService(testTracer, history, &mockSpot{}, stockUniverse("AAA", "BBB"), 2, nil)

	results := svc.StockPrices(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected full list under outage, got %d", len(results))
	}
	for _, r := range results {
		if r.OK() {
			t.Fatalf("expected all error entries, got %+v", r)
		}
	}
}

func cryptoUniverse(ids ...string) *portfolio.Portfolio {
	p := &portfolio.Portfolio{}
	for _, id := range ids {
		p.Crypto = append(p.Crypto, domain.Instrument{Symbol: id, Name: id})
	}
	return p
}

func TestCryptoPricesBatched(t *testing.T) {
	t.Parallel()

	spot := &mockSpot{snapshots: map[string]provider.CoinSnapshot{
		"bitcoin":  {ID: "bitcoin", Price: 97000.12, Change1dPct: 2.345, Change1wPct: -1.239, Change1mPct: 10.9},
		"ethereum": {ID: "ethereum", Price: 3200, Change1dPct: 1.1},
	}}
	svc := NewMarketService(testTracer, &mockHistory{}, spot, cryptoUniverse("bitcoin", "ethereum"), 2, nil)

	results := svc.CryptoPrices(context.Background())
	if !reflect.DeepEqual(spot.gotIDs, []string{"bitcoin", "ethereum"}) {
		t.Fatalf("expected one batched call with both ids, got %v", spot.gotIDs)
	}
	if len(results) != 2 || !results[0].OK() || !results[1].OK() {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Quote.Change1dPct != 2.35 || results[0].Quote.Change1wPct != -1.24 {
		t.Fatalf("changes not rounded: %+v", results[0].Quote)
	}
}

func TestCryptoPricesMissingID(t *testing.T) {
	t.Parallel()

	spot := &mockSpot{snapshots: map[string]provider.CoinSnapshot{
		"bitcoin": {ID: "bitcoin", Price: 97000},
	}}
	svc := NewMarketService(testTracer, &mockHistory{}, spot, cryptoUniverse("bitcoin", "dogecoin"), 2, nil)

	results := svc.CryptoPrices(context.Background())
	if !results[0].OK() {
		t.Fatalf("expected bitcoin populated: %+v", results[0])
	}
	if results[1].OK() || results[1].Err != "no data" {
		t.Fatalf("expected dogecoin no-data entry: %+v", results[1])
	}
}

func TestCryptoPricesBatchFailure(t *testing.T) {
	t.Parallel()

	spot := &mockSpot{err: errors.New("rate limited")}
	svc := NewMarketService(testTracer, &mockHistory{}, spot, cryptoUniverse("bitcoin", "ethereum"), 2, nil)

	results := svc.CryptoPrices(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected full list, got %d", len(results))
	}
	for _, r := range results {
		if r.OK() || r.Err != "rate limited" {
			t.Fatalf("expected error entry, got %+v", r)
		}
	}
}

func TestCryptoPricesEmptyUniverse(t *testing.T) {
	t.Parallel()

	spot := &mockSpot{}
	svc := NewMarketService(testTracer, &mockHistory{}, spot, &portfolio.Portfolio{}, 2, nil)

	results := svc.CryptoPrices(context.Background())
	if len(results) != 0 {
		t.Fatalf("expected empty list, got %+v", results)
	}
	if spot.gotIDs != nil {
		t.Fatal("no upstream call expected for an empty universe")
	}
}

func TestBatchIsIdempotent(t *testing.T) {
	t.Parallel()

	history := &mockHistory{series: map[string]domain.PriceSeries{"AAA": seriesOf(90, 91, 92, 93, 94, 95)}}
	svc := NewMarketService(testTracer, history, &mockSpot{}, stockUniverse("AAA"), 1, nil)

	first := svc.StockPrices(context.Background())
	second := svc.StockPrices(context.Background())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same upstream data must yield identical output:\n%+v\n%+v", first, second)
	}
}
