package service

import (
	"context"
	"log"
	"sync"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/portfolio"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/provider"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/returns"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HistoryProvider fetches a trailing month of daily closes for one symbol.
type HistoryProvider interface {
	FetchDailyHistory(ctx context.Context, symbol string) (domain.PriceSeries, error)
}

// SpotProvider fetches batched spot prices for a set of crypto ids.
type SpotProvider interface {
	FetchMarkets(ctx context.Context, ids []string) (map[string]provider.CoinSnapshot, error)
}

// MarketService aggregates per-instrument price data for each asset class.
// Every batch operation returns a well-formed result list; individual fetch or
// compute failures become error-shaped entries, never a failed call.
type MarketService struct {
	tracer      trace.Tracer
	history     HistoryProvider
	spot        SpotProvider
	universe    *portfolio.Portfolio
	concurrency int
	logger      *log.Logger
}

func NewMarketService(
	tracer trace.Tracer,
	history HistoryProvider,
	spot SpotProvider,
	universe *portfolio.Portfolio,
	concurrency int,
	logger *log.Logger,
) *MarketService {
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = log.Default()
	}
	return &MarketService{
		tracer:      tracer,
		history:     history,
		spot:        spot,
		universe:    universe,
		concurrency: concurrency,
		logger:      logger,
	}
}

// StockPrices returns one result per configured stock, in configuration order.
func (s *MarketService) StockPrices(ctx context.Context) []domain.InstrumentResult {
	return s.batchHistory(ctx, domain.ClassStock)
}

// BondPrices returns one result per configured bond ETF.
func (s *MarketService) BondPrices(ctx context.Context) []domain.InstrumentResult {
	return s.batchHistory(ctx, domain.ClassBond)
}

// GoldPrices returns one result per configured gold ETF.
func (s *MarketService) GoldPrices(ctx context.Context) []domain.InstrumentResult {
	return s.batchHistory(ctx, domain.ClassGold)
}

// batchHistory fans per-instrument fetches out under a bounded semaphore and
// writes each result by index, so output order is configuration order no
// matter which fetch finishes first.
func (s *MarketService) batchHistory(ctx context.Context, class domain.AssetClass) []domain.InstrumentResult {
	ctx, span := s.tracer.Start(ctx, "market-service.batch-history")
	defer span.End()
	span.SetAttributes(attribute.String("asset_class", string(class)))

	instruments := s.universe.Instruments(class)
	results := make([]domain.InstrumentResult, len(instruments))
	if len(instruments) == 0 {
		return results
	}

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for i, inst := range instruments {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, inst domain.Instrument) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.normalize(ctx, inst)
		}(i, inst)
	}
	wg.Wait()

	return results
}

// normalize fetches one instrument's series and derives its quote. Any
// failure is converted to an error-shaped result here and goes no further.
func (s *MarketService) normalize(ctx context.Context, inst domain.Instrument) domain.InstrumentResult {
	series, err := s.history.FetchDailyHistory(ctx, inst.Symbol)
	if err != nil {
		s.logger.Printf("history fetch failed for %s: %v", inst.Symbol, err)
		return domain.Fail(inst.Symbol, err)
	}
	if len(series) == 0 {
		s.logger.Printf("no history for %s", inst.Symbol)
		return domain.Fail(inst.Symbol, domain.ErrNoData)
	}

	metrics, err := returns.Compute(series.Values())
	if err != nil {
		return domain.Fail(inst.Symbol, err)
	}

	return domain.Succeed(inst.Symbol, domain.Quote{
		Name:        inst.Name,
		Price:       metrics.Current,
		Change1dPct: metrics.Change1dPct,
		Change1wPct: metrics.Change1wPct,
		Change1mPct: metrics.Change1mPct,
	})
}

// CryptoPrices returns one result per configured coin using a single batched
// upstream call. Ids missing from the payload become "no data" entries; a
// failed call yields a full list of error entries.
func (s *MarketService) CryptoPrices(ctx context.Context) []domain.InstrumentResult {
	ctx, span := s.tracer.Start(ctx, "market-service.crypto-prices")
	defer span.End()

	instruments := s.universe.Instruments(domain.ClassCrypto)
	results := make([]domain.InstrumentResult, len(instruments))
	if len(instruments) == 0 {
		return results
	}

	ids := make([]string, len(instruments))
	for i, inst := range instruments {
		ids[i] = inst.Symbol
	}

	snapshots, err := s.spot.FetchMarkets(ctx, ids)
	if err != nil {
		s.logger.Printf("crypto batch fetch failed: %v", err)
		for i, inst := range instruments {
			results[i] = domain.Fail(inst.Symbol, err)
		}
		return results
	}

	for i, inst := range instruments {
		snap, ok := snapshots[inst.Symbol]
		if !ok {
			s.logger.Printf("no crypto data for %s", inst.Symbol)
			results[i] = domain.Fail(inst.Symbol, domain.ErrNoData)
			continue
		}
		results[i] = domain.Succeed(inst.Symbol, domain.Quote{
			Name:        inst.Name,
			Price:       snap.Price,
			Change1dPct: returns.Round2(snap.Change1dPct),
			Change1wPct: returns.Round2(snap.Change1wPct),
			Change1mPct: returns.Round2(snap.Change1mPct),
		})
	}
	return results
}
