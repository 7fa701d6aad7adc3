package service

import (
	"context"
	"fmt"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/provider"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/returns"

	"go.opentelemetry.io/otel/trace"
)

// fearGreedDays is how many trailing readings the sentiment path requests:
// today plus six days of context.
const fearGreedDays = 7

// SentimentProvider fetches trailing Fear & Greed readings, newest first.
type SentimentProvider interface {
	FetchHistory(ctx context.Context, limit int) ([]provider.FearGreedPoint, error)
}

// SentimentService serves the singleton-valued macro reads: the configured FX
// pair and the Fear & Greed index. Failures surface as errors; the calling
// boundary renders them as structured {error} payloads.
type SentimentService struct {
	tracer    trace.Tracer
	fx        HistoryProvider
	fearGreed SentimentProvider
	pair      string
}

func NewSentimentService(
	tracer trace.Tracer,
	fx HistoryProvider,
	fearGreed SentimentProvider,
	pair string,
) *SentimentService {
	return &SentimentService{
		tracer:    tracer,
		fx:        fx,
		fearGreed: fearGreed,
		pair:      pair,
	}
}

// ExchangeRate fetches a trailing month of the configured pair and derives
// the same multi-horizon changes the batch path uses.
func (s *SentimentService) ExchangeRate(ctx context.Context) (*domain.FXSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "sentiment-service.exchange-rate")
	defer span.End()

	series, err := s.fx.FetchDailyHistory(ctx, s.pair)
	if err != nil {
		return nil, fmt.Errorf("fetch fx history: %w", err)
	}
	if len(series) == 0 {
		return nil, domain.ErrNoData
	}

	metrics, err := returns.Compute(series.Values())
	if err != nil {
		return nil, err
	}

	return &domain.FXSnapshot{
		Pair:        displayPair(s.pair),
		Rate:        metrics.Current,
		Change1dPct: metrics.Change1dPct,
		Change1wPct: metrics.Change1wPct,
		Change1mPct: metrics.Change1mPct,
	}, nil
}

// FearGreed fetches the last week of index readings. Short histories degrade
// to today's score for the missing comparison points rather than erroring.
func (s *SentimentService) FearGreed(ctx context.Context) (*domain.SentimentSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "sentiment-service.fear-greed")
	defer span.End()

	points, err := s.fearGreed.FetchHistory(ctx, fearGreedDays)
	if err != nil {
		return nil, fmt.Errorf("fetch fear & greed: %w", err)
	}
	if len(points) == 0 {
		return nil, domain.ErrNoData
	}

	today := points[0]
	yesterday := today.Value
	if len(points) > 1 {
		yesterday = points[1].Value
	}
	weekAgo := today.Value
	if len(points) > 6 {
		weekAgo = points[6].Value
	}

	return &domain.SentimentSnapshot{
		Score:          today.Value,
		Rating:         today.Classification,
		Yesterday:      yesterday,
		OneWeekAgo:     weekAgo,
		Interpretation: InterpretScore(today.Value),
	}, nil
}

// InterpretScore maps a Fear & Greed score to a one-line reading. Total over
// [0,100]; each boundary value belongs to the lower bucket.
func InterpretScore(score int) string {
	switch {
	case score <= 25:
		return "Extreme fear - may be a buying opportunity"
	case score <= 45:
		return "Fear - market is unsettled"
	case score <= 55:
		return "Neutral - balanced conditions"
	case score <= 75:
		return "Greed - caution advised"
	default:
		return "Extreme greed - overheated, a correction is possible"
	}
}

// displayPair turns a Yahoo FX symbol like "USDKRW=X" into "USD/KRW".
func displayPair(symbol string) string {
	base := symbol
	if i := len(base) - 2; i > 0 && base[i:] == "=X" {
		base = base[:i]
	}
	if len(base) == 6 {
		return base[:3] + "/" + base[3:]
	}
	return base
}
