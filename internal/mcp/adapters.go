package mcp

import (
	"context"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"
)

// MarketReader exposes the batch price operations. Implementations never
// fail: partial results carry error-shaped entries instead.
type MarketReader interface {
	StockPrices(ctx context.Context) []domain.InstrumentResult
	CryptoPrices(ctx context.Context) []domain.InstrumentResult
	BondPrices(ctx context.Context) []domain.InstrumentResult
	GoldPrices(ctx context.Context) []domain.InstrumentResult
}

// MacroReader exposes the singleton-valued macro operations.
type MacroReader interface {
	ExchangeRate(ctx context.Context) (*domain.FXSnapshot, error)
	FearGreed(ctx context.Context) (*domain.SentimentSnapshot, error)
}
