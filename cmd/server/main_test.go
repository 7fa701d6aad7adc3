package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/bot"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/config"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/mcp"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/portfolio"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/provider"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/service"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func stubServerDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origLoadPortfolio := loadPortfolioFunc
	origInitTracer := initTracerFunc
	origNewYahoo := newYahooProviderFunc
	origNewCoinGecko := newCoinGeckoProviderFunc
	origNewFearGreed := newFearGreedProviderFunc
	origStartTelegram := startTelegramBotFunc
	origStartMCPStdio := startMCPStdioFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			PortfolioPath:      "unused",
			FXPair:             "USDKRW=X",
			HTTPPort:           8080,
			FetchConcurrency:   2,
			RequestTimeoutSecs: 10,
			MCPTransport:       "stdio",
		}
	}
	loadPortfolioFunc = func(string) (*portfolio.Portfolio, error) {
		return &portfolio.Portfolio{
			Stocks: []domain.Instrument{{Symbol: "SPY", Name: "S&P 500 ETF"}},
		}, nil
	}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newYahooProviderFunc = func(trace.Tracer) service.HistoryProvider { return stubHistoryProvider{} }
	newCoinGeckoProviderFunc = func(trace.Tracer) service.SpotProvider { return stubSpotProvider{} }
	newFearGreedProviderFunc = func(trace.Tracer) service.SentimentProvider { return stubSentimentProvider{} }
	startTelegramBotFunc = func(string, *service.MarketService, *service.SentimentService, bot.Adviser) {}
	startMCPStdioFunc = func(*mcp.Server, context.Context) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		loadPortfolioFunc = origLoadPortfolio
		initTracerFunc = origInitTracer
		newYahooProviderFunc = origNewYahoo
		newCoinGeckoProviderFunc = origNewCoinGecko
		newFearGreedProviderFunc = origNewFearGreed
		startTelegramBotFunc = origStartTelegram
		startMCPStdioFunc = origStartMCPStdio
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}

type stubHistoryProvider struct{}

func (stubHistoryProvider) FetchDailyHistory(ctx context.Context, symbol string) (domain.PriceSeries, error) {
	return domain.PriceSeries{{Time: time.Now(), Value: 1}}, nil
}

type stubSpotProvider struct{}

func (stubSpotProvider) FetchMarkets(ctx context.Context, ids []string) (map[string]provider.CoinSnapshot, error) {
	return map[string]provider.CoinSnapshot{}, nil
}

type stubSentimentProvider struct{}

func (stubSentimentProvider) FetchHistory(ctx context.Context, limit int) ([]provider.FearGreedPoint, error) {
	return []provider.FearGreedPoint{{Value: 50, Classification: "Neutral", Timestamp: time.Now()}}, nil
}
