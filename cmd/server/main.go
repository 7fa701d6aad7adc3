package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/advisor"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/bot"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/config"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/handler"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/mcp"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/portfolio"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/provider"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/service"
	"github.com/SeolheeYun/portfolio-optimizer-agent/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	loadPortfolioFunc    = portfolio.Load
	initTracerFunc       = tracing.InitTracer
	newYahooProviderFunc = func(tracer trace.Tracer) service.HistoryProvider {
		return provider.NewYahooProvider(tracer)
	}
	newCoinGeckoProviderFunc = func(tracer trace.Tracer) service.SpotProvider {
		return provider.NewCoinGeckoProvider(tracer)
	}
	newFearGreedProviderFunc = func(tracer trace.Tracer) service.SentimentProvider {
		return provider.NewFearGreedProvider(tracer)
	}
	newLLMClientFunc       = advisor.NewOpenAIClient
	startTelegramBotFunc   = bot.StartTelegramBot
	startMCPStdioFunc      = func(s *mcp.Server, ctx context.Context) { go runMCPStdio(s, ctx) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// dataGateway joins the two data services into the single surface the
// advisor reads from.
type dataGateway struct {
	*service.MarketService
	*service.SentimentService
}

// requestTimeout bounds every upstream fetch triggered by one API request.
// The advice endpoint is exempt because LLM completions routinely run longer
// than a data fetch.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() == "/api/advice" {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func runMCPStdio(s *mcp.Server, ctx context.Context) {
	if err := s.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("mcp stdio server stopped: %v", err)
	}
}

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	universe, err := loadPortfolioFunc(cfg.PortfolioPath)
	if err != nil {
		log.Fatalf("failed to load portfolio: %v", err)
	}

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	yahoo := newYahooProviderFunc(tracer)
	coinGecko := newCoinGeckoProviderFunc(tracer)
	fearGreed := newFearGreedProviderFunc(tracer)

	marketService := service.NewMarketService(tracer, yahoo, coinGecko, universe, cfg.FetchConcurrency, log.Default())
	sentimentService := service.NewSentimentService(tracer, yahoo, fearGreed, cfg.FXPair)

	var advisorService *advisor.AdvisorService
	if cfg.OpenAIAPIKey != "" {
		llm := newLLMClientFunc(cfg.OpenAIAPIKey)
		data := &dataGateway{marketService, sentimentService}
		advisorService = advisor.NewAdvisorService(tracer, llm, data, universe, cfg.OpenAIModel, log.Default())
	}

	// Expose the data tools to external agents over the configured transport.
	mcpServer := mcp.NewServer(marketService, sentimentService)
	var mcpHTTP *http.Server
	if cfg.MCPTransport == "http" {
		mcpHTTP = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.MCPHTTPBind, cfg.MCPHTTPPort),
			Handler: mcpServer.Handler(),
		}
		go func() {
			log.Printf("MCP HTTP server listening on %s", mcpHTTP.Addr)
			if err := startHTTPServerFunc(mcpHTTP); err != nil && err != http.ErrServerClosed {
				log.Fatalf("mcp listen: %s\n", err)
			}
		}()
	} else {
		startMCPStdioFunc(mcpServer, ctx)
	}

	var adviser bot.Adviser
	if advisorService != nil {
		adviser = advisorService
	}
	startTelegramBotFunc(cfg.TelegramBotToken, marketService, sentimentService, adviser)

	var adviceGiver handler.AdviceGiver
	if advisorService != nil {
		adviceGiver = advisorService
	}
	h := handler.New(tracer, marketService, sentimentService, adviceGiver)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("portfolio-optimizer-agent"))
	r.Use(requestTimeout(time.Duration(cfg.RequestTimeoutSecs) * time.Second))
	h.RegisterRoutes(r, cfg.APIKey)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if mcpHTTP != nil {
		if err := shutdownHTTPServerFunc(mcpHTTP, shutdownCtx); err != nil {
			log.Printf("mcp server forced to shutdown: %v", err)
		}
	}
	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
