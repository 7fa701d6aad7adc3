package handler

import (
	"context"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// AdviceGiver is the optional allocation advisor; nil when no OpenAI key is
// configured.
type AdviceGiver interface {
	Advise(ctx context.Context, question string) (string, error)
}

type Handler struct {
	tracer    trace.Tracer
	market    *service.MarketService
	sentiment *service.SentimentService
	advisor   AdviceGiver
}

func New(tracer trace.Tracer, market *service.MarketService, sentiment *service.SentimentService, advisor AdviceGiver) *Handler {
	return &Handler{
		tracer:    tracer,
		market:    market,
		sentiment: sentiment,
		advisor:   advisor,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/prices/:class", h.GetPrices)
	api.GET("/fx", h.GetExchangeRate)
	api.GET("/fear-greed", h.GetFearGreed)
	api.POST("/advice", h.GetAdvice)
}
