package handler

import (
	"net/http"
	"strings"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetPrices returns the batch result for one asset class. The response is
// always 200 with a full list; individual failures are error-shaped entries.
func (h *Handler) GetPrices(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-prices")
	defer span.End()

	class := domain.AssetClass(strings.ToLower(c.Param("class")))
	span.SetAttributes(attribute.String("asset_class", string(class)))

	if !class.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported asset class: " + string(class),
			"supported_classes": domain.AssetClasses,
		})
		return
	}

	var results []domain.InstrumentResult
	switch class {
	case domain.ClassStock:
		results = h.market.StockPrices(ctx)
	case domain.ClassCrypto:
		results = h.market.CryptoPrices(ctx)
	case domain.ClassBond:
		results = h.market.BondPrices(ctx)
	case domain.ClassGold:
		results = h.market.GoldPrices(ctx)
	}

	c.JSON(http.StatusOK, gin.H{string(class): results})
}

// GetExchangeRate returns the FX snapshot, or a structured error payload.
func (h *Handler) GetExchangeRate(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-exchange-rate")
	defer span.End()

	snap, err := h.sentiment.ExchangeRate(ctx)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetFearGreed returns the sentiment snapshot, or a structured error payload.
func (h *Handler) GetFearGreed(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-fear-greed")
	defer span.End()

	snap, err := h.sentiment.FearGreed(ctx)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetAdvice runs the allocation advisor over freshly collected data.
func (h *Handler) GetAdvice(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-advice")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor is not configured"})
		return
	}

	var body struct {
		Question string `json:"question"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	reply, err := h.advisor.Advise(ctx, body.Question)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"advice": reply})
}
