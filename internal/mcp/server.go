// Package mcp exposes the data-retrieval operations as Model Context
// Protocol tools for an external reasoning agent. Every tool returns a JSON
// object: success, partial success and total failure all serialize the same
// way, so the agent never sees a protocol-level fault for a data problem.
package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wires the six data tools onto an MCP server.
type Server struct {
	server *sdk.Server
	market MarketReader
	macro  MacroReader
}

func NewServer(market MarketReader, macro MacroReader) *Server {
	s := &Server{
		server: sdk.NewServer(&sdk.Implementation{
			Name:    "portfolio-data",
			Version: "1.0.0",
		}, nil),
		market: market,
		macro:  macro,
	}
	s.registerTools()
	return s
}

// Run serves the stdio transport until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// Handler returns the streamable HTTP transport handler.
func (s *Server) Handler() http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return s.server
	}, nil)
}

func (s *Server) registerTools() {
	s.addTool("get_stock_prices",
		"Current price and 1d/1w/1m returns for every configured stock/ETF.",
		func(ctx context.Context) any {
			return batchPayload("stocks", s.market.StockPrices(ctx))
		})
	s.addTool("get_crypto_prices",
		"Current price and 1d/1w/1m changes for every configured crypto asset.",
		func(ctx context.Context) any {
			return batchPayload("crypto", s.market.CryptoPrices(ctx))
		})
	s.addTool("get_bond_prices",
		"Current price and 1d/1w/1m returns for every configured bond ETF.",
		func(ctx context.Context) any {
			return batchPayload("bonds", s.market.BondPrices(ctx))
		})
	s.addTool("get_gold_prices",
		"Current price and 1d/1w/1m returns for every configured gold ETF.",
		func(ctx context.Context) any {
			return batchPayload("gold", s.market.GoldPrices(ctx))
		})
	s.addTool("get_exchange_rate",
		"Current rate and 1d/1w/1m changes for the configured currency pair.",
		func(ctx context.Context) any {
			return singletonPayload(s.macro.ExchangeRate(ctx))
		})
	s.addTool("get_fear_greed_index",
		"Crypto Fear & Greed index (0=extreme fear, 100=extreme greed) with trailing context.",
		func(ctx context.Context) any {
			return singletonPayload(s.macro.FearGreed(ctx))
		})
}

// addTool registers a parameterless tool whose payload serializes to one
// JSON object.
func (s *Server) addTool(name, description string, payload func(ctx context.Context) any) {
	s.server.AddTool(&sdk.Tool{
		Name:        name,
		Description: description,
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, func(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
		return jsonResult(payload(ctx))
	})
}

// batchPayload wraps a batch result under its asset-class key.
func batchPayload(key string, results []domain.InstrumentResult) map[string]any {
	return map[string]any{key: results}
}

// singletonPayload renders a singleton operation: the snapshot on success, a
// top-level {error} object otherwise.
func singletonPayload[T any](snapshot *T, err error) any {
	if err != nil {
		return map[string]string{"error": err.Error()}
	}
	return snapshot
}

func jsonResult(v any) (*sdk.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: string(data)}},
	}, nil
}
