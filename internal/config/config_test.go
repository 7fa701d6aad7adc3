package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORTFOLIO_PATH", "")
	t.Setenv("FX_PAIR", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("FETCH_CONCURRENCY", "")
	t.Setenv("MCP_TRANSPORT", "")
	t.Setenv("OPENAI_MODEL", "")

	cfg := Load()
	if cfg.PortfolioPath != "portfolio.yaml" {
		t.Fatalf("expected default portfolio path, got %s", cfg.PortfolioPath)
	}
	if cfg.FXPair != "USDKRW=X" {
		t.Fatalf("expected default fx pair, got %s", cfg.FXPair)
	}
	if cfg.HTTPPort != 8080 || cfg.MCPHTTPPort != 8090 {
		t.Fatalf("unexpected default ports: %d %d", cfg.HTTPPort, cfg.MCPHTTPPort)
	}
	if cfg.FetchConcurrency != 4 {
		t.Fatalf("expected default concurrency 4, got %d", cfg.FetchConcurrency)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("expected default transport stdio, got %s", cfg.MCPTransport)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("unexpected default model: %s", cfg.OpenAIModel)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("PORTFOLIO_PATH", "/etc/universe.yaml")
	t.Setenv("FX_PAIR", "EURUSD=X")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("FETCH_CONCURRENCY", "8")
	t.Setenv("MCP_TRANSPORT", "HTTP")

	cfg := Load()
	if cfg.PortfolioPath != "/etc/universe.yaml" || cfg.FXPair != "EURUSD=X" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.HTTPPort != 9000 || cfg.FetchConcurrency != 8 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.MCPTransport != "http" {
		t.Fatalf("expected transport http, got %s", cfg.MCPTransport)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "bad")
	t.Setenv("FETCH_CONCURRENCY", "-1")
	t.Setenv("MCP_TRANSPORT", "grpc")

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Fatalf("invalid port should fall back to default, got %d", cfg.HTTPPort)
	}
	if cfg.FetchConcurrency != 4 {
		t.Fatalf("invalid concurrency should fall back to default, got %d", cfg.FetchConcurrency)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("unsupported transport should fall back to stdio, got %s", cfg.MCPTransport)
	}
}
