package advisor

import (
	"context"
	"fmt"
	"log"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/portfolio"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// DataReader provides the market data the advisor reasons over. It is the
// same surface the MCP boundary exposes to external agents.
type DataReader interface {
	StockPrices(ctx context.Context) []domain.InstrumentResult
	CryptoPrices(ctx context.Context) []domain.InstrumentResult
	BondPrices(ctx context.Context) []domain.InstrumentResult
	GoldPrices(ctx context.Context) []domain.InstrumentResult
	ExchangeRate(ctx context.Context) (*domain.FXSnapshot, error)
	FearGreed(ctx context.Context) (*domain.SentimentSnapshot, error)
}

// AdvisorService turns the collected market data into an allocation
// recommendation across the four asset classes.
type AdvisorService struct {
	tracer   trace.Tracer
	llm      LLMClient
	data     DataReader
	universe *portfolio.Portfolio
	model    string
	logger   *log.Logger
}

func NewAdvisorService(
	tracer trace.Tracer,
	llm LLMClient,
	data DataReader,
	universe *portfolio.Portfolio,
	model string,
	logger *log.Logger,
) *AdvisorService {
	if logger == nil {
		logger = log.Default()
	}
	return &AdvisorService{
		tracer:   tracer,
		llm:      llm,
		data:     data,
		universe: universe,
		model:    model,
		logger:   logger,
	}
}

// Advise collects all six datasets, assembles the allocation prompt and asks
// the model. Data-collection failures degrade to whatever was gathered; only
// an LLM failure is an error.
func (s *AdvisorService) Advise(ctx context.Context, question string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.advise")
	defer span.End()

	marketContext := s.gatherContext(ctx)
	systemPrompt := BuildSystemPrompt(s.universe)

	completion, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(marketContext + "\n\n" + question),
		},
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("advisor unavailable: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

func (s *AdvisorService) gatherContext(ctx context.Context) string {
	ctx, span := s.tracer.Start(ctx, "advisor.gather-context")
	defer span.End()

	batches := map[string][]domain.InstrumentResult{
		"Stocks": s.data.StockPrices(ctx),
		"Crypto": s.data.CryptoPrices(ctx),
		"Bonds":  s.data.BondPrices(ctx),
		"Gold":   s.data.GoldPrices(ctx),
	}

	fx, err := s.data.ExchangeRate(ctx)
	if err != nil {
		s.logger.Printf("advisor: fx unavailable: %v", err)
	}
	sentiment, err := s.data.FearGreed(ctx)
	if err != nil {
		s.logger.Printf("advisor: fear & greed unavailable: %v", err)
	}

	return FormatMarketContext(batches, fx, sentiment)
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
