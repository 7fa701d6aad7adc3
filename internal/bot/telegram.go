package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/service"

	tele "gopkg.in/telebot.v3"
)

// Adviser is satisfied by advisor.AdvisorService. The bot tolerates a nil
// adviser and tells the user the command is unavailable.
type Adviser interface {
	Advise(ctx context.Context, question string) (string, error)
}

func StartTelegramBot(token string, market *service.MarketService, sentiment *service.SentimentService, adviser Adviser) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/prices", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /prices stock\nSupported: %s", strings.Join(classNames(), ", ")))
		}
		class := domain.AssetClass(strings.ToLower(args[0]))
		if !class.IsValid() {
			return c.Send(fmt.Sprintf("Unknown asset class: %s\nSupported: %s", args[0], strings.Join(classNames(), ", ")))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		results := fetchClass(ctx, market, class)
		if len(results) == 0 {
			return c.Send(fmt.Sprintf("No %s instruments configured", class))
		}
		return c.Send(formatResults(string(class), results))
	})

	b.Handle("/fx", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		snap, err := sentiment.ExchangeRate(ctx)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching exchange rate: %v", err))
		}
		msg := fmt.Sprintf(
			"%s\nRate: %.2f\n1d Change: %.2f%%\n1w Change: %.2f%%\n1m Change: %.2f%%",
			snap.Pair, snap.Rate, snap.Change1dPct, snap.Change1wPct, snap.Change1mPct,
		)
		return c.Send(msg)
	})

	b.Handle("/feargreed", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		snap, err := sentiment.FearGreed(ctx)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching fear & greed index: %v", err))
		}
		msg := fmt.Sprintf(
			"Fear & Greed Index\nToday: %d (%s)\nYesterday: %d\nA week ago: %d\n%s",
			snap.Score, snap.Rating, snap.Yesterday, snap.OneWeekAgo, snap.Interpretation,
		)
		return c.Send(msg)
	})

	b.Handle("/advise", func(c tele.Context) error {
		if adviser == nil {
			return c.Send("Advice is not available: no LLM configured")
		}
		question := strings.TrimSpace(strings.Join(c.Args(), " "))
		if question == "" {
			return c.Send("Usage: /advise should I rebalance into bonds?")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		answer, err := adviser.Advise(ctx, question)
		if err != nil {
			return c.Send(fmt.Sprintf("Error generating advice: %v", err))
		}
		return c.Send(answer)
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func fetchClass(ctx context.Context, market *service.MarketService, class domain.AssetClass) []domain.InstrumentResult {
	switch class {
	case domain.ClassCrypto:
		return market.CryptoPrices(ctx)
	case domain.ClassBond:
		return market.BondPrices(ctx)
	case domain.ClassGold:
		return market.GoldPrices(ctx)
	default:
		return market.StockPrices(ctx)
	}
}

func classNames() []string {
	names := make([]string, 0, len(domain.AssetClasses))
	for _, c := range domain.AssetClasses {
		names = append(names, string(c))
	}
	return names
}

func formatResults(class string, results []domain.InstrumentResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s prices\n", strings.ToUpper(class[:1])+class[1:])
	for _, r := range results {
		if !r.OK() {
			fmt.Fprintf(&sb, "%s: unavailable (%s)\n", r.Symbol, r.Err)
			continue
		}
		fmt.Fprintf(&sb, "%s: $%.2f (1d %.2f%%, 1w %.2f%%, 1m %.2f%%)\n",
			r.Symbol, r.Quote.Price, r.Quote.Change1dPct, r.Quote.Change1wPct, r.Quote.Change1mPct)
	}
	return strings.TrimRight(sb.String(), "\n")
}
