package advisor

import (
	"fmt"
	"strings"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"
	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/portfolio"
)

const allocationGuidelines = `You are a data-driven portfolio advisor. You decide allocation
percentages across four asset classes based on collected market data.

Read the market regime from the data:
- Risk-On: fear & greed index at 50 or above and stocks trending up. Favor stocks and crypto.
- Risk-Off: fear & greed index below 50 and widening volatility. Favor bonds and gold.
- Inflation concern: gold trending up. Raise the gold allocation.
- Strong dollar: FX rate rising. Be careful with foreign assets.

Allocation guideline by regime:
| Regime          | Stocks | Crypto | Bonds  | Gold   |
|-----------------|--------|--------|--------|--------|
| Strong Risk-On  | 50-60% | 15-20% | 15-20% | 5-10%  |
| Mild Risk-On    | 40-50% | 10-15% | 25-30% | 10-15% |
| Neutral         | 35-40% | 5-10%  | 35-40% | 15-20% |
| Mild Risk-Off   | 25-35% | 0-5%   | 40-50% | 20-25% |
| Strong Risk-Off | 15-25% | 0%     | 45-55% | 25-30% |

Rules:
- Base every observation on the supplied data; never fabricate numbers.
- Allocations must sum to exactly 100%.
- Summarize the market first, state the regime and its evidence, then the
  allocation table, then the main risk factors.
- This is informational, not financial advice; the final decision is the user's.`

// BuildSystemPrompt renders the advisor persona with the configured universe.
func BuildSystemPrompt(p *portfolio.Portfolio) string {
	var sb strings.Builder
	sb.WriteString(allocationGuidelines)
	sb.WriteString("\n\nInvestment universe:\n")
	writeUniverseLine(&sb, "Stocks (risk asset)", p.Stocks)
	writeUniverseLine(&sb, "Crypto (high-risk asset)", p.Crypto)
	writeUniverseLine(&sb, "Bonds (safe asset)", p.Bonds)
	writeUniverseLine(&sb, "Gold (inflation hedge)", p.Gold)
	return sb.String()
}

func writeUniverseLine(sb *strings.Builder, label string, instruments []domain.Instrument) {
	if len(instruments) == 0 {
		return
	}
	parts := make([]string, len(instruments))
	for i, inst := range instruments {
		parts[i] = fmt.Sprintf("%s (%s)", inst.Symbol, inst.Name)
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, strings.Join(parts, ", "))
}

// FormatMarketContext renders the collected data as the user-visible context
// block. Error entries are listed so the model knows what is missing.
func FormatMarketContext(
	batches map[string][]domain.InstrumentResult,
	fx *domain.FXSnapshot,
	sentiment *domain.SentimentSnapshot,
) string {
	var sb strings.Builder
	sb.WriteString("--- COLLECTED MARKET DATA ---\n")

	for _, label := range []string{"Stocks", "Crypto", "Bonds", "Gold"} {
		results, ok := batches[label]
		if !ok || len(results) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:\n", label)
		for _, r := range results {
			if r.OK() {
				fmt.Fprintf(&sb, "  %s (%s): %.2f (1d %+.2f%%, 1w %+.2f%%, 1m %+.2f%%)\n",
					r.Symbol, r.Quote.Name, r.Quote.Price,
					r.Quote.Change1dPct, r.Quote.Change1wPct, r.Quote.Change1mPct)
			} else {
				fmt.Fprintf(&sb, "  %s: unavailable (%s)\n", r.Symbol, r.Err)
			}
		}
	}

	if fx != nil {
		fmt.Fprintf(&sb, "\nExchange rate %s: %.2f (1d %+.2f%%, 1w %+.2f%%, 1m %+.2f%%)\n",
			fx.Pair, fx.Rate, fx.Change1dPct, fx.Change1wPct, fx.Change1mPct)
	}
	if sentiment != nil {
		fmt.Fprintf(&sb, "\nFear & Greed index: %d (%s) yesterday=%d week_ago=%d\n  %s\n",
			sentiment.Score, sentiment.Rating, sentiment.Yesterday,
			sentiment.OneWeekAgo, sentiment.Interpretation)
	}

	return sb.String()
}
