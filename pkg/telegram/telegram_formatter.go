package telegram

import (
	"fmt"
	"strings"

	"golang-stock-screener/internal/entity"
)

const maxMessageLen = 4090

// FormatScreenSummaryForTelegram formats a market run summary into one or more
// Markdown messages, each within the Telegram length limit. At most topN
// tickers are listed per screen; topN <= 0 lists all of them.
func FormatScreenSummaryForTelegram(summary entity.MarketRunSummary, topN int) []string {
	market := strings.ToUpper(summary.Market)
	if summary.SourceMissing {
		return []string{fmt.Sprintf("⚠️ *%s*: ticker list unavailable, market skipped.", market)}
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString(fmt.Sprintf("📊 *Stock Screener - %s* 📊\n", market))
			current.WriteString(fmt.Sprintf("Tickers: %d | Records: %d | Skipped: %d | Errors: %d\n\n",
				summary.Tickers, summary.Records, summary.Skipped, summary.FetchErrors))
			return
		}
		current.WriteString(fmt.Sprintf("---*Stock Screener - %s Part %d*---\n\n", market, part))
	}
	startNewPart()

	write := func(line string) {
		if current.Len()+len(line) > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(line)
	}

	for _, res := range summary.Screens {
		write(fmt.Sprintf("🔎 %s (%d)\n", codeSpan(res.Screen), len(res.Records)))
		if len(res.Records) == 0 {
			write("  _no matches_\n")
		}
		for i, rec := range res.Records {
			if topN > 0 && i >= topN {
				write(fmt.Sprintf("  _...and %d more_\n", len(res.Records)-topN))
				break
			}
			write(formatRecordLine(rec))
		}
		write("\n")
	}

	return append(messages, current.String())
}

func formatRecordLine(rec entity.StockMetrics) string {
	return fmt.Sprintf("  • %s %s | PB %s | ROCE %s\n",
		codeSpan(rec.Ticker), escapeMarkdown(rec.Name), formatMetric(rec.PB), formatPercent(rec.ROCECY))
}

func formatMetric(v float64) string {
	if entity.IsMissing(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func formatPercent(v float64) string {
	if entity.IsMissing(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escapeMarkdown escapes text placed outside any entity. Legacy Markdown has
// no escapes inside entities.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// codeSpan wraps s in an inline code entity, where underscores are literal.
func codeSpan(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "'") + "`"
}
