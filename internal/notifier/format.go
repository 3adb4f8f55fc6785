package notifier

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tradewatch/signal-monitor-go/internal/analytics"
	"github.com/tradewatch/signal-monitor-go/internal/models"
)

var titleCaser = cases.Title(language.English)

// FormatSummary renders a performance report as a Markdown summary
// message for the scheduled report cadence.
func FormatSummary(report models.PerformanceReport) string {
	agg := report.Aggregate
	if report.Empty() {
		return fmt.Sprintf("📊 *Signal Performance Update*\n\nNo closed signals yet (%d pending).", report.PendingSignals)
	}

	statusEmoji, statusText := performanceStatus(agg.SuccessRate)

	var b strings.Builder
	b.WriteString("📊 *Signal Performance Update*\n")
	fmt.Fprintf(&b, "%s Status: *%s*\n\n", statusEmoji, statusText)

	b.WriteString("📈 *Statistics:*\n")
	fmt.Fprintf(&b, "• Signals: %d (%d pending)\n", agg.TotalSignals, report.PendingSignals)
	fmt.Fprintf(&b, "• Success rate: %.1f%%\n", agg.SuccessRate)
	fmt.Fprintf(&b, "• Total ROI: %+.2f%%\n", agg.TotalROI)
	fmt.Fprintf(&b, "• Avg ROI: %+.2f%%\n", agg.AvgROI)
	fmt.Fprintf(&b, "• Avg holding: %s\n", formatDuration(agg.AvgHoldingDuration))

	if len(report.BySignalType) > 0 {
		b.WriteString("\n🎯 *By signal type:*\n")
		for _, key := range []string{"BUY", "SELL", "HOLD"} {
			stats, ok := report.BySignalType[key]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "• %s: %.1f%% (%dx)\n",
				titleCaser.String(strings.ToLower(key)), stats.SuccessRate, stats.TotalSignals)
		}
	}

	if top := analytics.TopCoins(report, 3); len(top) > 0 {
		b.WriteString("\n🪙 *Top coins:*\n")
		for _, cp := range top {
			fmt.Fprintf(&b, "• %s: %+.2f%% ROI (%dx, %.1f%%)\n",
				cp.Coin, cp.Stats.TotalROI, cp.Stats.TotalSignals, cp.Stats.SuccessRate)
		}
	}
	if len(report.ByCoin) > 3 {
		worst := analytics.WorstCoins(report, 3)
		b.WriteString("\n📉 *Worst coins:*\n")
		for _, cp := range worst {
			fmt.Fprintf(&b, "• %s: %+.2f%% ROI (%dx, %.1f%%)\n",
				cp.Coin, cp.Stats.TotalROI, cp.Stats.TotalSignals, cp.Stats.SuccessRate)
		}
	}

	b.WriteString("\n⚠️ *Risk:*\n")
	if agg.MaxGain != nil {
		fmt.Fprintf(&b, "• Max gain: %+.2f%%\n", *agg.MaxGain)
	}
	if agg.MaxLoss != nil {
		fmt.Fprintf(&b, "• Max loss: %+.2f%%\n", *agg.MaxLoss)
	}
	fmt.Fprintf(&b, "• Volatility: %.2f%%\n", agg.Volatility)
	if agg.SharpeDefined {
		fmt.Fprintf(&b, "• Sharpe ratio: %.3f\n", agg.SharpeRatio)
	} else {
		b.WriteString("• Sharpe ratio: n/a\n")
	}
	fmt.Fprintf(&b, "• Win/loss ratio: %.2f\n", agg.WinLossRatio)

	b.WriteString("\n💡 ")
	switch {
	case agg.SuccessRate >= 70:
		b.WriteString("Excellent performance, the strategy is working very well.")
	case agg.SuccessRate >= 50:
		b.WriteString("Solid performance with room for optimization.")
	default:
		b.WriteString("Performance below expectations, the strategy needs review.")
	}

	fmt.Fprintf(&b, "\n\n📅 Report from: %s", report.GeneratedAt.Format("2006-01-02 15:04"))
	return b.String()
}

// FormatAlerts renders fired alert events as a Markdown message.
func FormatAlerts(alerts []models.Alert) string {
	if len(alerts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("🚨 *Performance Alerts*\n")
	for _, a := range alerts {
		emoji := "⚠️"
		if a.Severity == models.AlertSeverityCritical {
			emoji = "🔴"
		}
		fmt.Fprintf(&b, "\n%s %s", emoji, a.Message)
	}
	return b.String()
}

// performanceStatus maps a success rate onto the status bands shown in
// the summary header.
func performanceStatus(successRate float64) (emoji string, text string) {
	switch {
	case successRate >= 70:
		return "🎉", "Excellent"
	case successRate >= 50:
		return "✅", "Good"
	case successRate >= 40:
		return "🟡", "Okay"
	default:
		return "🔴", "Poor"
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}
	if d >= 24*time.Hour {
		days := d.Hours() / 24
		return fmt.Sprintf("%.1fd", days)
	}
	return d.Truncate(time.Minute).String()
}
