package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/rustyeddy/tradepnl/pnl"
	"github.com/shopspring/decimal"
)

// FormatReportOrg renders a report as an Org-mode entry: a PROPERTIES drawer
// with the totals for searching, then a table with one row per pair.
func FormatReportOrg(r *pnl.Report, quote string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** PnL report %s\n", r.GeneratedAt.UTC().Format("2006-01-02"))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", r.ID)
	fmt.Fprintf(&b, ":GENERATED_AT: %s\n", r.GeneratedAt.UTC().Format(time.RFC3339))
	if quote != "" {
		fmt.Fprintf(&b, ":QUOTE: %s\n", quote)
	}
	fmt.Fprintf(&b, ":REALIZED: %s\n", r.TotalRealized.StringFixed(8))
	fmt.Fprintf(&b, ":UNREALIZED: %s\n", r.TotalUnrealized.StringFixed(8))
	fmt.Fprintf(&b, ":TOTAL: %s\n", r.TotalCombined.StringFixed(8))
	b.WriteString(":END:\n")

	lines := r.Lines()
	if len(lines) == 0 {
		b.WriteString("\nNo trade history.\n")
		return b.String()
	}

	b.WriteString("\n| Pair | Realized | Unrealized | Total |\n")
	b.WriteString("|------+----------+------------+-------|\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			l.Pair, cell(l.Realized, l.HasRealized), cell(l.Unrealized, l.HasUnrealized), l.Combined.StringFixed(2))
	}
	fmt.Fprintf(&b, "| Total | %s | %s | %s |\n",
		r.TotalRealized.StringFixed(8), r.TotalUnrealized.StringFixed(8), r.TotalCombined.StringFixed(8))
	return b.String()
}

func cell(d decimal.Decimal, ok bool) string {
	if !ok {
		return "-"
	}
	return d.StringFixed(2)
}

// FormatMatchesOrg renders the lot matches of one pair as an Org table,
// followed by the lots still open.
func FormatMatchesOrg(res pnl.FIFOResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*** %s matches\n", res.Pair)
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":PAIR: %s\n", res.Pair)
	fmt.Fprintf(&b, ":REALIZED: %s\n", res.Realized.StringFixed(8))
	if res.Unmatched.IsPositive() {
		fmt.Fprintf(&b, ":UNMATCHED_VOL: %s\n", res.Unmatched.String())
	}
	b.WriteString(":END:\n")

	if len(res.Matches) > 0 {
		b.WriteString("\n| Buy | Sell | Volume | Buy price | Sell price | PnL |\n")
		b.WriteString("|-----+------+--------+-----------+------------+-----|\n")
		for _, m := range res.Matches {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				shortID(m.BuyID), shortID(m.SellID), m.Volume.String(),
				m.BuyPrice.String(), m.SellPrice.String(), m.PnL.StringFixed(8))
		}
	}

	if len(res.Open) > 0 {
		b.WriteString("\n| Open lot | Volume | Price |\n")
		b.WriteString("|----------+--------+-------|\n")
		for _, lot := range res.Open {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", shortID(lot.TradeID), lot.Volume.String(), lot.Price.String())
		}
	}
	return b.String()
}

// FormatTradeOrg renders one stored fill as an Org-mode entry.
func FormatTradeOrg(t ledger.Trade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s %s (%s)\n", t.Pair, t.Side, shortID(t.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":PAIR: %s\n", t.Pair)
	fmt.Fprintf(&b, ":SIDE: %s\n", t.Side)
	fmt.Fprintf(&b, ":VOLUME: %s\n", t.Volume.String())
	fmt.Fprintf(&b, ":PRICE: %s\n", t.Price.String())
	fmt.Fprintf(&b, ":COST: %s\n", t.Cost.String())
	fmt.Fprintf(&b, ":TIME: %s\n", t.Time().Format(time.RFC3339))
	b.WriteString(":END:\n")
	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []ledger.Trade) string {
	if len(trades) == 0 {
		return "No trades.\n"
	}
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

// Exchange trade IDs are long; the first segment is enough to find one.
func shortID(full string) string {
	if i := strings.IndexByte(full, '-'); i > 0 {
		return full[:i]
	}
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
