package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/rustyeddy/tradepnl/pnl"
	"github.com/shopspring/decimal"
)

// Per-pair figures are shown to cents, totals to the full 8 places.
func perPair(d decimal.Decimal) string { return d.StringFixed(2) }
func total(d decimal.Decimal) string   { return d.StringFixed(pnl.Places) }

// printSkipped lists pairs left out of a result. missing is the message
// format for pairs with no trades at all.
func printSkipped(w io.Writer, skipped map[string]error, missing string) {
	pairs := make([]string, 0, len(skipped))
	for p := range skipped {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)

	for _, p := range pairs {
		err := skipped[p]
		switch {
		case errors.Is(err, pnl.ErrDataUnavailable):
			fmt.Fprintf(w, missing, p)
		case errors.Is(err, pnl.ErrNoHoldings):
			fmt.Fprintf(w, "No remaining holdings in %s.\n", p)
		case errors.Is(err, pnl.ErrPriceUnavailable):
			fmt.Fprintf(w, "Failed to fetch market price for %s.\n", p)
		default:
			fmt.Fprintf(w, "Skipped %s: %v\n", p, err)
		}
	}
}

func printPerPair(w io.Writer, title, label string, perPairPnL map[string]decimal.Decimal, quote string) {
	pairs := make([]string, 0, len(perPairPnL))
	for p := range perPairPnL {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)

	fmt.Fprintf(w, "\n%s P&L for the selected positions:\n", title)
	for _, p := range pairs {
		fmt.Fprintf(w, "%s P&L for %s: %s %s\n", label, p, perPair(perPairPnL[p]), quote)
	}
}

func printRealized(w io.Writer, r *pnl.RealizedResult, quote string) {
	printSkipped(w, r.Skipped, "No trades found for %s.\n")
	printPerPair(w, "Realized", "Realized", r.PerPair, quote)
	fmt.Fprintf(w, "\nTotal Realized P&L: %s %s\n", total(r.Total), quote)
}

func printUnrealized(w io.Writer, u *pnl.UnrealizedResult, quote string) {
	printSkipped(w, u.Skipped, "No trade history found for %s.\n")
	printPerPair(w, "Unrealized", "Unrealized", u.PerPair, quote)
	fmt.Fprintf(w, "\nTotal Unrealized P&L: %s %s\n", total(u.Total), quote)
}

func printSummary(w io.Writer, r *pnl.Report, quote string) {
	fmt.Fprintln(w, "\n------ Total P&L Summary ------")
	fmt.Fprintf(w, "Total Realized P&L: %s %s\n", total(r.TotalRealized), quote)
	fmt.Fprintf(w, "Total Unrealized P&L: %s %s\n", total(r.TotalUnrealized), quote)
	fmt.Fprintf(w, "Total Combined P&L: %s %s\n", total(r.TotalCombined), quote)
}

func printMatches(w io.Writer, res pnl.FIFOResult) {
	fmt.Fprintf(w, "\n%s\n", res.Pair)
	for _, m := range res.Matches {
		fmt.Fprintf(w, "  %s -> %s  %s @ %s -> %s  %s\n",
			m.BuyID, m.SellID, m.Volume, m.BuyPrice, m.SellPrice, total(m.PnL))
	}
	for _, lot := range res.Open {
		fmt.Fprintf(w, "  open %s  %s @ %s\n", lot.TradeID, lot.Volume, lot.Price)
	}
	if res.Unmatched.IsPositive() {
		fmt.Fprintf(w, "  unmatched sell volume %s\n", res.Unmatched)
	}
}
