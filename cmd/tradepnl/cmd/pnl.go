package cmd

import (
	"fmt"

	"github.com/rustyeddy/tradepnl/journal"
	"github.com/rustyeddy/tradepnl/pnl"
	"github.com/spf13/cobra"
)

func newPnLCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pnl [pair...]",
		Short: "Realized, unrealized and combined PnL",
		Long: `Fetch the full trade history once, then report realized PnL from FIFO
lot matching, unrealized PnL of open long positions at the last traded
price, and their sum.

With no pairs, every traded pair (or report.pairs from the config) is used.

Examples:
  tradepnl pnl
  tradepnl pnl XXBTZUSD XETHZUSD --format org`,
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, release, err := o.calculator()
			if err != nil {
				return err
			}
			defer release()

			ctx := cmd.Context()
			l, _, err := o.buildLedger(ctx, calc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			quote := o.cfg.Report.QuoteCurrency
			pairs := o.pairs(args)

			realized := calc.RealizedFrom(l, pairs)
			unrealized := calc.UnrealizedFrom(ctx, l, pairs)
			r := pnl.Compose(realized, unrealized)

			if o.format == "org" {
				fmt.Fprint(out, journal.FormatReportOrg(r, quote))
				return nil
			}

			if l.Len() == 0 {
				fmt.Fprintln(out, "No trade history found.")
			} else {
				printRealized(out, realized, quote)
				printUnrealized(out, unrealized, quote)
			}
			printSummary(out, r, quote)
			return nil
		},
	}
}
