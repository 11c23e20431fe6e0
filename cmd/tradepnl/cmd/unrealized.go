package cmd

import (
	"fmt"

	"github.com/rustyeddy/tradepnl/journal"
	"github.com/rustyeddy/tradepnl/pnl"
	"github.com/spf13/cobra"
)

func newUnrealizedCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unrealized [pair...]",
		Short: "Unrealized PnL of open long positions",
		Long: `Net each pair's buys and sells into a position and mark the long ones
to the last traded price. Flat or short pairs and pairs without a price
are listed and left out of the total.

Examples:
  tradepnl unrealized
  tradepnl unrealized XXBTZUSD --format org`,
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
			res := calc.UnrealizedFrom(ctx, l, o.pairs(args))

			if o.format == "org" {
				fmt.Fprint(out, journal.FormatReportOrg(pnl.Compose(nil, res), quote))
				return nil
			}
			if l.Len() == 0 {
				fmt.Fprintln(out, "No trade history found.")
			}
			printUnrealized(out, res, quote)
			return nil
		},
	}
}
