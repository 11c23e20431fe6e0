package cmd

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/tradepnl/journal"
	"github.com/rustyeddy/tradepnl/pnl"
	"github.com/spf13/cobra"
)

func newRealizedCmd(o *rootOptions) *cobra.Command {
	var showMatches bool

	cmd := &cobra.Command{
		Use:   "realized [pair...]",
		Short: "Realized PnL from FIFO lot matching",
		Long: `Replay each pair's trades oldest first, closing sells against the
oldest open buys. Each match is rounded to 8 places before it is summed.
Sell volume beyond the open lots is ignored.

Examples:
  tradepnl realized
  tradepnl realized XXBTZUSD --matches --format org`,
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, release, err := o.calculator()
			if err != nil {
				return err
			}
			defer release()

			l, _, err := o.buildLedger(cmd.Context(), calc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			quote := o.cfg.Report.QuoteCurrency
			org := o.format == "org"
			if l.Len() == 0 && !org {
				fmt.Fprintln(out, "No trade history found.")
			}

			res := calc.RealizedFrom(l, o.pairs(args))

			if showMatches {
				pairs := make([]string, 0, len(res.Details))
				for p := range res.Details {
					pairs = append(pairs, p)
				}
				sort.Strings(pairs)
				for _, p := range pairs {
					if org {
						fmt.Fprintln(out, journal.FormatMatchesOrg(res.Details[p]))
						continue
					}
					printMatches(out, res.Details[p])
				}
			}

			if org {
				fmt.Fprint(out, journal.FormatReportOrg(pnl.Compose(res, nil), quote))
				return nil
			}
			printRealized(out, res, quote)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMatches, "matches", false, "list every buy/sell match and the lots left open")
	return cmd
}
