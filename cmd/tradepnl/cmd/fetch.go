package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFetchCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download trade history into the journal",
		Long: `Page through the whole trade history and save it to the journal set in
the config (journal.type csv or sqlite). Trades already in the journal are
left as they are, so fetch can be run repeatedly.

Example:
  tradepnl fetch --config tradepnl.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, release, err := o.calculator()
			if err != nil {
				return err
			}
			defer release()

			l, added, err := o.buildLedger(cmd.Context(), calc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if l.Len() == 0 {
				fmt.Fprintln(out, "No trade history found.")
				return nil
			}

			pairs := l.Pairs()
			fmt.Fprintf(out, "Fetched %d trades across %d pairs.\n", l.Len(), len(pairs))
			for _, p := range pairs {
				fmt.Fprintf(out, "  %s: %d trades\n", p, len(l.ForPair(p)))
			}

			switch o.cfg.Journal.Type {
			case "sqlite":
				fmt.Fprintf(out, "Saved %d new trades to %s\n", added, o.cfg.Journal.DBPath)
			case "csv":
				fmt.Fprintf(out, "Saved %d new trades to %s\n", added, o.cfg.Journal.CSVPath)
			default:
				fmt.Fprintln(out, "No journal configured; nothing saved.")
			}
			return nil
		},
	}
}
